package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDocumentType(t *testing.T) {
	tests := []struct {
		name     string
		record   FiscalRecord
		expected DocumentType
	}{
		{
			name:     "goods taxes only",
			record:   FiscalRecord{GoodsTaxAmount: 180, GoodsTaxSurcharge: 50},
			expected: DocumentTypeGoods,
		},
		{
			name:     "service taxes only",
			record:   FiscalRecord{ServiceTaxAmount: 100, ServiceTaxWithheld: 20},
			expected: DocumentTypeService,
		},
		{
			name:     "substitution alone marks goods",
			record:   FiscalRecord{GoodsTaxSubstitution: 35},
			expected: DocumentTypeGoods,
		},
		{
			name:     "all zero is unknown",
			record:   FiscalRecord{GrossAmount: 900},
			expected: DocumentTypeUnknown,
		},
		{
			name:     "both groups present larger goods wins",
			record:   FiscalRecord{GoodsTaxAmount: 200, ServiceTaxAmount: 50},
			expected: DocumentTypeGoods,
		},
		{
			name:     "both groups present larger service wins",
			record:   FiscalRecord{GoodsTaxAmount: 10, ServiceTaxAmount: 300},
			expected: DocumentTypeService,
		},
		{
			name:     "exact tie resolves to goods",
			record:   FiscalRecord{GoodsTaxAmount: 100, ServiceTaxAmount: 100},
			expected: DocumentTypeGoods,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyDocumentType(&tt.record))
		})
	}
}

func TestEnforceTypeExclusivity(t *testing.T) {
	t.Run("goods record drops service taxes", func(t *testing.T) {
		r := FiscalRecord{GoodsTaxAmount: 180, ServiceTaxAmount: 20, ServiceTaxWithheld: 5}
		EnforceTypeExclusivity(&r)

		assert.Equal(t, DocumentTypeGoods, r.DocumentType)
		assert.Equal(t, 180.0, r.GoodsTaxAmount)
		assert.Equal(t, 0.0, r.ServiceTaxAmount)
		assert.Equal(t, 0.0, r.ServiceTaxWithheld)
	})

	t.Run("service record drops goods taxes", func(t *testing.T) {
		r := FiscalRecord{ServiceTaxAmount: 250, GoodsTaxAmount: 30, GoodsTaxSurcharge: 10, GoodsTaxSubstitution: 5}
		EnforceTypeExclusivity(&r)

		assert.Equal(t, DocumentTypeService, r.DocumentType)
		assert.Equal(t, 250.0, r.ServiceTaxAmount)
		assert.Equal(t, 0.0, r.GoodsTaxAmount)
		assert.Equal(t, 0.0, r.GoodsTaxSurcharge)
		assert.Equal(t, 0.0, r.GoodsTaxSubstitution)
	})

	t.Run("unknown record keeps zeroes untouched", func(t *testing.T) {
		r := FiscalRecord{GrossAmount: 500}
		EnforceTypeExclusivity(&r)

		assert.Equal(t, DocumentTypeUnknown, r.DocumentType)
		assert.Equal(t, 500.0, r.GrossAmount)
	})

	t.Run("idempotent", func(t *testing.T) {
		r := FiscalRecord{GoodsTaxAmount: 180, ServiceTaxAmount: 20}
		EnforceTypeExclusivity(&r)
		first := r
		EnforceTypeExclusivity(&r)
		assert.Equal(t, first, r)
	})
}
