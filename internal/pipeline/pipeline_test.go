package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fiscos/internal/domain"
	"fiscos/internal/port"
	"fiscos/mocks"
)

func TestRun_EmptyTextShortCircuits(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	p := New(gen)

	rec, err := p.Run(context.Background(), "unreadable.pdf", "")
	require.NoError(t, err)

	assert.Equal(t, "unreadable.pdf", rec.SourceFile)
	assert.Equal(t, domain.DocumentTypeUnknown, rec.DocumentType)
	assert.Equal(t, 0.0, rec.GrossAmount)
	// No generation round trips for an unreadable document.
	gen.AssertNotCalled(t, "Generate")
}

func TestRun_TwoStagesInOrder(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	p := New(gen)

	extraction := "ICMS amount: 180.00. Issuer: Fornecedora ABC Ltda."
	payload := `{"issuer_name": "Fornecedora ABC Ltda", "gross_amount": 1000.0, "goods_tax_amount": 180.0}`

	gen.On("Generate", mock.Anything, mock.MatchedBy(func(in port.GenerateInput) bool {
		return in.ExpectedOutput == ExtractionExpectation
	})).Return(&port.GenerateOutput{Text: extraction}, nil).Once()

	gen.On("Generate", mock.Anything, mock.MatchedBy(func(in port.GenerateInput) bool {
		return in.ExpectedOutput == NormalizationExpectation
	})).Return(&port.GenerateOutput{Text: payload}, nil).Once()

	rec, err := p.Run(context.Background(), "danfe.pdf", "NOTA FISCAL ELETRONICA ...")
	require.NoError(t, err)

	assert.Equal(t, "danfe.pdf", rec.SourceFile)
	assert.Equal(t, "Fornecedora ABC Ltda", rec.IssuerName)
	assert.Equal(t, domain.DocumentTypeGoods, rec.DocumentType)
	gen.AssertExpectations(t)
}

func TestRun_NormalizationReceivesExtractionText(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	p := New(gen)

	extraction := "EXTRACTED-MARKER-XYZ"
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(in port.GenerateInput) bool {
		return in.ExpectedOutput == ExtractionExpectation
	})).Return(&port.GenerateOutput{Text: extraction}, nil).Once()

	var normalizationTask string
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(in port.GenerateInput) bool {
		if in.ExpectedOutput == NormalizationExpectation {
			normalizationTask = in.Task
			return true
		}
		return false
	})).Return(&port.GenerateOutput{Text: `{}`}, nil).Once()

	_, err := p.Run(context.Background(), "doc.pdf", "some text")
	require.NoError(t, err)
	assert.Contains(t, normalizationTask, extraction)
}

func TestRun_TypeExclusivityEnforced(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		expectedType domain.DocumentType
		goodsTax     float64
		serviceTax   float64
	}{
		{
			name:         "goods wins and service zeroed",
			payload:      `{"goods_tax_amount": 180.0, "service_tax_amount": 20.0}`,
			expectedType: domain.DocumentTypeGoods,
			goodsTax:     180.0,
			serviceTax:   0.0,
		},
		{
			name:         "service wins and goods zeroed",
			payload:      `{"goods_tax_amount": 20.0, "service_tax_amount": 180.0}`,
			expectedType: domain.DocumentTypeService,
			goodsTax:     0.0,
			serviceTax:   180.0,
		},
		{
			name:         "all zero is unknown",
			payload:      `{"gross_amount": 500.0}`,
			expectedType: domain.DocumentTypeUnknown,
			goodsTax:     0.0,
			serviceTax:   0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(mocks.MockTextGenerator)
			p := New(gen)

			gen.On("Generate", mock.Anything, mock.Anything).
				Return(&port.GenerateOutput{Text: "free text"}, nil).Once()
			gen.On("Generate", mock.Anything, mock.Anything).
				Return(&port.GenerateOutput{Text: tt.payload}, nil).Once()

			rec, err := p.Run(context.Background(), "doc.pdf", "text")
			require.NoError(t, err)

			assert.Equal(t, tt.expectedType, rec.DocumentType)
			assert.Equal(t, tt.goodsTax, rec.GoodsTaxAmount)
			assert.Equal(t, tt.serviceTax, rec.ServiceTaxAmount)
		})
	}
}

func TestRun_ExtractionFailure(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	p := New(gen)

	gen.On("Generate", mock.Anything, mock.Anything).
		Return(nil, errors.New("provider unreachable")).Once()

	_, err := p.Run(context.Background(), "doc.pdf", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extraction stage")
}

func TestRun_MalformedPayloadIsPerDocumentError(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	p := New(gen)

	gen.On("Generate", mock.Anything, mock.Anything).
		Return(&port.GenerateOutput{Text: "free text"}, nil).Once()
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(&port.GenerateOutput{Text: "sorry, I cannot help with that"}, nil).Once()

	_, err := p.Run(context.Background(), "doc.pdf", "text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedPayload))
}
