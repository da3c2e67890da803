package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscos/internal/domain"
)

func TestSummarize(t *testing.T) {
	records := []domain.FiscalRecord{
		{
			DocumentType:      domain.DocumentTypeGoods,
			IssuerName:        "Fornecedora A",
			RecipientName:     "Compradora X",
			GrossAmount:       1000,
			NetAmount:         950,
			DiscountAmount:    50,
			GoodsTaxAmount:    150,
			GoodsTaxSurcharge: 30,
		},
		{
			DocumentType:       domain.DocumentTypeService,
			IssuerName:         "Prestadora B",
			RecipientName:      "Compradora X",
			GrossAmount:        500,
			NetAmount:          470,
			ServiceTaxAmount:   25,
			ServiceTaxWithheld: 5,
		},
		{
			DocumentType: domain.DocumentTypeUnknown,
			GrossAmount:  200,
			NetAmount:    200,
		},
	}

	s := Summarize(records)

	assert.Equal(t, 3, s.RecordCount)
	assert.Equal(t, 1, s.GoodsCount)
	assert.Equal(t, 1, s.ServiceCount)
	assert.Equal(t, 1, s.UnknownCount)
	assert.Equal(t, 1700.0, s.GrossTotal)
	assert.Equal(t, 1620.0, s.NetTotal)
	assert.Equal(t, 50.0, s.DiscountTotal)
	assert.Equal(t, 1000.0, s.GoodsGrossTotal)
	assert.Equal(t, 500.0, s.ServiceGrossTotal)
	assert.Equal(t, 180.0, s.GoodsTaxTotal)
	assert.Equal(t, 30.0, s.ServiceTaxTotal)
	assert.Equal(t, 210.0, s.TotalTaxBurden)
	assert.InDelta(t, 210.0/1700.0, s.TaxBurdenRatio, 1e-9)
	assert.Equal(t, 2, s.DistinctIssuers)
	assert.Equal(t, 1, s.DistinctRecipients)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.RecordCount)
	assert.Equal(t, 0.0, s.GrossTotal)
	assert.Equal(t, 0.0, s.TaxBurdenRatio)
}

func TestSummarize_ZeroGrossRatio(t *testing.T) {
	// A record set with taxes but zero gross must not divide by zero.
	records := []domain.FiscalRecord{
		{DocumentType: domain.DocumentTypeGoods, GoodsTaxAmount: 100},
	}
	s := Summarize(records)
	assert.Equal(t, 100.0, s.TotalTaxBurden)
	assert.Equal(t, 0.0, s.TaxBurdenRatio)
}

func TestTopIssuers_RankedByGross(t *testing.T) {
	records := []domain.FiscalRecord{
		{IssuerName: "A", DocumentType: domain.DocumentTypeGoods, GrossAmount: 100, GoodsTaxAmount: 18},
		{IssuerName: "B", DocumentType: domain.DocumentTypeGoods, GrossAmount: 200, GoodsTaxAmount: 36},
		{IssuerName: "A", DocumentType: domain.DocumentTypeGoods, GrossAmount: 30, GoodsTaxAmount: 5},
	}

	ranked := TopIssuers(records, 10)
	require.Len(t, ranked, 2)

	assert.Equal(t, "B", ranked[0].IssuerName)
	assert.Equal(t, 200.0, ranked[0].GrossTotal)
	assert.Equal(t, 1, ranked[0].RecordCount)

	assert.Equal(t, "A", ranked[1].IssuerName)
	assert.Equal(t, 130.0, ranked[1].GrossTotal)
	assert.Equal(t, 23.0, ranked[1].TaxTotal)
	assert.Equal(t, 2, ranked[1].RecordCount)
}

func TestTopIssuers_TiesKeepInputOrder(t *testing.T) {
	// Equal gross totals rank in the order the issuers first appear.
	records := []domain.FiscalRecord{
		{IssuerName: "Zeta", GrossAmount: 100},
		{IssuerName: "Alfa", GrossAmount: 100},
	}

	ranked := TopIssuers(records, 10)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Zeta", ranked[0].IssuerName)
	assert.Equal(t, "Alfa", ranked[1].IssuerName)

	ranked = TopIssuers([]domain.FiscalRecord{records[1], records[0]}, 10)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Alfa", ranked[0].IssuerName)
	assert.Equal(t, "Zeta", ranked[1].IssuerName)
}

func TestTopIssuers_LimitApplied(t *testing.T) {
	records := []domain.FiscalRecord{
		{IssuerName: "A", GrossAmount: 1},
		{IssuerName: "B", GrossAmount: 2},
		{IssuerName: "C", GrossAmount: 3},
	}

	ranked := TopIssuers(records, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "C", ranked[0].IssuerName)
	assert.Equal(t, "B", ranked[1].IssuerName)
}

func TestTopIssuers_MixedTypesCollapseToUnknown(t *testing.T) {
	records := []domain.FiscalRecord{
		{IssuerName: "A", DocumentType: domain.DocumentTypeGoods, GrossAmount: 100},
		{IssuerName: "A", DocumentType: domain.DocumentTypeService, GrossAmount: 50},
	}

	ranked := TopIssuers(records, 10)
	require.Len(t, ranked, 1)
	assert.Equal(t, domain.DocumentTypeUnknown, ranked[0].DocumentType)
	assert.Equal(t, 150.0, ranked[0].GrossTotal)
}

func TestTopIssuerByType(t *testing.T) {
	records := []domain.FiscalRecord{
		{IssuerName: "Fornecedora A", DocumentType: domain.DocumentTypeGoods, GrossAmount: 300},
		{IssuerName: "Fornecedora B", DocumentType: domain.DocumentTypeGoods, GrossAmount: 700},
		{IssuerName: "Prestadora C", DocumentType: domain.DocumentTypeService, GrossAmount: 400},
	}

	goods := TopIssuerByType(records, domain.DocumentTypeGoods)
	require.NotNil(t, goods)
	assert.Equal(t, "Fornecedora B", goods.IssuerName)

	services := TopIssuerByType(records, domain.DocumentTypeService)
	require.NotNil(t, services)
	assert.Equal(t, "Prestadora C", services.IssuerName)

	assert.Nil(t, TopIssuerByType(nil, domain.DocumentTypeGoods))
}
