// Package aggregate computes summary figures over stored fiscal records.
// Everything here is pure: callers load records once and derive every
// report view from the same slice.
package aggregate

import (
	"sort"

	"fiscos/internal/domain"
)

// Summary holds the headline figures for a set of fiscal records.
type Summary struct {
	RecordCount        int     `json:"record_count"`
	GoodsCount         int     `json:"goods_count"`
	ServiceCount       int     `json:"service_count"`
	UnknownCount       int     `json:"unknown_count"`
	GrossTotal         float64 `json:"gross_total"`
	NetTotal           float64 `json:"net_total"`
	DiscountTotal      float64 `json:"discount_total"`
	GoodsGrossTotal    float64 `json:"goods_gross_total"`
	ServiceGrossTotal  float64 `json:"service_gross_total"`
	GoodsTaxTotal      float64 `json:"goods_tax_total"`
	ServiceTaxTotal    float64 `json:"service_tax_total"`
	TotalTaxBurden     float64 `json:"total_tax_burden"`
	TaxBurdenRatio     float64 `json:"tax_burden_ratio"`
	DistinctIssuers    int     `json:"distinct_issuers"`
	DistinctRecipients int     `json:"distinct_recipients"`
}

// IssuerTotal is one row of the issuer ranking.
type IssuerTotal struct {
	IssuerName   string              `json:"issuer_name"`
	DocumentType domain.DocumentType `json:"document_type"`
	RecordCount  int                 `json:"record_count"`
	GrossTotal   float64             `json:"gross_total"`
	TaxTotal     float64             `json:"tax_total"`
}

// Summarize computes the headline totals for records. The tax burden
// ratio is zero when the gross total is zero.
func Summarize(records []domain.FiscalRecord) Summary {
	var s Summary
	issuers := make(map[string]struct{})
	recipients := make(map[string]struct{})

	for _, r := range records {
		s.RecordCount++
		s.GrossTotal += r.GrossAmount
		s.NetTotal += r.NetAmount
		s.DiscountTotal += r.DiscountAmount
		s.GoodsTaxTotal += r.GoodsTaxAmount + r.GoodsTaxSurcharge + r.GoodsTaxSubstitution
		s.ServiceTaxTotal += r.ServiceTaxAmount + r.ServiceTaxWithheld

		switch r.DocumentType {
		case domain.DocumentTypeGoods:
			s.GoodsCount++
			s.GoodsGrossTotal += r.GrossAmount
		case domain.DocumentTypeService:
			s.ServiceCount++
			s.ServiceGrossTotal += r.GrossAmount
		default:
			s.UnknownCount++
		}

		if r.IssuerName != "" {
			issuers[r.IssuerName] = struct{}{}
		}
		if r.RecipientName != "" {
			recipients[r.RecipientName] = struct{}{}
		}
	}

	s.TotalTaxBurden = s.GoodsTaxTotal + s.ServiceTaxTotal
	if s.GrossTotal > 0 {
		s.TaxBurdenRatio = s.TotalTaxBurden / s.GrossTotal
	}
	s.DistinctIssuers = len(issuers)
	s.DistinctRecipients = len(recipients)
	return s
}

// TopIssuers ranks issuers by gross total, descending. Issuers with equal
// totals keep the order in which they first appear in records. Records
// without an issuer name are grouped under a single unnamed bucket. At
// most n rows are returned; n <= 0 means no limit.
func TopIssuers(records []domain.FiscalRecord, n int) []IssuerTotal {
	index := make(map[string]int)
	var out []IssuerTotal
	for _, r := range records {
		i, ok := index[r.IssuerName]
		if !ok {
			i = len(out)
			index[r.IssuerName] = i
			out = append(out, IssuerTotal{IssuerName: r.IssuerName, DocumentType: r.DocumentType})
		}
		t := &out[i]
		t.RecordCount++
		t.GrossTotal += r.GrossAmount
		t.TaxTotal += r.GoodsTaxAmount + r.GoodsTaxSurcharge + r.GoodsTaxSubstitution +
			r.ServiceTaxAmount + r.ServiceTaxWithheld
		if t.DocumentType != r.DocumentType {
			t.DocumentType = domain.DocumentTypeUnknown
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GrossTotal > out[j].GrossTotal
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopIssuerByType returns the highest-grossing issuer among records of
// the given document type, or nil when none match.
func TopIssuerByType(records []domain.FiscalRecord, docType domain.DocumentType) *IssuerTotal {
	var filtered []domain.FiscalRecord
	for _, r := range records {
		if r.DocumentType == docType {
			filtered = append(filtered, r)
		}
	}
	ranked := TopIssuers(filtered, 1)
	if len(ranked) == 0 {
		return nil
	}
	return &ranked[0]
}
