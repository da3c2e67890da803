package domain

import (
	"time"

	"github.com/google/uuid"
)

// FiscalRecord is the canonical, schema-stable unit produced by the extraction
// pipeline. Records are append-only: once stored they are never mutated, and
// SourceFile and IngestedAt are immutable after creation.
type FiscalRecord struct {
	ID                   uuid.UUID    `db:"id" json:"id"`
	BatchID              uuid.UUID    `db:"batch_id" json:"batch_id"`
	SourceFile           string       `db:"source_file" json:"source_file"`
	DocumentType         DocumentType `db:"document_type" json:"document_type"`
	IssuerName           string       `db:"issuer_name" json:"issuer_name"`
	IssuerTaxID          string       `db:"issuer_tax_id" json:"issuer_tax_id"`
	RecipientName        string       `db:"recipient_name" json:"recipient_name"`
	RecipientTaxID       string       `db:"recipient_tax_id" json:"recipient_tax_id"`
	DocumentNumber       string       `db:"document_number" json:"document_number"`
	IssueDate            string       `db:"issue_date" json:"issue_date"`
	GrossAmount          float64      `db:"gross_amount" json:"gross_amount"`
	NetAmount            float64      `db:"net_amount" json:"net_amount"`
	DiscountAmount       float64      `db:"discount_amount" json:"discount_amount"`
	GoodsTaxAmount       float64      `db:"goods_tax_amount" json:"goods_tax_amount"`
	GoodsTaxSurcharge    float64      `db:"goods_tax_surcharge" json:"goods_tax_surcharge"`
	GoodsTaxSubstitution float64      `db:"goods_tax_substitution" json:"goods_tax_substitution"`
	ServiceTaxAmount     float64      `db:"service_tax_amount" json:"service_tax_amount"`
	ServiceTaxWithheld   float64      `db:"service_tax_withheld" json:"service_tax_withheld"`
	LineDescription      string       `db:"line_description" json:"line_description"`
	ClassificationCode   string       `db:"classification_code" json:"classification_code"`
	IngestedAt           time.Time    `db:"ingested_at" json:"ingested_at"`
}

// DocumentFailure names a single document that could not be processed.
// Failures never abort the batch; they are surfaced to the caller instead.
type DocumentFailure struct {
	SourceFile string `json:"source_file"`
	Reason     string `json:"reason"`
}

// BatchResult is the outcome of processing one upload batch: the records that
// made it through the pipeline and the per-document failures that did not.
type BatchResult struct {
	BatchID  uuid.UUID         `json:"batch_id"`
	Records  []FiscalRecord    `json:"records"`
	Failures []DocumentFailure `json:"failures"`
}

// ClassifyDocumentType derives the document type from which tax field group is
// non-zero. Both groups zero is a valid state (tax exempt or unrecognized) and
// classifies as UNKNOWN. When both groups carry values, the larger one wins so
// the type-exclusivity invariant can be restored by zeroing the loser.
func ClassifyDocumentType(r *FiscalRecord) DocumentType {
	goods := r.GoodsTaxAmount + r.GoodsTaxSurcharge + r.GoodsTaxSubstitution
	service := r.ServiceTaxAmount + r.ServiceTaxWithheld
	switch {
	case goods == 0 && service == 0:
		return DocumentTypeUnknown
	case goods >= service:
		return DocumentTypeGoods
	default:
		return DocumentTypeService
	}
}

// EnforceTypeExclusivity classifies the record and zeroes the tax group that
// does not belong to its type: GOODS records carry no service tax and SERVICE
// records carry no goods tax.
func EnforceTypeExclusivity(r *FiscalRecord) {
	r.DocumentType = ClassifyDocumentType(r)
	switch r.DocumentType {
	case DocumentTypeGoods:
		r.ServiceTaxAmount = 0
		r.ServiceTaxWithheld = 0
	case DocumentTypeService:
		r.GoodsTaxAmount = 0
		r.GoodsTaxSurcharge = 0
		r.GoodsTaxSubstitution = 0
	}
}
