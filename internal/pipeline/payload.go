package pipeline

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fiscos/internal/domain"
)

// StripDecorations removes the formatting artifacts the generation service
// tends to wrap around its payload: fenced code blocks anywhere in the text
// and a leading bare format label (a dangling "json" before the payload).
func StripDecorations(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "json") {
		rest := strings.TrimSpace(s[4:])
		if strings.HasPrefix(rest, "{") {
			s = rest
		}
	}
	return s
}

// ParsePayload converts the normalizer's raw textual output into a
// FiscalRecord with the full closed field set. Unknown keys are ignored,
// missing keys take their type defaults, and unparseable numerics coerce to
// 0.0. Only a structurally broken payload is an error.
func ParsePayload(raw string) (*domain.FiscalRecord, error) {
	cleaned := StripDecorations(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty output", domain.ErrMalformedPayload)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	rec := RecordFromFields(fields)
	return rec, nil
}

// RecordFromFields builds a FiscalRecord from a decoded payload map. The
// normalizer contract says every key is present, but the generation service
// is unreliable, so every field is re-defaulted here regardless. The mapping
// is idempotent: feeding a record's own fields back in yields the same record.
func RecordFromFields(fields map[string]any) *domain.FiscalRecord {
	return &domain.FiscalRecord{
		IssuerName:           coerceString(fields["issuer_name"]),
		IssuerTaxID:          coerceString(fields["issuer_tax_id"]),
		RecipientName:        coerceString(fields["recipient_name"]),
		RecipientTaxID:       coerceString(fields["recipient_tax_id"]),
		DocumentNumber:       coerceString(fields["document_number"]),
		IssueDate:            CanonicalizeDate(coerceString(fields["issue_date"])),
		GrossAmount:          coerceFloat(fields["gross_amount"]),
		NetAmount:            coerceFloat(fields["net_amount"]),
		DiscountAmount:       coerceFloat(fields["discount_amount"]),
		GoodsTaxAmount:       coerceFloat(fields["goods_tax_amount"]),
		GoodsTaxSurcharge:    coerceFloat(fields["goods_tax_surcharge"]),
		GoodsTaxSubstitution: coerceFloat(fields["goods_tax_substitution"]),
		ServiceTaxAmount:     coerceFloat(fields["service_tax_amount"]),
		ServiceTaxWithheld:   coerceFloat(fields["service_tax_withheld"]),
		LineDescription:      coerceString(fields["line_description"]),
		ClassificationCode:   coerceString(fields["classification_code"]),
	}
}

// coerceString normalizes a payload value to a trimmed string. Numbers are
// formatted without an exponent so document numbers survive being emitted as
// JSON numbers; anything else defaults to "".
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// coerceFloat normalizes a payload value to a float64, defaulting to 0.0 for
// anything unparseable rather than propagating a type error. String amounts
// in Brazilian locale form ("1.234,56") are converted to dot-decimal first.
func coerceFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		s = strings.TrimPrefix(s, "R$")
		s = strings.TrimSpace(s)
		if strings.Contains(s, ",") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// dateLayouts are the input formats the canonicalizer recognizes, tried in order.
var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
}

// CanonicalizeDate rewrites a date string to DD/MM/YYYY when it matches a
// known layout; otherwise the extracted value is kept as-is.
func CanonicalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return s
}
