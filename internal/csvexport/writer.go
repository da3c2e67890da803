package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fiscos/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (19 columns).
var columns = []string{
	"Source File",
	"Document Type",
	"Issuer Name",
	"Issuer Tax ID",
	"Recipient Name",
	"Recipient Tax ID",
	"Document Number",
	"Issue Date",
	"Gross Amount",
	"Net Amount",
	"Discount Amount",
	"Goods Tax",
	"Goods Tax Surcharge",
	"Goods Tax Substitution",
	"Service Tax",
	"Service Tax Withheld",
	"Description",
	"Classification Code",
	"Ingested At",
}

// Writer wraps csv.Writer for exporting fiscal records as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRecords converts a batch of fiscal records to CSV rows and writes them.
func (w *Writer) WriteRecords(records []domain.FiscalRecord) error {
	for i := range records {
		row := recordToRow(&records[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func recordToRow(r *domain.FiscalRecord) []string {
	row := make([]string, len(columns))
	row[0] = r.SourceFile
	row[1] = string(r.DocumentType)
	row[2] = r.IssuerName
	row[3] = r.IssuerTaxID
	row[4] = r.RecipientName
	row[5] = r.RecipientTaxID
	row[6] = r.DocumentNumber
	row[7] = r.IssueDate
	row[8] = formatMoney(r.GrossAmount)
	row[9] = formatMoney(r.NetAmount)
	row[10] = formatMoney(r.DiscountAmount)
	row[11] = formatMoney(r.GoodsTaxAmount)
	row[12] = formatMoney(r.GoodsTaxSurcharge)
	row[13] = formatMoney(r.GoodsTaxSubstitution)
	row[14] = formatMoney(r.ServiceTaxAmount)
	row[15] = formatMoney(r.ServiceTaxWithheld)
	row[16] = r.LineDescription
	row[17] = r.ClassificationCode
	row[18] = r.IngestedAt.Format(time.RFC3339)
	return row
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans an export name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
