// Package xlsxexport builds XLSX workbooks from stored fiscal records.
package xlsxexport

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"fiscos/internal/aggregate"
	"fiscos/internal/domain"
)

const (
	recordsSheet = "Records"
	summarySheet = "Summary"
)

var headers = []string{
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

// BuildWorkbook returns an XLSX workbook (as bytes) with a Records sheet
// holding one row per fiscal record and a Summary sheet with the headline
// totals for the same set.
func BuildWorkbook(records []domain.FiscalRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(recordsSheet, cell, h)
	}

	row := 2
	for i := range records {
		r := &records[i]
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(recordsSheet, cell, v)
		}
		write(1, r.SourceFile)
		write(2, string(r.DocumentType))
		write(3, r.IssuerName)
		write(4, r.IssuerTaxID)
		write(5, r.RecipientName)
		write(6, r.RecipientTaxID)
		write(7, r.DocumentNumber)
		write(8, r.IssueDate)
		write(9, r.GrossAmount)
		write(10, r.NetAmount)
		write(11, r.DiscountAmount)
		write(12, r.GoodsTaxAmount)
		write(13, r.GoodsTaxSurcharge)
		write(14, r.GoodsTaxSubstitution)
		write(15, r.ServiceTaxAmount)
		write(16, r.ServiceTaxWithheld)
		write(17, r.LineDescription)
		write(18, r.ClassificationCode)
		write(19, r.IngestedAt.Format(time.RFC3339))
		row++
	}

	_ = f.SetColWidth(recordsSheet, "A", "A", 32)
	_ = f.SetColWidth(recordsSheet, "B", "B", 14)
	_ = f.SetColWidth(recordsSheet, "C", "G", 26)
	_ = f.SetColWidth(recordsSheet, "H", "H", 12)
	_ = f.SetColWidth(recordsSheet, "I", "P", 14)
	_ = f.SetColWidth(recordsSheet, "Q", "Q", 48)

	if err := writeSummarySheet(f, records); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, records []domain.FiscalRecord) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	s := aggregate.Summarize(records)
	rows := []struct {
		label string
		value any
	}{
		{"Records", s.RecordCount},
		{"Goods documents", s.GoodsCount},
		{"Service documents", s.ServiceCount},
		{"Unclassified documents", s.UnknownCount},
		{"Gross total", s.GrossTotal},
		{"Net total", s.NetTotal},
		{"Discount total", s.DiscountTotal},
		{"Goods gross total", s.GoodsGrossTotal},
		{"Service gross total", s.ServiceGrossTotal},
		{"Goods tax total", s.GoodsTaxTotal},
		{"Service tax total", s.ServiceTaxTotal},
		{"Total tax burden", s.TotalTaxBurden},
		{"Tax burden ratio", s.TaxBurdenRatio},
		{"Distinct issuers", s.DistinctIssuers},
		{"Distinct recipients", s.DistinctRecipients},
	}

	for i, r := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(summarySheet, labelCell, r.label)
		_ = f.SetCellValue(summarySheet, valueCell, r.value)
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 28)
	_ = f.SetColWidth(summarySheet, "B", "B", 18)
	return nil
}
