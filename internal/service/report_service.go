package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"fiscos/internal/aggregate"
	"fiscos/internal/csvexport"
	"fiscos/internal/domain"
	"fiscos/internal/pipeline"
	"fiscos/internal/port"
	"fiscos/internal/xlsxexport"
)

const defaultTopIssuers = 10

// ReportService derives report views from the record store. Every view is
// computed from a fresh LoadAll so reports always reflect the full history.
type ReportService interface {
	Summary(ctx context.Context) (*aggregate.Summary, error)
	TopIssuers(ctx context.Context, limit int) ([]aggregate.IssuerTotal, error)
	ExportCSV(ctx context.Context, w io.Writer) error
	ExportXLSX(ctx context.Context) ([]byte, error)
	Narrative(ctx context.Context) (string, error)
}

type reportService struct {
	recordRepo port.RecordRepository
	gen        port.TextGenerator
}

// NewReportService creates a new ReportService implementation.
func NewReportService(recordRepo port.RecordRepository, gen port.TextGenerator) ReportService {
	return &reportService{recordRepo: recordRepo, gen: gen}
}

func (s *reportService) Summary(ctx context.Context) (*aggregate.Summary, error) {
	records, err := s.recordRepo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	sum := aggregate.Summarize(records)
	return &sum, nil
}

func (s *reportService) TopIssuers(ctx context.Context, limit int) ([]aggregate.IssuerTotal, error) {
	records, err := s.recordRepo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopIssuers
	}
	return aggregate.TopIssuers(records, limit), nil
}

func (s *reportService) ExportCSV(ctx context.Context, w io.Writer) error {
	records, err := s.recordRepo.LoadAll(ctx)
	if err != nil {
		return err
	}

	if _, err := w.Write(csvexport.BOM); err != nil {
		return fmt.Errorf("reportService.ExportCSV: %w", err)
	}
	cw := csvexport.NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return fmt.Errorf("reportService.ExportCSV: %w", err)
	}
	if err := cw.WriteRecords(records); err != nil {
		return fmt.Errorf("reportService.ExportCSV: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("reportService.ExportCSV: %w", err)
	}
	return nil
}

func (s *reportService) ExportXLSX(ctx context.Context) ([]byte, error) {
	records, err := s.recordRepo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return xlsxexport.BuildWorkbook(records)
}

// narrativeInput is the aggregate view handed to the generation service for
// the executive narrative. Totals are computed here so the narrative never
// invents arithmetic.
type narrativeInput struct {
	Summary          aggregate.Summary      `json:"summary"`
	TopGoodsIssuer   *aggregate.IssuerTotal `json:"top_goods_issuer,omitempty"`
	TopServiceIssuer *aggregate.IssuerTotal `json:"top_service_issuer,omitempty"`
}

func (s *reportService) Narrative(ctx context.Context) (string, error) {
	records, err := s.recordRepo.LoadAll(ctx)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", domain.ErrNoRecords
	}

	input := narrativeInput{
		Summary:          aggregate.Summarize(records),
		TopGoodsIssuer:   aggregate.TopIssuerByType(records, domain.DocumentTypeGoods),
		TopServiceIssuer: aggregate.TopIssuerByType(records, domain.DocumentTypeService),
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("reportService.Narrative: %w", err)
	}

	out, err := s.gen.Generate(ctx, port.GenerateInput{
		Task:           pipeline.BuildNarrativePrompt(string(payload)),
		ExpectedOutput: pipeline.NarrativeExpectation,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneratorExhausted, err)
	}
	return out.Text, nil
}
