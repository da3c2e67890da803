package pipeline

import (
	"context"
	"fmt"

	"fiscos/internal/domain"
	"fiscos/internal/port"
)

// Pipeline drives the two-stage extraction of one document: a free-text
// extraction pass and a structuring pass, both delegated to the generation
// service, followed by the tolerant payload parse. It holds no state across
// documents.
type Pipeline struct {
	gen port.TextGenerator
}

// New creates a Pipeline backed by the given generation service.
func New(gen port.TextGenerator) *Pipeline {
	return &Pipeline{gen: gen}
}

// Run processes a single document's text to a FiscalRecord. Empty text (a
// swallowed read failure) short-circuits to an all-defaults UNKNOWN record.
// Generation failures and malformed payloads are returned as errors scoped to
// this document; the caller decides whether they abort the batch.
func (p *Pipeline) Run(ctx context.Context, sourceFile, text string) (*domain.FiscalRecord, error) {
	if text == "" {
		rec := &domain.FiscalRecord{SourceFile: sourceFile}
		domain.EnforceTypeExclusivity(rec)
		return rec, nil
	}

	description, err := p.gen.Generate(ctx, port.GenerateInput{
		Task:           BuildExtractionPrompt(text),
		ExpectedOutput: ExtractionExpectation,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction stage: %w", err)
	}

	payload, err := p.gen.Generate(ctx, port.GenerateInput{
		Task:           BuildNormalizationPrompt(description.Text),
		ExpectedOutput: NormalizationExpectation,
	})
	if err != nil {
		return nil, fmt.Errorf("normalization stage: %w", err)
	}

	rec, err := ParsePayload(payload.Text)
	if err != nil {
		return nil, err
	}

	rec.SourceFile = sourceFile
	domain.EnforceTypeExclusivity(rec)
	return rec, nil
}
