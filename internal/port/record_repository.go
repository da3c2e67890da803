package port

import (
	"context"

	"github.com/google/uuid"

	"fiscos/internal/domain"
)

// RecordRepository defines the contract for the append-only record store.
// Records are never updated; corrections require re-ingestion.
type RecordRepository interface {
	// InsertBatch appends all records of one processing batch and assigns
	// IngestedAt server-side. It is a no-op on an empty slice. A failure here
	// is fatal for the batch: accumulated extraction work would otherwise be
	// silently lost.
	InsertBatch(ctx context.Context, batchID uuid.UUID, records []domain.FiscalRecord) error
	// LoadAll returns the full history, most recently ingested first.
	LoadAll(ctx context.Context) ([]domain.FiscalRecord, error)
	// ClearAll destructively resets the store. Operator use only.
	ClearAll(ctx context.Context) error
}
