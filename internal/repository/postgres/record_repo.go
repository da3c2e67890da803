package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fiscos/internal/domain"
	"fiscos/internal/port"
)

type recordRepo struct {
	db *sqlx.DB
}

// NewRecordRepo creates a new PostgreSQL-backed RecordRepository.
func NewRecordRepo(db *sqlx.DB) port.RecordRepository {
	return &recordRepo{db: db}
}

// recordColumns lists every column explicitly so rows written under an older
// field set read back with their column defaults instead of failing.
const recordColumns = `id, batch_id, source_file, document_type,
	issuer_name, issuer_tax_id, recipient_name, recipient_tax_id,
	document_number, issue_date,
	gross_amount, net_amount, discount_amount,
	goods_tax_amount, goods_tax_surcharge, goods_tax_substitution,
	service_tax_amount, service_tax_withheld,
	line_description, classification_code, ingested_at`

const insertRecordQuery = `INSERT INTO fiscal_records (` + recordColumns + `
) VALUES (
	:id, :batch_id, :source_file, :document_type,
	:issuer_name, :issuer_tax_id, :recipient_name, :recipient_tax_id,
	:document_number, :issue_date,
	:gross_amount, :net_amount, :discount_amount,
	:goods_tax_amount, :goods_tax_surcharge, :goods_tax_substitution,
	:service_tax_amount, :service_tax_withheld,
	:line_description, :classification_code, :ingested_at
)`

func (r *recordRepo) InsertBatch(ctx context.Context, batchID uuid.UUID, records []domain.FiscalRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recordRepo.InsertBatch begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range records {
		rec := &records[i]
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		rec.BatchID = batchID
		rec.IngestedAt = now
		if _, err := tx.NamedExecContext(ctx, insertRecordQuery, rec); err != nil {
			return fmt.Errorf("recordRepo.InsertBatch %s: %w", rec.SourceFile, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recordRepo.InsertBatch commit: %w", err)
	}
	return nil
}

func (r *recordRepo) LoadAll(ctx context.Context) ([]domain.FiscalRecord, error) {
	var records []domain.FiscalRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT `+recordColumns+` FROM fiscal_records ORDER BY ingested_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("recordRepo.LoadAll: %w", err)
	}
	return records, nil
}

func (r *recordRepo) ClearAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM fiscal_records"); err != nil {
		return fmt.Errorf("recordRepo.ClearAll: %w", err)
	}
	return nil
}
