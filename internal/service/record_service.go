package service

import (
	"context"

	"fiscos/internal/domain"
	"fiscos/internal/port"
)

// RecordService exposes the stored record history.
type RecordService interface {
	List(ctx context.Context) ([]domain.FiscalRecord, error)
	Clear(ctx context.Context) error
}

type recordService struct {
	recordRepo port.RecordRepository
}

// NewRecordService creates a new RecordService implementation.
func NewRecordService(recordRepo port.RecordRepository) RecordService {
	return &recordService{recordRepo: recordRepo}
}

func (s *recordService) List(ctx context.Context) ([]domain.FiscalRecord, error) {
	return s.recordRepo.LoadAll(ctx)
}

func (s *recordService) Clear(ctx context.Context) error {
	return s.recordRepo.ClearAll(ctx)
}
