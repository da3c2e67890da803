package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fiscos/internal/domain"
)

// MockRecordRepo is a mock implementation of port.RecordRepository.
type MockRecordRepo struct {
	mock.Mock
}

func (m *MockRecordRepo) InsertBatch(ctx context.Context, batchID uuid.UUID, records []domain.FiscalRecord) error {
	args := m.Called(ctx, batchID, records)
	return args.Error(0)
}

func (m *MockRecordRepo) LoadAll(ctx context.Context) ([]domain.FiscalRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalRecord), args.Error(1)
}

func (m *MockRecordRepo) ClearAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
