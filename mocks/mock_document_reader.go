package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDocumentReader is a mock implementation of port.DocumentReader.
type MockDocumentReader struct {
	mock.Mock
}

func (m *MockDocumentReader) ExtractText(ctx context.Context, data []byte, contentType string) string {
	args := m.Called(ctx, data, contentType)
	return args.String(0)
}
