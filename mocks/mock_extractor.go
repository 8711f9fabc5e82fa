package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoicedesk/internal/domain"
)

// MockExtractor is a mock implementation of port.Extractor.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, payload *domain.EncodedPayload) (*domain.RawFieldMap, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RawFieldMap), args.Error(1)
}
