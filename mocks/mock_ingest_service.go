package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"invoicedesk/internal/domain"
)

// MockIngestService is a mock implementation of service.IngestService.
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Ingest(ctx context.Context, name string, r io.Reader) (*domain.InvoiceDraft, error) {
	args := m.Called(ctx, name, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceDraft), args.Error(1)
}

func (m *MockIngestService) DocumentURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
