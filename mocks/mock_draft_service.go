package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoicedesk/internal/domain"
)

// MockDraftService is a mock implementation of service.DraftService.
type MockDraftService struct {
	mock.Mock
}

func (m *MockDraftService) Current(ctx context.Context) (*domain.InvoiceDraft, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceDraft), args.Error(1)
}

func (m *MockDraftService) Edit(ctx context.Context, field, value string) (*domain.InvoiceDraft, error) {
	args := m.Called(ctx, field, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceDraft), args.Error(1)
}

func (m *MockDraftService) Commit(ctx context.Context) (*domain.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockDraftService) Cancel(ctx context.Context) {
	m.Called(ctx)
}
