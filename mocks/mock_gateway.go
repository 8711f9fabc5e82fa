package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoicedesk/internal/domain"
)

// MockGateway is a mock implementation of port.Gateway and port.ClientLister.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	args := m.Called(ctx, inv)
	if fn, ok := args.Get(0).(func(*domain.Invoice) *domain.Invoice); ok {
		return fn(inv), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockGateway) Update(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	args := m.Called(ctx, inv)
	if fn, ok := args.Get(0).(func(*domain.Invoice) *domain.Invoice); ok {
		return fn(inv), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockGateway) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGateway) List(ctx context.Context) ([]domain.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockGateway) ListClients(ctx context.Context) ([]domain.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Client), args.Error(1)
}

// Echo makes Create and Update return a copy of their input. Create assigns id
// when it is non-empty.
func (m *MockGateway) Echo(id string) {
	m.On("Create", mock.Anything, mock.Anything).Return(func(inv *domain.Invoice) *domain.Invoice {
		out := *inv
		if id != "" {
			out.ID = id
		}
		return &out
	}, nil).Maybe()
	m.On("Update", mock.Anything, mock.Anything).Return(func(inv *domain.Invoice) *domain.Invoice {
		out := *inv
		return &out
	}, nil).Maybe()
}
