package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoicedesk/internal/domain"
)

// MockStatsService is a mock implementation of service.StatsService.
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Summary(ctx context.Context) (*domain.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *MockStatsService) RevenuePerDay(ctx context.Context, days int) ([]domain.DailyRevenue, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyRevenue), args.Error(1)
}

func (m *MockStatsService) TopClients(ctx context.Context, limit int) ([]domain.ClientValue, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClientValue), args.Error(1)
}

func (m *MockStatsService) RecentInvoices(ctx context.Context, limit int) ([]domain.Invoice, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockStatsService) Snapshot(ctx context.Context) (*domain.StatsSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatsSnapshot), args.Error(1)
}

func (m *MockStatsService) Invalidate() {
	m.Called()
}
