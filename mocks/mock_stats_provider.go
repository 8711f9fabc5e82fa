package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoicedesk/internal/domain"
)

// MockStatsProvider is a mock implementation of port.StatsProvider.
type MockStatsProvider struct {
	mock.Mock
}

func (m *MockStatsProvider) Summary(ctx context.Context) (*domain.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *MockStatsProvider) RevenuePerDay(ctx context.Context, days int) ([]domain.DailyRevenue, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyRevenue), args.Error(1)
}

func (m *MockStatsProvider) TopClients(ctx context.Context, limit int) ([]domain.ClientValue, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClientValue), args.Error(1)
}

func (m *MockStatsProvider) RecentInvoices(ctx context.Context, limit int) ([]domain.Invoice, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockStatsProvider) Snapshot(ctx context.Context, days, topLimit int) (*domain.StatsSnapshot, error) {
	args := m.Called(ctx, days, topLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatsSnapshot), args.Error(1)
}
