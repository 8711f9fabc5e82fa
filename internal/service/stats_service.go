package service

import (
	"context"

	"invoicedesk/internal/config"
	"invoicedesk/internal/domain"
	"invoicedesk/internal/port"
)

const (
	maxWindowDays = 366
	maxListLimit  = 100
)

// StatsService serves the dashboard statistics with configured defaults.
type StatsService interface {
	Summary(ctx context.Context) (*domain.Summary, error)
	RevenuePerDay(ctx context.Context, days int) ([]domain.DailyRevenue, error)
	TopClients(ctx context.Context, limit int) ([]domain.ClientValue, error)
	RecentInvoices(ctx context.Context, limit int) ([]domain.Invoice, error)
	Snapshot(ctx context.Context) (*domain.StatsSnapshot, error)
	Invalidate()
}

type invalidator interface {
	Invalidate()
}

type statsService struct {
	provider port.StatsProvider
	cfg      config.StatsConfig
}

// NewStatsService creates a new StatsService implementation.
func NewStatsService(provider port.StatsProvider, cfg config.StatsConfig) StatsService {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 7
	}
	if cfg.TopClients <= 0 {
		cfg.TopClients = 5
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 5
	}
	return &statsService{provider: provider, cfg: cfg}
}

func (s *statsService) Summary(ctx context.Context) (*domain.Summary, error) {
	return s.provider.Summary(ctx)
}

func (s *statsService) RevenuePerDay(ctx context.Context, days int) ([]domain.DailyRevenue, error) {
	return s.provider.RevenuePerDay(ctx, clamp(days, s.cfg.WindowDays, maxWindowDays))
}

func (s *statsService) TopClients(ctx context.Context, limit int) ([]domain.ClientValue, error) {
	return s.provider.TopClients(ctx, clamp(limit, s.cfg.TopClients, maxListLimit))
}

func (s *statsService) RecentInvoices(ctx context.Context, limit int) ([]domain.Invoice, error) {
	return s.provider.RecentInvoices(ctx, clamp(limit, s.cfg.RecentLimit, maxListLimit))
}

func (s *statsService) Snapshot(ctx context.Context) (*domain.StatsSnapshot, error) {
	return s.provider.Snapshot(ctx, s.cfg.WindowDays, s.cfg.TopClients)
}

// Invalidate drops cached statistics, if the provider caches any.
func (s *statsService) Invalidate() {
	if inv, ok := s.provider.(invalidator); ok {
		inv.Invalidate()
	}
}

// clamp substitutes def for non-positive n and caps n at upper.
func clamp(n, def, upper int) int {
	if n <= 0 {
		n = def
	}
	if n > upper {
		n = upper
	}
	return n
}
