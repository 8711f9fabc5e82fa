package stats

import (
	"context"

	"invoicedesk/internal/domain"
)

// LocalProvider serves statistics computed from the in-process repository.
type LocalProvider struct {
	agg *Aggregator
}

// NewLocalProvider wraps an Aggregator as a port.StatsProvider.
func NewLocalProvider(agg *Aggregator) *LocalProvider {
	return &LocalProvider{agg: agg}
}

func (p *LocalProvider) Summary(_ context.Context) (*domain.Summary, error) {
	s := p.agg.Summary()
	return &s, nil
}

func (p *LocalProvider) RevenuePerDay(_ context.Context, days int) ([]domain.DailyRevenue, error) {
	return p.agg.RevenuePerDay(days), nil
}

func (p *LocalProvider) TopClients(_ context.Context, limit int) ([]domain.ClientValue, error) {
	return p.agg.TopClients(limit), nil
}

func (p *LocalProvider) RecentInvoices(_ context.Context, limit int) ([]domain.Invoice, error) {
	return p.agg.RecentInvoices(limit), nil
}

func (p *LocalProvider) Snapshot(_ context.Context, days, topLimit int) (*domain.StatsSnapshot, error) {
	s := p.agg.Snapshot(days, topLimit)
	return &s, nil
}

// Invalidate is a no-op: local statistics are never cached.
func (p *LocalProvider) Invalidate() {}
