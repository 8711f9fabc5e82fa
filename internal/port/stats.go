package port

import (
	"context"

	"invoicedesk/internal/domain"
)

// StatsProvider serves the derived statistics, computed locally or fetched from a backend.
type StatsProvider interface {
	Summary(ctx context.Context) (*domain.Summary, error)
	RevenuePerDay(ctx context.Context, days int) ([]domain.DailyRevenue, error)
	TopClients(ctx context.Context, limit int) ([]domain.ClientValue, error)
	RecentInvoices(ctx context.Context, limit int) ([]domain.Invoice, error)
	Snapshot(ctx context.Context, days, topLimit int) (*domain.StatsSnapshot, error)
}
