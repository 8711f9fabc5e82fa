package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"invoicedesk/internal/backend"
	"invoicedesk/internal/domain"
)

const (
	keySummary  = "summary"
	keyRevenue  = "revenue-per-day"
	keyTop      = "top-clients"
	keyRecent   = "recent-invoices"
	keyInvoices = "invoices"
)

// RemoteProvider reads statistics computed by the backend, caching each
// response for a short TTL. Commits call Invalidate so the next read is fresh.
type RemoteProvider struct {
	backend *backend.Client
	cache   *cache.Cache
}

// NewRemoteProvider creates a provider backed by the /stats endpoints.
func NewRemoteProvider(b *backend.Client, ttl time.Duration) *RemoteProvider {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RemoteProvider{backend: b, cache: cache.New(ttl, 2*ttl)}
}

// Invalidate drops every cached response.
func (p *RemoteProvider) Invalidate() {
	p.cache.Flush()
}

func (p *RemoteProvider) Summary(ctx context.Context) (*domain.Summary, error) {
	var s domain.Summary
	if err := p.fetch(ctx, keySummary, "/stats/summary", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *RemoteProvider) RevenuePerDay(ctx context.Context, days int) ([]domain.DailyRevenue, error) {
	var series []domain.DailyRevenue
	if err := p.fetch(ctx, keyRevenue, "/stats/revenue-per-day", &series); err != nil {
		return nil, err
	}
	if days > 0 && len(series) > days {
		series = series[len(series)-days:]
	}
	return series, nil
}

func (p *RemoteProvider) TopClients(ctx context.Context, limit int) ([]domain.ClientValue, error) {
	var top []domain.ClientValue
	if err := p.fetch(ctx, keyTop, "/stats/top-clients", &top); err != nil {
		return nil, err
	}
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (p *RemoteProvider) RecentInvoices(ctx context.Context, limit int) ([]domain.Invoice, error) {
	invoices, err := p.invoices(ctx, keyRecent, "/stats/recent-invoices")
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(invoices) > limit {
		invoices = invoices[:limit]
	}
	return invoices, nil
}

func (p *RemoteProvider) Snapshot(ctx context.Context, days, topLimit int) (*domain.StatsSnapshot, error) {
	summary, err := p.Summary(ctx)
	if err != nil {
		return nil, err
	}
	series, err := p.RevenuePerDay(ctx, days)
	if err != nil {
		return nil, err
	}
	top, err := p.TopClients(ctx, topLimit)
	if err != nil {
		return nil, err
	}
	all, err := p.invoices(ctx, keyInvoices, "/invoices")
	if err != nil {
		return nil, err
	}
	return &domain.StatsSnapshot{
		TotalRevenue:      summary.TotalRevenue,
		ProcessedInvoices: summary.TotalInvoices,
		ActiveClients:     summary.TotalClients,
		ProcessingRate:    processingRate(all),
		RevenuePerDay:     series,
		TopClients:        top,
	}, nil
}

func (p *RemoteProvider) invoices(ctx context.Context, key, path string) ([]domain.Invoice, error) {
	var records []backend.InvoiceRecord
	if err := p.fetch(ctx, key, path, &records); err != nil {
		return nil, err
	}
	out := make([]domain.Invoice, 0, len(records))
	for i := range records {
		out = append(out, records[i].ToDomain())
	}
	return out, nil
}

// fetch decodes the cached body for key into out, calling the backend on a miss.
func (p *RemoteProvider) fetch(ctx context.Context, key, path string, out any) error {
	if cached, ok := p.cache.Get(key); ok {
		return json.Unmarshal(cached.([]byte), out)
	}
	var raw json.RawMessage
	if err := p.backend.Do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return fmt.Errorf("stats.%s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("stats.%s: %w: %v", key, backend.ErrMalformedResponse, err)
	}
	p.cache.Set(key, []byte(raw), cache.DefaultExpiration)
	return nil
}
