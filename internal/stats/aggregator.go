// Package stats derives dashboard statistics from the invoice repository.
package stats

import (
	"math"
	"sort"
	"time"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/port"
)

// Aggregator computes read-only projections. It holds no state of its own, so
// every call reflects the repository as it is at that moment.
type Aggregator struct {
	src port.InvoiceReader
	now func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock sets the clock that defines "today" for the revenue window.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator creates an Aggregator over src.
func NewAggregator(src port.InvoiceReader, opts ...Option) *Aggregator {
	a := &Aggregator{src: src, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// consistentReader is implemented by sources that can return invoices and
// clients under one read.
type consistentReader interface {
	View() ([]domain.Invoice, []domain.Client)
}

func (a *Aggregator) view() ([]domain.Invoice, []domain.Client) {
	if r, ok := a.src.(consistentReader); ok {
		return r.View()
	}
	return a.src.Invoices(), a.src.Clients()
}

// Summary returns total revenue and invoice and client counts.
func (a *Aggregator) Summary() domain.Summary {
	invoices, clients := a.view()
	return domain.Summary{
		TotalRevenue:  totalRevenue(invoices),
		TotalInvoices: len(invoices),
		TotalClients:  len(clients),
	}
}

// RevenuePerDay returns one entry per calendar day for the trailing window ending
// today, oldest first. Days without invoices are present with a zero total.
func (a *Aggregator) RevenuePerDay(windowDays int) []domain.DailyRevenue {
	if windowDays <= 0 {
		return []domain.DailyRevenue{}
	}
	return revenueSeries(a.src.Invoices(), windowDays, a.now())
}

// TopClients returns clients ordered by total billed value, highest first. Ties
// keep the order in which clients were first seen. A limit <= 0 returns all.
func (a *Aggregator) TopClients(limit int) []domain.ClientValue {
	return topClients(a.src.Clients(), limit)
}

// RecentInvoices returns the newest invoices by issue date. Invoices without a
// date sort last; among equal dates the most recently stored comes first.
func (a *Aggregator) RecentInvoices(limit int) []domain.Invoice {
	invoices := a.src.Invoices()
	for i, j := 0, len(invoices)-1; i < j; i, j = i+1, j-1 {
		invoices[i], invoices[j] = invoices[j], invoices[i]
	}
	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].IssueDate > invoices[j].IssueDate
	})
	if limit > 0 && len(invoices) > limit {
		invoices = invoices[:limit]
	}
	return invoices
}

// Snapshot combines the dashboard figures. Every figure comes from the same
// read of the source.
func (a *Aggregator) Snapshot(windowDays, topLimit int) domain.StatsSnapshot {
	invoices, clients := a.view()
	active := 0
	for _, c := range clients {
		if c.InvoiceCount > 0 {
			active++
		}
	}
	series := []domain.DailyRevenue{}
	if windowDays > 0 {
		series = revenueSeries(invoices, windowDays, a.now())
	}
	return domain.StatsSnapshot{
		TotalRevenue:      totalRevenue(invoices),
		ProcessedInvoices: len(invoices),
		ActiveClients:     active,
		ProcessingRate:    processingRate(invoices),
		RevenuePerDay:     series,
		TopClients:        topClients(clients, topLimit),
	}
}

func revenueSeries(invoices []domain.Invoice, windowDays int, now time.Time) []domain.DailyRevenue {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(windowDays - 1))

	series := make([]domain.DailyRevenue, windowDays)
	index := make(map[string]int, windowDays)
	for i := range series {
		day := start.AddDate(0, 0, i).Format(domain.DateLayout)
		series[i] = domain.DailyRevenue{Date: day}
		index[day] = i
	}
	for _, inv := range invoices {
		if i, ok := index[inv.IssueDate]; ok {
			series[i].Total += inv.Amount
		}
	}
	return series
}

func topClients(clients []domain.Client, limit int) []domain.ClientValue {
	sort.SliceStable(clients, func(i, j int) bool {
		return clients[i].TotalValue > clients[j].TotalValue
	})
	if limit > 0 && len(clients) > limit {
		clients = clients[:limit]
	}
	out := make([]domain.ClientValue, 0, len(clients))
	for _, c := range clients {
		out = append(out, domain.ClientValue{Name: c.Name, TotalValue: c.TotalValue})
	}
	return out
}

func totalRevenue(invoices []domain.Invoice) float64 {
	total := 0.0
	for _, inv := range invoices {
		total += inv.Amount
	}
	return total
}

// processingRate is the percentage of paid invoices, rounded to one decimal.
func processingRate(invoices []domain.Invoice) float64 {
	if len(invoices) == 0 {
		return 0
	}
	paid := 0
	for _, inv := range invoices {
		if inv.Status == domain.InvoiceStatusPaid {
			paid++
		}
	}
	return math.Round(float64(paid)*1000/float64(len(invoices))) / 10
}
