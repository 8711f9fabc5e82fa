// Package remote persists invoices through the backend REST API.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"invoicedesk/internal/backend"
	"invoicedesk/internal/domain"
	"invoicedesk/internal/logger"
)

// Gateway implements port.Gateway and port.ClientLister over HTTP. Calls are
// made exactly once; a transport failure is ambiguous and may have been applied.
type Gateway struct {
	backend *backend.Client
	log     zerolog.Logger
}

// NewGateway creates a remote gateway.
func NewGateway(b *backend.Client) *Gateway {
	return &Gateway{backend: b, log: logger.WithComponent("persistence.remote")}
}

func (g *Gateway) Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	var body json.RawMessage
	if err := g.backend.Do(ctx, http.MethodPost, "/invoices", backend.NewInvoiceBody(inv), &body); err != nil {
		return nil, g.wrap("Create", err)
	}
	saved := merge(inv, body)
	if saved.ID == "" {
		return nil, fmt.Errorf("remote.Create: %w: backend returned no invoice id", domain.ErrPersistenceFailed)
	}
	g.log.Info().Str("invoice_id", saved.ID).Msg("invoice created")
	return saved, nil
}

func (g *Gateway) Update(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	if inv.ID == "" {
		return nil, domain.ErrMissingIdentifier
	}
	var body json.RawMessage
	path := "/invoices/" + backend.PathEscape(inv.ID)
	if err := g.backend.Do(ctx, http.MethodPut, path, backend.NewInvoiceBody(inv), &body); err != nil {
		return nil, g.wrap("Update", err)
	}
	saved := merge(inv, body)
	saved.ID = inv.ID
	g.log.Info().Str("invoice_id", saved.ID).Msg("invoice updated")
	return saved, nil
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	if err := g.backend.Do(ctx, http.MethodDelete, "/invoices/"+backend.PathEscape(id), nil, nil); err != nil {
		return g.wrap("Delete", err)
	}
	g.log.Info().Str("invoice_id", id).Msg("invoice deleted")
	return nil
}

func (g *Gateway) List(ctx context.Context) ([]domain.Invoice, error) {
	var records []backend.InvoiceRecord
	if err := g.backend.Do(ctx, http.MethodGet, "/invoices", nil, &records); err != nil {
		return nil, g.wrap("List", err)
	}
	out := make([]domain.Invoice, 0, len(records))
	for i := range records {
		inv := records[i].ToDomain()
		if inv.ID == "" {
			g.log.Warn().Str("invoice_number", inv.InvoiceNumber).Msg("skipping backend invoice without id")
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

// ListClients implements port.ClientLister.
func (g *Gateway) ListClients(ctx context.Context) ([]domain.Client, error) {
	var records []backend.ClientRecord
	if err := g.backend.Do(ctx, http.MethodGet, "/clients", nil, &records); err != nil {
		return nil, g.wrap("ListClients", err)
	}
	out := make([]domain.Client, 0, len(records))
	for i := range records {
		out = append(out, records[i].ToDomain())
	}
	return out, nil
}

// wrap classifies transport errors: unreachable backends and timeouts are
// network failures, anything the backend answered is a persistence failure.
func (g *Gateway) wrap(op string, err error) error {
	var timeoutErr *backend.TimeoutError
	switch {
	case errors.Is(err, domain.ErrNetworkUnavailable):
		g.log.Error().Err(err).Str("op", op).Msg("backend unreachable")
		return fmt.Errorf("remote.%s: %w", op, err)
	case errors.As(err, &timeoutErr):
		g.log.Error().Err(err).Str("op", op).Msg("backend timed out")
		return fmt.Errorf("remote.%s: %w: %w", op, domain.ErrNetworkUnavailable, err)
	case backend.IsNotFound(err):
		return fmt.Errorf("remote.%s: %w: %w", op, domain.ErrNotFound, err)
	}
	g.log.Error().Err(err).Str("op", op).Msg("backend rejected request")
	return fmt.Errorf("remote.%s: %w: %w", op, domain.ErrPersistenceFailed, err)
}

// merge overlays the backend's answer on what was sent. Fields the backend
// omitted keep the submitted values.
func merge(sent *domain.Invoice, body json.RawMessage) *domain.Invoice {
	saved := *sent
	saved.Provenance = nil
	if len(body) == 0 {
		return &saved
	}

	var rec backend.InvoiceRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		// A non-object answer (e.g. a bare message) is treated as acknowledgement.
		return &saved
	}
	got := rec.ToDomain()
	if got.ID != "" {
		saved.ID = got.ID
	}
	if got.InvoiceNumber != "" {
		saved.InvoiceNumber = got.InvoiceNumber
	}
	if got.ClientName != "" {
		saved.ClientName = got.ClientName
	}
	if got.ClientEmail != "" {
		saved.ClientEmail = got.ClientEmail
	}
	if got.IssueDate != "" {
		saved.IssueDate = got.IssueDate
	}
	if got.DueDate != "" {
		saved.DueDate = got.DueDate
	}
	if rec.Status != "" {
		saved.Status = got.Status
	}
	if !got.CreatedAt.IsZero() {
		saved.CreatedAt = got.CreatedAt
	}
	if !got.UpdatedAt.IsZero() {
		saved.UpdatedAt = got.UpdatedAt
	}
	return &saved
}
