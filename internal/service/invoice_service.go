package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/export"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/port"
	"invoicedesk/internal/validator"
)

// CreateInvoiceInput is the DTO for entering an invoice by hand.
type CreateInvoiceInput struct {
	InvoiceNumber string               `json:"invoice_number"`
	ClientName    string               `json:"client_name" binding:"required"`
	ClientEmail   string               `json:"client_email"`
	IssueDate     string               `json:"issue_date"`
	DueDate       string               `json:"due_date"`
	Amount        float64              `json:"amount"`
	Status        domain.InvoiceStatus `json:"status"`
}

// UpdateInvoiceInput is the DTO for editing an existing invoice. Nil fields are
// left unchanged.
type UpdateInvoiceInput struct {
	InvoiceNumber *string               `json:"invoice_number"`
	ClientName    *string               `json:"client_name"`
	ClientEmail   *string               `json:"client_email"`
	IssueDate     *string               `json:"issue_date"`
	DueDate       *string               `json:"due_date"`
	Amount        *float64              `json:"amount"`
	Status        *domain.InvoiceStatus `json:"status"`
}

// SyncResult reports what a sync loaded.
type SyncResult struct {
	Invoices int `json:"invoices"`
	Clients  int `json:"clients"`
}

// InvoiceService manages committed invoices and their clients.
type InvoiceService interface {
	List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error)
	Get(ctx context.Context, id string) (*domain.Invoice, error)
	Create(ctx context.Context, input *CreateInvoiceInput) (*domain.Invoice, error)
	Update(ctx context.Context, id string, input *UpdateInvoiceInput) (*domain.Invoice, error)
	Delete(ctx context.Context, id string) error
	Sync(ctx context.Context) (*SyncResult, error)
	Clients(ctx context.Context) ([]domain.Client, error)
	Client(ctx context.Context, id string) (*domain.Client, error)
	ClientInvoices(ctx context.Context, id string) ([]domain.Invoice, error)
	Export(ctx context.Context, format string, filter domain.InvoiceFilter, w io.Writer) error
}

// ChangeFunc is called after the invoice set changes.
type ChangeFunc func()

type invoiceService struct {
	gateway  port.Gateway
	repo     port.InvoiceRepository
	rules    *validator.Registry
	onChange []ChangeFunc
	log      zerolog.Logger
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(gw port.Gateway, repo port.InvoiceRepository, rules *validator.Registry, onChange ...ChangeFunc) InvoiceService {
	if rules == nil {
		rules = validator.DefaultRegistry()
	}
	return &invoiceService{
		gateway:  gw,
		repo:     repo,
		rules:    rules,
		onChange: onChange,
		log:      logger.WithComponent("invoices"),
	}
}

func (s *invoiceService) changed() {
	for _, fn := range s.onChange {
		fn()
	}
}

func (s *invoiceService) List(_ context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	return filterInvoices(s.repo.Invoices(), filter), nil
}

func filterInvoices(all []domain.Invoice, filter domain.InvoiceFilter) []domain.Invoice {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]domain.Invoice, 0, len(all))
	for i := range all {
		inv := all[i]
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(inv.InvoiceNumber), query) &&
			!strings.Contains(strings.ToLower(inv.ClientName), query) &&
			!strings.Contains(strings.ToLower(inv.ClientEmail), query) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

func (s *invoiceService) Get(_ context.Context, id string) (*domain.Invoice, error) {
	inv, ok := s.repo.FindInvoice(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &inv, nil
}

func (s *invoiceService) Create(ctx context.Context, input *CreateInvoiceInput) (*domain.Invoice, error) {
	status := input.Status
	if status == "" {
		status = domain.InvoiceStatusPending
	} else if parsed, ok := domain.ParseInvoiceStatus(string(status)); ok {
		status = parsed
	}
	inv := &domain.Invoice{
		InvoiceNumber: strings.TrimSpace(input.InvoiceNumber),
		ClientName:    strings.TrimSpace(input.ClientName),
		ClientEmail:   strings.TrimSpace(input.ClientEmail),
		IssueDate:     strings.TrimSpace(input.IssueDate),
		DueDate:       strings.TrimSpace(input.DueDate),
		Amount:        input.Amount,
		Status:        status,
	}
	return s.save(ctx, inv, s.gateway.Create)
}

func (s *invoiceService) Update(ctx context.Context, id string, input *UpdateInvoiceInput) (*domain.Invoice, error) {
	existing, ok := s.repo.FindInvoice(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	inv := existing
	if input.InvoiceNumber != nil {
		inv.InvoiceNumber = strings.TrimSpace(*input.InvoiceNumber)
	}
	if input.ClientName != nil {
		inv.ClientName = strings.TrimSpace(*input.ClientName)
	}
	if input.ClientEmail != nil {
		inv.ClientEmail = strings.TrimSpace(*input.ClientEmail)
	}
	if input.IssueDate != nil {
		inv.IssueDate = strings.TrimSpace(*input.IssueDate)
	}
	if input.DueDate != nil {
		inv.DueDate = strings.TrimSpace(*input.DueDate)
	}
	if input.Amount != nil {
		inv.Amount = *input.Amount
	}
	if input.Status != nil {
		inv.Status = *input.Status
		if parsed, ok := domain.ParseInvoiceStatus(string(*input.Status)); ok {
			inv.Status = parsed
		}
	}
	if !strings.EqualFold(inv.ClientName, existing.ClientName) {
		inv.ClientID = ""
	}
	return s.save(ctx, &inv, s.gateway.Update)
}

type saveFunc func(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error)

// save validates inv, writes it through the gateway and records the result.
func (s *invoiceService) save(ctx context.Context, inv *domain.Invoice, write saveFunc) (*domain.Invoice, error) {
	if err := validator.Check(s.rules, inv, nil); err != nil {
		return nil, err
	}
	if inv.ClientID == "" {
		if c, ok := s.repo.FindClientByName(inv.ClientName); ok {
			inv.ClientID = c.ID
		}
	}

	saved, err := write(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("invoiceService.save: %w", err)
	}
	if saved.ClientID == "" {
		saved.ClientID = inv.ClientID
	}
	stored, err := s.repo.Upsert(*saved)
	if err != nil {
		return nil, fmt.Errorf("invoiceService.save: %w: %w", domain.ErrPersistenceFailed, err)
	}
	s.changed()
	s.log.Info().Str("invoice_id", stored.ID).Msg("invoice saved")
	return &stored, nil
}

func (s *invoiceService) Delete(ctx context.Context, id string) error {
	if _, ok := s.repo.FindInvoice(id); !ok {
		return domain.ErrNotFound
	}
	if err := s.gateway.Delete(ctx, id); err != nil {
		return fmt.Errorf("invoiceService.Delete: %w", err)
	}
	s.repo.Remove(id)
	s.changed()
	s.log.Info().Str("invoice_id", id).Msg("invoice deleted")
	return nil
}

// Sync replaces the repository contents with the gateway's records. Client
// records are loaded too when the gateway keeps them.
func (s *invoiceService) Sync(ctx context.Context) (*SyncResult, error) {
	invoices, err := s.gateway.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("invoiceService.Sync: %w", err)
	}
	var clients []domain.Client
	if lister, ok := s.gateway.(port.ClientLister); ok {
		clients, err = lister.ListClients(ctx)
		if err != nil {
			return nil, fmt.Errorf("invoiceService.Sync: %w", err)
		}
	}
	if err := s.repo.ReplaceAll(invoices, clients); err != nil {
		return nil, fmt.Errorf("invoiceService.Sync: %w", err)
	}
	s.changed()

	result := &SyncResult{Invoices: len(invoices), Clients: len(s.repo.Clients())}
	s.log.Info().Int("invoices", result.Invoices).Int("clients", result.Clients).Msg("repository synced")
	return result, nil
}

func (s *invoiceService) Clients(_ context.Context) ([]domain.Client, error) {
	return s.repo.Clients(), nil
}

func (s *invoiceService) Client(_ context.Context, id string) (*domain.Client, error) {
	c, ok := s.repo.FindClient(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *invoiceService) ClientInvoices(_ context.Context, id string) ([]domain.Invoice, error) {
	if _, ok := s.repo.FindClient(id); !ok {
		return nil, domain.ErrNotFound
	}
	return s.repo.InvoicesForClient(id), nil
}

func (s *invoiceService) Export(_ context.Context, format string, filter domain.InvoiceFilter, w io.Writer) error {
	return export.Write(w, format, filterInvoices(s.repo.Invoices(), filter))
}
