package port

import (
	"context"

	"invoicedesk/internal/domain"
)

// Gateway is the durable home of committed invoices.
type Gateway interface {
	Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error)
	Update(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Invoice, error)
}

// ClientLister is implemented by gateways that also hold first-class client records.
type ClientLister interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
}
