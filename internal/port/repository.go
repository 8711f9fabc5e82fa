package port

import "invoicedesk/internal/domain"

// InvoiceReader is the read side of the invoice/client repository.
type InvoiceReader interface {
	Invoices() []domain.Invoice
	Clients() []domain.Client
}

// InvoiceRepository is the in-process invoice/client store.
type InvoiceRepository interface {
	InvoiceReader
	Upsert(inv domain.Invoice) (domain.Invoice, error)
	Remove(id string) bool
	FindInvoice(id string) (domain.Invoice, bool)
	FindClient(id string) (domain.Client, bool)
	FindClientByName(name string) (domain.Client, bool)
	InvoicesForClient(clientID string) []domain.Invoice
	PutClient(c domain.Client) (domain.Client, error)
	ReplaceAll(invoices []domain.Invoice, clients []domain.Client) error
}
