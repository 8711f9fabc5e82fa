package domain

import "time"

// Invoice is the canonical, committed invoice record.
type Invoice struct {
	ID            string        `db:"id" json:"id"`
	InvoiceNumber string        `db:"invoice_number" json:"invoice_number"`
	ClientID      string        `db:"client_id" json:"client_id"`
	ClientName    string        `db:"client_name" json:"client_name"`
	ClientEmail   string        `db:"client_email" json:"client_email"`
	IssueDate     string        `db:"issue_date" json:"issue_date"`
	DueDate       string        `db:"due_date" json:"due_date"`
	Amount        float64       `db:"amount" json:"amount"`
	Status        InvoiceStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`

	// Provenance travels with an invoice on its way to a gateway and is never stored.
	Provenance *Provenance `db:"-" json:"-"`
}

// Provenance holds the extracted fields that are not part of the canonical invoice.
type Provenance struct {
	ExtractionID   string
	CompanyName    string
	CompanyAddress string
	ClientAddress  string
	Description    string
	Quantity       float64
	UnitPrice      float64
	Taxes          float64
	Total          float64
}

// Client is a billed party. InvoiceCount, TotalValue and LastInvoiceDate are
// derived from the invoices that reference the client.
type Client struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Address         string     `json:"address,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	InvoiceCount    int        `json:"invoice_count"`
	TotalValue      float64    `json:"total_value"`
	LastInvoiceDate string     `json:"last_invoice_date,omitempty"`
}

// Summary is the headline aggregate over all invoices.
type Summary struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalInvoices int     `json:"total_invoices"`
	TotalClients  int     `json:"total_clients"`
}

// DailyRevenue is one point of the revenue series.
type DailyRevenue struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// ClientValue ranks a client by billed value.
type ClientValue struct {
	Name       string  `json:"name"`
	TotalValue float64 `json:"totalValue"`
}

// StatsSnapshot is the dashboard view of the invoice set.
type StatsSnapshot struct {
	TotalRevenue      float64        `json:"total_revenue"`
	ProcessedInvoices int            `json:"processed_invoices"`
	ActiveClients     int            `json:"active_clients"`
	ProcessingRate    float64        `json:"processing_rate"`
	RevenuePerDay     []DailyRevenue `json:"revenue_per_day"`
	TopClients        []ClientValue  `json:"top_clients"`
}

// EncodedPayload is a document ready to be sent to the extraction capability.
type EncodedPayload struct {
	Name      string
	FileType  FileType
	Kind      FileKind
	MediaType string
	Data      []byte
	DataURI   string
}

// InvoiceFilter narrows an invoice listing.
type InvoiceFilter struct {
	Status InvoiceStatus
	Query  string
}
