package backend

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"invoicedesk/internal/domain"
)

// InvoiceRecord is an invoice as the backend serializes it. The backend has used
// both snake_case and camelCase names over time, and numeric ids; decoding accepts all.
type InvoiceRecord struct {
	ID            string
	InvoiceNumber string
	ClientID      string
	ClientName    string
	ClientEmail   string
	IssueDate     string
	DueDate       string
	Amount        float64
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *InvoiceRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	r.ID = pickString(fields, "id", "invoice_id", "invoiceId")
	r.InvoiceNumber = pickString(fields, "invoice_number", "invoiceNumber")
	r.ClientID = pickString(fields, "client_id", "clientId")
	r.ClientName = pickString(fields, "client_name", "clientName", "customer_name", "company_name")
	r.ClientEmail = pickString(fields, "client_email", "clientEmail")
	r.IssueDate = dateOnly(pickString(fields, "invoice_date", "issue_date", "date"))
	r.DueDate = dateOnly(pickString(fields, "due_date", "dueDate"))
	r.Amount = pickNumber(fields, "total_amount", "amount", "total")
	r.Status = pickString(fields, "status")
	r.CreatedAt = pickTime(fields, "created_at", "createdAt")
	r.UpdatedAt = pickTime(fields, "updated_at", "updatedAt")
	return nil
}

// ToDomain converts the record to a domain invoice. Unknown statuses become pending.
func (r *InvoiceRecord) ToDomain() domain.Invoice {
	status, ok := domain.ParseInvoiceStatus(r.Status)
	if !ok {
		status = domain.InvoiceStatusPending
	}
	return domain.Invoice{
		ID:            r.ID,
		InvoiceNumber: r.InvoiceNumber,
		ClientID:      r.ClientID,
		ClientName:    r.ClientName,
		ClientEmail:   r.ClientEmail,
		IssueDate:     r.IssueDate,
		DueDate:       r.DueDate,
		Amount:        r.Amount,
		Status:        status,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ClientRecord is a client as the backend serializes it.
type ClientRecord struct {
	ID        string
	Name      string
	Email     string
	Address   string
	CreatedAt time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ClientRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	r.ID = pickString(fields, "id", "client_id")
	r.Name = pickString(fields, "name", "client_name")
	r.Email = pickString(fields, "email")
	r.Address = pickString(fields, "address")
	r.CreatedAt = pickTime(fields, "created_at", "createdAt")
	return nil
}

// ToDomain converts the record to a domain client. Rollups are left for the repository.
func (r *ClientRecord) ToDomain() domain.Client {
	c := domain.Client{ID: r.ID, Name: r.Name, Email: r.Email, Address: r.Address}
	if !r.CreatedAt.IsZero() {
		created := r.CreatedAt
		c.CreatedAt = &created
	}
	return c
}

// InvoiceBody is the request body for invoice writes.
type InvoiceBody struct {
	InvoiceNumber  string  `json:"invoiceNumber"`
	CompanyName    string  `json:"companyName"`
	CompanyAddress string  `json:"companyAddress"`
	ClientName     string  `json:"clientName"`
	ClientAddress  string  `json:"clientAddress"`
	ClientEmail    string  `json:"clientEmail"`
	Date           string  `json:"date"`
	DueDate        string  `json:"dueDate"`
	Taxes          float64 `json:"taxes"`
	Total          float64 `json:"total"`
	Description    string  `json:"description"`
	Quantity       float64 `json:"quantity"`
	UnitPrice      float64 `json:"unitPrice"`
	Amount         float64 `json:"amount"`
	Status         string  `json:"status"`
}

// NewInvoiceBody builds the write body from an invoice and its extraction details.
func NewInvoiceBody(inv *domain.Invoice) InvoiceBody {
	b := InvoiceBody{
		InvoiceNumber: inv.InvoiceNumber,
		ClientName:    inv.ClientName,
		ClientEmail:   inv.ClientEmail,
		Date:          inv.IssueDate,
		DueDate:       inv.DueDate,
		Amount:        inv.Amount,
		Total:         inv.Amount,
		Status:        string(inv.Status),
	}
	if p := inv.Provenance; p != nil {
		b.CompanyName = p.CompanyName
		b.CompanyAddress = p.CompanyAddress
		b.ClientAddress = p.ClientAddress
		b.Description = p.Description
		b.Quantity = p.Quantity
		b.UnitPrice = p.UnitPrice
		b.Taxes = p.Taxes
		b.Total = p.Total
	}
	return b
}

func pickString(fields map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok || string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

func pickNumber(fields map[string]json.RawMessage, keys ...string) float64 {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok || string(raw) == "null" {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return f
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if n, ok := domain.ParseAmount(s); ok {
				return n
			}
		}
	}
	return 0
}

func pickTime(fields map[string]json.RawMessage, keys ...string) time.Time {
	s := pickString(fields, keys...)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", domain.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC()
	}
	return time.Time{}
}

// dateOnly trims a timestamp down to its calendar date.
func dateOnly(s string) string {
	if len(s) > len(domain.DateLayout) && (s[10] == 'T' || s[10] == ' ') {
		return s[:10]
	}
	return strings.TrimSpace(s)
}
