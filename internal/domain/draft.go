package domain

import (
	"fmt"
	"sort"
)

// Editable draft fields.
const (
	FieldExtractionID   = "invoice_id"
	FieldInvoiceNumber  = "invoice_number"
	FieldCompanyName    = "company_name"
	FieldCompanyAddress = "company_address"
	FieldClientName     = "client_name"
	FieldClientAddress  = "client_address"
	FieldClientEmail    = "client_email"
	FieldDescription    = "description"
	FieldQuantity       = "quantity"
	FieldUnitPrice      = "unit_price"
	FieldTaxes          = "taxes"
	FieldAmount         = "amount"
	FieldTotal          = "total"
	FieldIssueDate      = "issue_date"
	FieldDueDate        = "due_date"
	FieldStatus         = "status"
)

// Form names accepted as aliases for the editable fields.
var fieldAliases = map[string]string{
	"invoiceId":      FieldExtractionID,
	"invoiceNumber":  FieldInvoiceNumber,
	"companyName":    FieldCompanyName,
	"companyAddress": FieldCompanyAddress,
	"clientName":     FieldClientName,
	"clientAddress":  FieldClientAddress,
	"clientEmail":    FieldClientEmail,
	"unitPrice":      FieldUnitPrice,
	"date":           FieldIssueDate,
	"dueDate":        FieldDueDate,
}

// InvoiceDraft is an extracted invoice under review. Numeric input that did not
// parse is kept verbatim in Invalid until it is corrected or rejected at commit.
type InvoiceDraft struct {
	ExtractionID   string            `json:"invoice_id"`
	InvoiceNumber  string            `json:"invoice_number"`
	CompanyName    string            `json:"company_name"`
	CompanyAddress string            `json:"company_address"`
	ClientName     string            `json:"client_name"`
	ClientAddress  string            `json:"client_address"`
	ClientEmail    string            `json:"client_email"`
	Description    string            `json:"description"`
	Quantity       float64           `json:"quantity"`
	UnitPrice      float64           `json:"unit_price"`
	Taxes          float64           `json:"taxes"`
	Amount         float64           `json:"amount"`
	Total          float64           `json:"total"`
	IssueDate      string            `json:"issue_date"`
	DueDate        string            `json:"due_date"`
	Status         InvoiceStatus     `json:"status"`
	FileKind       FileKind          `json:"file_kind,omitempty"`
	SourceName     string            `json:"source_name,omitempty"`
	ArchiveKey     string            `json:"archive_key,omitempty"`
	Invalid        map[string]string `json:"invalid,omitempty"`
}

// NewInvoiceDraft returns a draft holding the default value of every field.
func NewInvoiceDraft() *InvoiceDraft {
	return &InvoiceDraft{Status: InvoiceStatusPending}
}

// CanonicalField resolves a field name or alias to its canonical name.
func CanonicalField(name string) (string, bool) {
	if alias, ok := fieldAliases[name]; ok {
		return alias, true
	}
	switch name {
	case FieldExtractionID, FieldInvoiceNumber, FieldCompanyName, FieldCompanyAddress,
		FieldClientName, FieldClientAddress, FieldClientEmail, FieldDescription,
		FieldQuantity, FieldUnitPrice, FieldTaxes, FieldAmount, FieldTotal,
		FieldIssueDate, FieldDueDate, FieldStatus:
		return name, true
	}
	return "", false
}

// Set assigns a user-entered value to a field.
func (d *InvoiceDraft) Set(name, value string) error {
	field, ok := CanonicalField(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	if num := d.numericField(field); num != nil {
		n, ok := ParseAmount(value)
		if !ok {
			if d.Invalid == nil {
				d.Invalid = map[string]string{}
			}
			d.Invalid[field] = value
			return nil
		}
		*num = n
		delete(d.Invalid, field)
		return nil
	}

	switch field {
	case FieldExtractionID:
		d.ExtractionID = value
	case FieldInvoiceNumber:
		d.InvoiceNumber = value
	case FieldCompanyName:
		d.CompanyName = value
	case FieldCompanyAddress:
		d.CompanyAddress = value
	case FieldClientName:
		d.ClientName = value
	case FieldClientAddress:
		d.ClientAddress = value
	case FieldClientEmail:
		d.ClientEmail = value
	case FieldDescription:
		d.Description = value
	case FieldIssueDate:
		d.IssueDate = value
	case FieldDueDate:
		d.DueDate = value
	case FieldStatus:
		if st, ok := ParseInvoiceStatus(value); ok {
			d.Status = st
		} else {
			d.Status = InvoiceStatus(value)
		}
	}
	return nil
}

func (d *InvoiceDraft) numericField(field string) *float64 {
	switch field {
	case FieldQuantity:
		return &d.Quantity
	case FieldUnitPrice:
		return &d.UnitPrice
	case FieldTaxes:
		return &d.Taxes
	case FieldAmount:
		return &d.Amount
	case FieldTotal:
		return &d.Total
	}
	return nil
}

// InvalidFields returns the names of fields holding unparsed input, sorted.
func (d *InvoiceDraft) InvalidFields() []string {
	fields := make([]string, 0, len(d.Invalid))
	for f := range d.Invalid {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Clone returns a deep copy of d.
func (d *InvoiceDraft) Clone() *InvoiceDraft {
	if d == nil {
		return nil
	}
	c := *d
	if d.Invalid != nil {
		c.Invalid = make(map[string]string, len(d.Invalid))
		for k, v := range d.Invalid {
			c.Invalid[k] = v
		}
	}
	return &c
}

// ToInvoice converts the draft to the canonical invoice shape. The ID is left for
// the commit policy to decide; extracted details ride along as Provenance.
func (d *InvoiceDraft) ToInvoice() *Invoice {
	return &Invoice{
		InvoiceNumber: d.InvoiceNumber,
		ClientName:    d.ClientName,
		ClientEmail:   d.ClientEmail,
		IssueDate:     d.IssueDate,
		DueDate:       d.DueDate,
		Amount:        d.Amount,
		Status:        d.Status,
		Provenance: &Provenance{
			ExtractionID:   d.ExtractionID,
			CompanyName:    d.CompanyName,
			CompanyAddress: d.CompanyAddress,
			ClientAddress:  d.ClientAddress,
			Description:    d.Description,
			Quantity:       d.Quantity,
			UnitPrice:      d.UnitPrice,
			Taxes:          d.Taxes,
			Total:          d.Total,
		},
	}
}
