// Package normalizer maps raw extraction fields onto an invoice draft.
package normalizer

import "invoicedesk/internal/domain"

type valueKind int

const (
	kindString valueKind = iota
	kindNumber
)

// Mapping binds one raw extraction key to one draft field.
type Mapping struct {
	Key   domain.RawKey
	Field string
	kind  valueKind
}

// mappings is the single source of truth for raw-key to draft-field translation.
var mappings = []Mapping{
	{Key: domain.RawInvoiceID, Field: domain.FieldExtractionID, kind: kindString},
	{Key: domain.RawInvoiceNumber, Field: domain.FieldInvoiceNumber, kind: kindString},
	{Key: domain.RawCompanyName, Field: domain.FieldCompanyName, kind: kindString},
	{Key: domain.RawCompanyAddress, Field: domain.FieldCompanyAddress, kind: kindString},
	{Key: domain.RawCustomerName, Field: domain.FieldClientName, kind: kindString},
	{Key: domain.RawCustomerAddress, Field: domain.FieldClientAddress, kind: kindString},
	{Key: domain.RawDescription, Field: domain.FieldDescription, kind: kindString},
	{Key: domain.RawQuantity, Field: domain.FieldQuantity, kind: kindNumber},
	{Key: domain.RawUnitPrice, Field: domain.FieldUnitPrice, kind: kindNumber},
	{Key: domain.RawTaxes, Field: domain.FieldTaxes, kind: kindNumber},
	{Key: domain.RawAmount, Field: domain.FieldAmount, kind: kindNumber},
	{Key: domain.RawTotal, Field: domain.FieldTotal, kind: kindNumber},
	{Key: domain.RawInvoiceDate, Field: domain.FieldIssueDate, kind: kindString},
	{Key: domain.RawDueDate, Field: domain.FieldDueDate, kind: kindString},
}

// Mappings returns a copy of the mapping table.
func Mappings() []Mapping {
	out := make([]Mapping, len(mappings))
	copy(out, mappings)
	return out
}

// Normalize builds a draft from raw fields. It never fails: absent keys keep their
// defaults, unparseable numbers become 0, and unknown keys are ignored.
func Normalize(raw *domain.RawFieldMap) *domain.InvoiceDraft {
	d := domain.NewInvoiceDraft()
	for _, m := range mappings {
		v, ok := raw.Get(m.Key)
		if !ok {
			continue
		}
		switch m.kind {
		case kindNumber:
			setNumber(d, m.Field, v.NumberValue())
		default:
			setString(d, m.Field, v.StringValue())
		}
	}
	return d
}

func setString(d *domain.InvoiceDraft, field, value string) {
	switch field {
	case domain.FieldExtractionID:
		d.ExtractionID = value
	case domain.FieldInvoiceNumber:
		d.InvoiceNumber = value
	case domain.FieldCompanyName:
		d.CompanyName = value
	case domain.FieldCompanyAddress:
		d.CompanyAddress = value
	case domain.FieldClientName:
		d.ClientName = value
	case domain.FieldClientAddress:
		d.ClientAddress = value
	case domain.FieldDescription:
		d.Description = value
	case domain.FieldIssueDate:
		d.IssueDate = value
	case domain.FieldDueDate:
		d.DueDate = value
	}
}

func setNumber(d *domain.InvoiceDraft, field string, value float64) {
	switch field {
	case domain.FieldQuantity:
		d.Quantity = value
	case domain.FieldUnitPrice:
		d.UnitPrice = value
	case domain.FieldTaxes:
		d.Taxes = value
	case domain.FieldAmount:
		d.Amount = value
	case domain.FieldTotal:
		d.Total = value
	}
}
