package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/domain"
)

func TestInvoiceDraft_Set_StringFields(t *testing.T) {
	d := domain.NewInvoiceDraft()

	require.NoError(t, d.Set("clientName", "Globex Inc"))
	require.NoError(t, d.Set(domain.FieldInvoiceNumber, "INV-1001"))
	require.NoError(t, d.Set("date", "2024-03-01"))
	require.NoError(t, d.Set(domain.FieldClientName, "Initech"))

	assert.Equal(t, "Initech", d.ClientName)
	assert.Equal(t, "INV-1001", d.InvoiceNumber)
	assert.Equal(t, "2024-03-01", d.IssueDate)
}

func TestInvoiceDraft_Set_NumericKeepsInvalidInput(t *testing.T) {
	d := domain.NewInvoiceDraft()
	d.Amount = 10

	require.NoError(t, d.Set(domain.FieldAmount, "twelve"))
	assert.Equal(t, 10.0, d.Amount)
	assert.Equal(t, "twelve", d.Invalid[domain.FieldAmount])
	assert.Equal(t, []string{domain.FieldAmount}, d.InvalidFields())

	require.NoError(t, d.Set(domain.FieldAmount, " 12.5 "))
	assert.Equal(t, 12.5, d.Amount)
	assert.Empty(t, d.Invalid)
}

func TestInvoiceDraft_Set_NumericUsesAmountRules(t *testing.T) {
	d := domain.NewInvoiceDraft()

	require.NoError(t, d.Set(domain.FieldAmount, "$1,200"))
	assert.Equal(t, 1200.0, d.Amount)

	for _, v := range []string{"NaN", "Inf", "-Inf", "1e999"} {
		require.NoError(t, d.Set(domain.FieldTaxes, v))
		assert.Equal(t, 0.0, d.Taxes, v)
		assert.Equal(t, v, d.Invalid[domain.FieldTaxes], v)
	}
	assert.Equal(t, []string{domain.FieldTaxes}, d.InvalidFields())
}

func TestInvoiceDraft_Set_Status(t *testing.T) {
	d := domain.NewInvoiceDraft()

	require.NoError(t, d.Set(domain.FieldStatus, " PAID "))
	assert.Equal(t, domain.InvoiceStatusPaid, d.Status)

	require.NoError(t, d.Set(domain.FieldStatus, "archived"))
	assert.Equal(t, domain.InvoiceStatus("archived"), d.Status)
}

func TestInvoiceDraft_Set_UnknownField(t *testing.T) {
	err := domain.NewInvoiceDraft().Set("colour", "red")
	assert.True(t, errors.Is(err, domain.ErrUnknownField))
}

func TestInvoiceDraft_CloneIsDeep(t *testing.T) {
	d := domain.NewInvoiceDraft()
	require.NoError(t, d.Set(domain.FieldTaxes, "n/a"))

	c := d.Clone()
	c.Invalid[domain.FieldTaxes] = "changed"
	c.ClientName = "Other"

	assert.Equal(t, "n/a", d.Invalid[domain.FieldTaxes])
	assert.Empty(t, d.ClientName)
}

func TestInvoiceDraft_ToInvoice(t *testing.T) {
	d := &domain.InvoiceDraft{
		ExtractionID:  "42",
		InvoiceNumber: "INV-7",
		ClientName:    "Acme Corporation",
		IssueDate:     "2024-01-02",
		DueDate:       "2024-02-01",
		Amount:        99.5,
		Taxes:         4.5,
		Status:        domain.InvoiceStatusPending,
	}

	inv := d.ToInvoice()
	assert.Empty(t, inv.ID)
	assert.Equal(t, "INV-7", inv.InvoiceNumber)
	assert.Equal(t, "Acme Corporation", inv.ClientName)
	assert.Equal(t, 99.5, inv.Amount)
	require.NotNil(t, inv.Provenance)
	assert.Equal(t, "42", inv.Provenance.ExtractionID)
	assert.Equal(t, 4.5, inv.Provenance.Taxes)
}

func TestParseAmount(t *testing.T) {
	cases := map[string]struct {
		in   string
		want float64
		ok   bool
	}{
		"plain":      {"12.5", 12.5, true},
		"currency":   {"$1,234.50", 1234.5, true},
		"whitespace": {"  ₹ 99 ", 99, true},
		"empty":      {"", 0, false},
		"garbage":    {"abc", 0, false},
		"grouped":    {"1,200", 1200, true},
		"millions":   {"1,234,567", 1234567, true},
		"dec comma":  {"12,50", 12.5, true},
		"short dec":  {"€ 7,5", 7.5, true},
		"eu grouped": {"1.234,56", 1234.56, true},
		"eu million": {"1.234.567,89", 1234567.89, true},
		"bad group":  {"12,3456", 0, false},
		"two commas": {"1,2,3", 0, false},
		"nan":        {"NaN", 0, false},
		"inf":        {"Inf", 0, false},
		"-infinity":  {"-infinity", 0, false},
		"overflow":   {"1e999", 0, false},
		"hex":        {"0x1p4", 0, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := domain.ParseAmount(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractionError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &domain.ExtractionError{StatusCode: 500, Diagnostic: "ocr failed", Err: cause}

	assert.True(t, errors.Is(err, domain.ErrExtractionFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "status 500")
}

func TestValidationError(t *testing.T) {
	err := &domain.ValidationError{Reasons: []domain.FieldReason{{Field: "amount", Reason: "must not be negative"}}}

	assert.True(t, errors.Is(err, domain.ErrValidationFailed))
	assert.Contains(t, err.Error(), "amount: must not be negative")
}
