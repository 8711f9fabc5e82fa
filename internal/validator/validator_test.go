package validator_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/validator"
)

func validInvoice() *domain.Invoice {
	return &domain.Invoice{
		InvoiceNumber: "INV-1",
		ClientName:    "Acme Corporation",
		IssueDate:     "2024-03-01",
		DueDate:       "2024-03-31",
		Amount:        120,
		Status:        domain.InvoiceStatusPending,
	}
}

func reasonsOf(t *testing.T, err error) []domain.FieldReason {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)
	return ve.Reasons
}

func TestCheck_Valid(t *testing.T) {
	assert.NoError(t, validator.Check(validator.DefaultRegistry(), validInvoice(), nil))
}

func TestCheck_EmptyDatesAllowed(t *testing.T) {
	inv := validInvoice()
	inv.IssueDate, inv.DueDate = "", ""
	assert.NoError(t, validator.Check(validator.DefaultRegistry(), inv, nil))
}

func TestCheck_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Invoice)
		field  string
	}{
		{"negative amount", func(i *domain.Invoice) { i.Amount = -1 }, domain.FieldAmount},
		{"nan amount", func(i *domain.Invoice) { i.Amount = math.NaN() }, domain.FieldAmount},
		{"missing client", func(i *domain.Invoice) { i.ClientName = "  " }, domain.FieldClientName},
		{"bad issue date", func(i *domain.Invoice) { i.IssueDate = "03/01/2024" }, domain.FieldIssueDate},
		{"due before issue", func(i *domain.Invoice) { i.DueDate = "2024-02-01" }, domain.FieldDueDate},
		{"unknown status", func(i *domain.Invoice) { i.Status = "archived" }, domain.FieldStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			tt.mutate(inv)

			err := validator.Check(validator.DefaultRegistry(), inv, nil)

			assert.True(t, errors.Is(err, domain.ErrValidationFailed))
			reasons := reasonsOf(t, err)
			require.Len(t, reasons, 1)
			assert.Equal(t, tt.field, reasons[0].Field)
		})
	}
}

func TestCheck_InvalidInputReportedFirst(t *testing.T) {
	inv := validInvoice()
	inv.ClientName = ""

	err := validator.Check(validator.DefaultRegistry(), inv, map[string]string{domain.FieldAmount: "twelve"})

	reasons := reasonsOf(t, err)
	require.Len(t, reasons, 2)
	assert.Equal(t, domain.FieldAmount, reasons[0].Field)
	assert.Contains(t, reasons[0].Reason, "twelve")
	assert.Equal(t, domain.FieldClientName, reasons[1].Field)
}

func TestRegistry(t *testing.T) {
	reg := validator.DefaultRegistry()

	require.NotNil(t, reg.Get("status.enum"))
	assert.Nil(t, reg.Get("nope"))

	keys := make([]string, 0)
	for _, v := range reg.All() {
		keys = append(keys, v.RuleKey())
		assert.NotEmpty(t, v.RuleName())
	}
	assert.Equal(t, []string{
		"amount.non_negative", "client.name_required", "date.due_after_issue", "date.format", "status.enum",
	}, keys)
}
