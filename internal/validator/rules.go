package validator

import (
	"math"
	"strings"
	"time"

	"invoicedesk/internal/domain"
)

// ruleValidator adapts a check function to the Validator interface.
type ruleValidator struct {
	ruleKey  string
	ruleName string
	validate func(*domain.Invoice) []domain.FieldReason
}

func (v *ruleValidator) RuleKey() string  { return v.ruleKey }
func (v *ruleValidator) RuleName() string { return v.ruleName }

func (v *ruleValidator) Validate(inv *domain.Invoice) []domain.FieldReason {
	return v.validate(inv)
}

func builtinRules() []Validator {
	return []Validator{
		&ruleValidator{
			ruleKey:  "amount.non_negative",
			ruleName: "Amount is a non-negative number",
			validate: func(inv *domain.Invoice) []domain.FieldReason {
				if math.IsNaN(inv.Amount) || math.IsInf(inv.Amount, 0) {
					return fail(domain.FieldAmount, "must be a finite number")
				}
				if inv.Amount < 0 {
					return fail(domain.FieldAmount, "must not be negative")
				}
				return nil
			},
		},
		&ruleValidator{
			ruleKey:  "client.name_required",
			ruleName: "Client name is present",
			validate: func(inv *domain.Invoice) []domain.FieldReason {
				if strings.TrimSpace(inv.ClientName) == "" {
					return fail(domain.FieldClientName, "is required")
				}
				return nil
			},
		},
		&ruleValidator{
			ruleKey:  "date.format",
			ruleName: "Dates use YYYY-MM-DD",
			validate: func(inv *domain.Invoice) []domain.FieldReason {
				var reasons []domain.FieldReason
				if _, ok := parseDate(inv.IssueDate); !ok && inv.IssueDate != "" {
					reasons = append(reasons, fail(domain.FieldIssueDate, "must be a date in YYYY-MM-DD form")...)
				}
				if _, ok := parseDate(inv.DueDate); !ok && inv.DueDate != "" {
					reasons = append(reasons, fail(domain.FieldDueDate, "must be a date in YYYY-MM-DD form")...)
				}
				return reasons
			},
		},
		&ruleValidator{
			ruleKey:  "date.due_after_issue",
			ruleName: "Due date is not before issue date",
			validate: func(inv *domain.Invoice) []domain.FieldReason {
				issued, ok1 := parseDate(inv.IssueDate)
				due, ok2 := parseDate(inv.DueDate)
				if ok1 && ok2 && due.Before(issued) {
					return fail(domain.FieldDueDate, "must not be before the issue date")
				}
				return nil
			},
		},
		&ruleValidator{
			ruleKey:  "status.enum",
			ruleName: "Status is paid, pending or overdue",
			validate: func(inv *domain.Invoice) []domain.FieldReason {
				if !inv.Status.Valid() {
					return fail(domain.FieldStatus, "must be one of paid, pending, overdue")
				}
				return nil
			},
		},
	}
}

func fail(field, reason string) []domain.FieldReason {
	return []domain.FieldReason{{Field: field, Reason: reason}}
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(domain.DateLayout, s)
	return t, err == nil
}
