// Package validator holds the commit-time invoice rules.
package validator

import "invoicedesk/internal/domain"

// Validator is a single built-in validation rule.
type Validator interface {
	Validate(inv *domain.Invoice) []domain.FieldReason
	RuleKey() string
	RuleName() string
}

// Check runs every rule in the registry and folds the failures, plus any
// unparsed numeric input, into a *domain.ValidationError.
func Check(reg *Registry, inv *domain.Invoice, invalid map[string]string) error {
	var reasons []domain.FieldReason
	for _, field := range sortedKeys(invalid) {
		reasons = append(reasons, domain.FieldReason{
			Field:  field,
			Reason: "not a number: " + invalid[field],
		})
	}
	for _, v := range reg.All() {
		reasons = append(reasons, v.Validate(inv)...)
	}
	if len(reasons) == 0 {
		return nil
	}
	return &domain.ValidationError{Reasons: reasons}
}
