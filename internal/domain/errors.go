package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFormat   = errors.New("unsupported file format: allowed types are pdf, jpg, png")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrNetworkUnavailable  = errors.New("backend unreachable")
	ErrExtractionFailed    = errors.New("invoice extraction failed")
	ErrMissingIdentifier   = errors.New("draft has no invoice identifier")
	ErrValidationFailed    = errors.New("invoice validation failed")
	ErrPersistenceFailed   = errors.New("saving invoice failed")
	ErrNoDraft             = errors.New("no draft loaded")
	ErrUnknownField        = errors.New("unknown draft field")
	ErrCommitInProgress    = errors.New("a commit is already in progress")
	ErrStaleResponse       = errors.New("extraction result superseded")
	ErrInvalidID           = errors.New("invoice id must not be empty")
	ErrDuplicateClientName = errors.New("client name already in use")
	ErrUnsupportedExport   = errors.New("unsupported export format")
	ErrArchiveUploadFailed = errors.New("archiving upload failed")
)

// ExtractionError describes a failed call to the extraction capability.
type ExtractionError struct {
	StatusCode int
	Diagnostic string
	Err        error
}

func (e *ExtractionError) Error() string {
	var b strings.Builder
	b.WriteString(ErrExtractionFailed.Error())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Diagnostic != "" {
		b.WriteString(": ")
		b.WriteString(e.Diagnostic)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ExtractionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExtractionFailed}
	}
	return []error{ErrExtractionFailed, e.Err}
}

// FieldReason is a single field-level validation failure.
type FieldReason struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every reason a draft or invoice was rejected.
type ValidationError struct {
	Reasons []FieldReason `json:"reasons"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		parts = append(parts, r.Field+": "+r.Reason)
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
