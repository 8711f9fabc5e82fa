package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Details []domain.FieldReason `json:"details,omitempty"`
}

// Meta holds listing metadata.
type Meta struct {
	Total int `json:"total"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondList sends a 200 success response with the item count.
func RespondList(c *gin.Context, data interface{}, total int) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &Meta{Total: total}})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNoDraft):
		return http.StatusNotFound, "NO_DRAFT", "no invoice draft is loaded"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT", "unsupported file type; allowed: pdf, jpg, png"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusBadGateway, "EXTRACTION_FAILED", "invoice extraction failed"
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE", "invoice backend is unreachable; the change may or may not have been applied"
	case errors.Is(err, domain.ErrMissingIdentifier):
		return http.StatusUnprocessableEntity, "MISSING_IDENTIFIER", "the draft has no invoice id to update"
	case errors.Is(err, domain.ErrValidationFailed):
		return http.StatusUnprocessableEntity, "VALIDATION_FAILED", "invoice failed validation"
	case errors.Is(err, domain.ErrUnknownField):
		return http.StatusBadRequest, "UNKNOWN_FIELD", "unknown draft field"
	case errors.Is(err, domain.ErrCommitInProgress):
		return http.StatusConflict, "COMMIT_IN_PROGRESS", "a commit is already in progress"
	case errors.Is(err, domain.ErrStaleResponse):
		return http.StatusConflict, "STALE_RESPONSE", "the upload was cancelled or superseded"
	case errors.Is(err, domain.ErrDuplicateClientName):
		return http.StatusConflict, "DUPLICATE_CLIENT", "a client with this name already exists"
	case errors.Is(err, domain.ErrUnsupportedExport):
		return http.StatusBadRequest, "UNSUPPORTED_EXPORT", "unsupported export format; allowed: csv, xlsx"
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, "INVALID_ID", "invalid invoice id"
	case errors.Is(err, domain.ErrPersistenceFailed):
		return http.StatusBadGateway, "PERSISTENCE_FAILED", "saving the invoice failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Validation failures carry their field reasons; extraction failures carry the
// upstream diagnostic.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		l := logger.WithRequestID(c.GetString(middleware.RequestIDKey))
		l.Error().Err(err).Str("code", code).Msg("request failed")
	}
	_ = c.Error(err)

	apiErr := &APIError{Code: code, Message: msg}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		apiErr.Details = verr.Reasons
	}
	var xerr *domain.ExtractionError
	if errors.As(err, &xerr) && xerr.Diagnostic != "" {
		apiErr.Message = msg + ": " + xerr.Diagnostic
	}
	c.JSON(status, APIResponse{Success: false, Error: apiErr})
}

// intQuery reads a non-negative integer query parameter. Missing or malformed
// values yield 0 so the service default applies.
func intQuery(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
