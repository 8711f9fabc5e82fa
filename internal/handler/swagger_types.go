package handler

import "invoicedesk/internal/domain"

// Swagger type definitions for API documentation.

// --- Request Types ---

// EditFieldRequest sets one draft field.
type EditFieldRequest struct {
	Field string `json:"field" binding:"required" example:"amount"`
	Value string `json:"value" example:"1250.00"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"invoice store not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"draft discarded"`
}

// DocumentURLResponse holds a presigned link to the archived upload.
type DocumentURLResponse struct {
	URL       string `json:"url" example:"https://invoicedesk-uploads.s3.amazonaws.com/uploads/2024/03/01/....pdf?X-Amz-Signature=..."`
	ExpiresIn int    `json:"expires_in" example:"900"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

// ValidationErrorBody is an error response carrying field-level reasons.
type ValidationErrorBody struct {
	Success bool `json:"success" example:"false"`
	Error   struct {
		Code    string               `json:"code" example:"VALIDATION_FAILED"`
		Message string               `json:"message" example:"invoice failed validation"`
		Details []domain.FieldReason `json:"details"`
	} `json:"error"`
}
