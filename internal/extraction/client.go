// Package extraction calls the backend OCR capability and decodes its answer.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"invoicedesk/internal/backend"
	"invoicedesk/internal/domain"
	"invoicedesk/internal/logger"
)

const ocrPath = "/ocr"

type ocrRequest struct {
	Image string `json:"image"`
}

// Client implements port.Extractor against POST /ocr. It holds no per-call state
// and is safe for concurrent use.
type Client struct {
	backend *backend.Client
	schema  *jsonschema.Schema
	log     zerolog.Logger
}

// NewClient creates an extraction client on top of the backend transport.
func NewClient(b *backend.Client) (*Client, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("extraction.NewClient: %w", err)
	}
	return &Client{backend: b, schema: schema, log: logger.WithComponent("extraction")}, nil
}

// Extract sends the document once. It never retries.
func (c *Client) Extract(ctx context.Context, payload *domain.EncodedPayload) (*domain.RawFieldMap, error) {
	c.log.Debug().Str("file", payload.Name).Str("media_type", payload.MediaType).Int("bytes", len(payload.Data)).Msg("extracting")

	var body json.RawMessage
	err := c.backend.Do(ctx, http.MethodPost, ocrPath, ocrRequest{Image: payload.DataURI}, &body)
	if err != nil {
		return nil, c.classify(err)
	}

	if err := validateBody(c.schema, body); err != nil {
		c.log.Warn().Err(err).Str("file", payload.Name).Msg("malformed extraction response")
		return nil, &domain.ExtractionError{Diagnostic: "malformed response", Err: err}
	}
	fields, err := DecodeRawFields(body)
	if err != nil {
		return nil, &domain.ExtractionError{Diagnostic: "malformed response", Err: err}
	}

	c.log.Info().Str("file", payload.Name).Int("known_fields", len(fields.Known)).Int("extra_fields", len(fields.Extra)).Msg("extraction complete")
	return fields, nil
}

func (c *Client) classify(err error) error {
	var statusErr *backend.StatusError
	var timeoutErr *backend.TimeoutError
	switch {
	case errors.As(err, &statusErr):
		c.log.Warn().Int("status", statusErr.StatusCode).Msg("extraction rejected by backend")
		return &domain.ExtractionError{StatusCode: statusErr.StatusCode, Diagnostic: statusErr.Body}
	case errors.As(err, &timeoutErr):
		c.log.Warn().Err(err).Msg("extraction timed out")
		return &domain.ExtractionError{Diagnostic: "timed out", Err: err}
	case errors.Is(err, domain.ErrNetworkUnavailable):
		c.log.Error().Err(err).Msg("extraction backend unreachable")
		return fmt.Errorf("extraction.Extract: %w", err)
	}
	return &domain.ExtractionError{Err: err}
}
