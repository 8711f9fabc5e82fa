// Package backend is the HTTP transport shared by every component that talks to
// the invoice backend: extraction, remote persistence, and remote statistics.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"invoicedesk/internal/config"
	"invoicedesk/internal/domain"
)

// maxDiagnostic bounds how much of an error body is kept for diagnostics.
const maxDiagnostic = 512

// Client issues JSON requests against the backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client from config.
func NewClient(cfg *config.BackendConfig) *Client {
	return NewClientWithHTTP(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout()})
}

// NewClientWithHTTP creates a client pointing at a custom endpoint (for testing).
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: baseURL, http: hc}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Do sends in as the JSON body (when non-nil) and decodes a 2xx response into out
// (when non-nil). Pass a *json.RawMessage to keep the body undecoded.
//
// Errors: transport failures wrap domain.ErrNetworkUnavailable, timeouts are
// *TimeoutError, non-2xx responses are *StatusError and undecodable bodies wrap
// ErrMalformedResponse.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return &TimeoutError{Method: method, Path: path, Err: err}
		}
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		return fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrNetworkUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return &TimeoutError{Method: method, Path: path, Err: err}
		}
		return fmt.Errorf("%s %s: reading response: %w: %w", method, path, domain.ErrNetworkUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(respBody), maxDiagnostic),
		}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], respBody...)
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v (raw: %s)", method, path, ErrMalformedResponse, err, truncate(string(respBody), maxDiagnostic))
	}
	return nil
}

// PathEscape escapes an id for use as a path segment.
func PathEscape(id string) string {
	return url.PathEscape(id)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
