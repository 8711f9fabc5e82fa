package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/backend"
	"invoicedesk/internal/domain"
)

func TestDo_PostsJSONAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	}))
	defer server.Close()

	c := backend.NewClientWithHTTP(server.URL, server.Client())
	var out map[string]string
	err := c.Do(context.Background(), http.MethodPost, "/echo", map[string]string{"image": "data:x"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "data:x", out["image"])
}

func TestDo_RawMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"a":1}`))
	}))
	defer server.Close()

	var raw json.RawMessage
	err := backend.NewClientWithHTTP(server.URL, server.Client()).Do(context.Background(), http.MethodGet, "/", nil, &raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(raw))
}

func TestDo_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"no such invoice"}`))
	}))
	defer server.Close()

	err := backend.NewClientWithHTTP(server.URL, server.Client()).Do(context.Background(), http.MethodGet, "/invoices/9", nil, nil)

	var se *backend.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Contains(t, se.Body, "no such invoice")
	assert.True(t, backend.IsNotFound(err))
}

func TestDo_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	var out map[string]any
	err := backend.NewClientWithHTTP(server.URL, server.Client()).Do(context.Background(), http.MethodGet, "/", nil, &out)
	assert.True(t, errors.Is(err, backend.ErrMalformedResponse))
}

func TestDo_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := backend.NewClientWithHTTP(server.URL, &http.Client{Timeout: 20 * time.Millisecond})
	err := c.Do(context.Background(), http.MethodGet, "/", nil, nil)

	var te *backend.TimeoutError
	assert.True(t, errors.As(err, &te))
}

func TestDo_NetworkUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	err := backend.NewClientWithHTTP(url, &http.Client{Timeout: time.Second}).Do(context.Background(), http.MethodGet, "/", nil, nil)
	assert.True(t, errors.Is(err, domain.ErrNetworkUnavailable))
}

func TestInvoiceRecord_DecodesBackendShapes(t *testing.T) {
	var records []backend.InvoiceRecord
	payload := `[
		{"id": 17, "invoice_number": "INV-1", "company_name": "Acme Corporation",
		 "invoice_date": "2024-03-05T00:00:00Z", "total_amount": "1,250.00", "status": "PAID",
		 "created_at": "2024-03-05T10:00:00Z"},
		{"id": "inv-2", "invoiceNumber": "INV-2", "clientName": "Globex Inc",
		 "date": "2024-03-06", "dueDate": "2024-04-05", "amount": 99.5, "status": "weird"}
	]`
	require.NoError(t, json.Unmarshal([]byte(payload), &records))
	require.Len(t, records, 2)

	first := records[0].ToDomain()
	assert.Equal(t, "17", first.ID)
	assert.Equal(t, "Acme Corporation", first.ClientName)
	assert.Equal(t, "2024-03-05", first.IssueDate)
	assert.Equal(t, 1250.0, first.Amount)
	assert.Equal(t, domain.InvoiceStatusPaid, first.Status)
	assert.False(t, first.CreatedAt.IsZero())

	second := records[1].ToDomain()
	assert.Equal(t, "inv-2", second.ID)
	assert.Equal(t, "Globex Inc", second.ClientName)
	assert.Equal(t, "2024-04-05", second.DueDate)
	assert.Equal(t, 99.5, second.Amount)
	assert.Equal(t, domain.InvoiceStatusPending, second.Status)
}

func TestNewInvoiceBody_CarriesProvenance(t *testing.T) {
	inv := &domain.Invoice{
		InvoiceNumber: "INV-3",
		ClientName:    "Initech",
		IssueDate:     "2024-01-01",
		Amount:        40,
		Status:        domain.InvoiceStatusPending,
		Provenance:    &domain.Provenance{Description: "Consulting", Quantity: 2, UnitPrice: 20, Total: 44, Taxes: 4},
	}

	body := backend.NewInvoiceBody(inv)
	assert.Equal(t, "2024-01-01", body.Date)
	assert.Equal(t, "Consulting", body.Description)
	assert.Equal(t, 44.0, body.Total)
	assert.Equal(t, 40.0, body.Amount)
}
