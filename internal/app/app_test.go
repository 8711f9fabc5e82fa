package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/app"
	"invoicedesk/internal/config"
	"invoicedesk/internal/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const ocrResponse = `{
	"invoice_id": 42,
	"Invoice Number": "INV-2024-007",
	"Customer Name": "Acme Corporation",
	"Invoice Date": "2024-03-01",
	"Due Date": "2024-03-31",
	"Amount": "1,200.50",
	"Taxes": 0
}`

// minimalOCRResponse carries no invoice_id.
const minimalOCRResponse = `{"Invoice Number":"INV-42","Amount":"100.00","Customer Name":"Acme"}`

// fakeBackend serves the extraction and persistence endpoints in memory. An
// empty ocr serves ocrResponse.
type fakeBackend struct {
	mu   sync.Mutex
	puts map[string]map[string]any
	ocr  string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/ocr":
		body := f.ocr
		if body == "" {
			body = ocrResponse
		}
		_, _ = io.WriteString(w, body)
	case r.Method == http.MethodGet && (r.URL.Path == "/invoices" || r.URL.Path == "/clients"):
		_, _ = io.WriteString(w, "[]")
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/invoices/"):
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/invoices/")
		f.mu.Lock()
		f.puts[id] = body
		f.mu.Unlock()
		body["id"] = id
		_ = json.NewEncoder(w).Encode(body)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newApp(t *testing.T, env map[string]string) *app.App {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := config.Load()
	require.NoError(t, err)

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	a.Sync(context.Background())
	return a
}

func do(t *testing.T, r http.Handler, method, path string, body io.Reader, contentType string) (*httptest.ResponseRecorder, handler.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp handler.APIResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func upload(t *testing.T, r http.Handler) handler.APIResponse {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "march.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"))
	require.NoError(t, mw.Close())

	w, resp := do(t, r, http.MethodPost, "/api/v1/uploads", &body, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return resp
}

func TestRemoteMode_UploadEditCommit(t *testing.T) {
	fake := &fakeBackend{puts: map[string]map[string]any{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	a := newApp(t, map[string]string{"INVOICEDESK_BACKEND_BASE_URL": server.URL})
	r := a.Router()

	draft := upload(t, r).Data.(map[string]any)
	assert.Equal(t, "42", draft["invoice_id"])
	assert.Equal(t, "Acme Corporation", draft["client_name"])
	assert.Equal(t, 1200.5, draft["amount"])

	w, resp := do(t, r, http.MethodPatch, "/api/v1/draft",
		strings.NewReader(`{"field":"status","value":"paid"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paid", resp.Data.(map[string]any)["status"])

	w, resp = do(t, r, http.MethodPost, "/api/v1/draft/commit", nil, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	saved := resp.Data.(map[string]any)
	assert.Equal(t, "42", saved["id"])
	assert.NotEmpty(t, saved["client_id"])

	fake.mu.Lock()
	put := fake.puts["42"]
	fake.mu.Unlock()
	require.NotNil(t, put)
	assert.Equal(t, "Acme Corporation", put["clientName"])
	assert.Equal(t, "paid", put["status"])

	w, _ = do(t, r, http.MethodGet, "/api/v1/draft", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = do(t, r, http.MethodGet, "/api/v1/stats/snapshot", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	snap := resp.Data.(map[string]any)
	assert.Equal(t, 1200.5, snap["total_revenue"])
	assert.Equal(t, 1.0, snap["processed_invoices"])
	assert.Equal(t, 1.0, snap["active_clients"])
	assert.Equal(t, 100.0, snap["processing_rate"])
}

func TestRemoteMode_CommitWithoutIdentifier(t *testing.T) {
	fake := &fakeBackend{puts: map[string]map[string]any{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	a := newApp(t, map[string]string{"INVOICEDESK_BACKEND_BASE_URL": server.URL})
	r := a.Router()

	upload(t, r)
	w, _ := do(t, r, http.MethodPatch, "/api/v1/draft",
		strings.NewReader(`{"field":"invoice_id","value":""}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := do(t, r, http.MethodPost, "/api/v1/draft/commit", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "MISSING_IDENTIFIER", resp.Error.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/draft", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, fake.puts)
}

func TestLocalMode_CommitSurvivesRestart(t *testing.T) {
	fake := &fakeBackend{puts: map[string]map[string]any{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	env := map[string]string{
		"INVOICEDESK_BACKEND_BASE_URL":              server.URL,
		"INVOICEDESK_PERSISTENCE_MODE":              "local",
		"INVOICEDESK_LOCAL_PATH":                    filepath.Join(t.TempDir(), "invoices.db"),
		"INVOICEDESK_RATE_LIMIT_UPLOADS_PER_MINUTE": "0",
	}
	a := newApp(t, env)
	r := a.Router()

	upload(t, r)
	w, resp := do(t, r, http.MethodPost, "/api/v1/draft/commit", nil, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := resp.Data.(map[string]any)["id"].(string)
	assert.True(t, strings.HasPrefix(id, "local-"), id)
	assert.Empty(t, fake.puts)
	require.NoError(t, a.Close())

	reopened := newApp(t, env)
	w, resp = do(t, reopened.Router(), http.MethodGet, "/api/v1/invoices", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)

	w, _ = do(t, reopened.Router(), http.MethodGet, "/api/v1/invoices/export?format=csv", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "INV-2024-007")
}

func summary(t *testing.T, r http.Handler) map[string]any {
	t.Helper()
	w, resp := do(t, r, http.MethodGet, "/api/v1/stats/summary", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return resp.Data.(map[string]any)
}

func TestLocalMode_CommitWithoutIdentifierAddsPaidInvoice(t *testing.T) {
	fake := &fakeBackend{puts: map[string]map[string]any{}, ocr: minimalOCRResponse}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	a := newApp(t, map[string]string{
		"INVOICEDESK_BACKEND_BASE_URL":              server.URL,
		"INVOICEDESK_PERSISTENCE_MODE":              "local",
		"INVOICEDESK_LOCAL_PATH":                    filepath.Join(t.TempDir(), "invoices.db"),
		"INVOICEDESK_RATE_LIMIT_UPLOADS_PER_MINUTE": "0",
	})
	r := a.Router()

	w, _ := do(t, r, http.MethodPost, "/api/v1/invoices",
		strings.NewReader(`{"invoice_number":"INV-1","client_name":"Globex Inc","amount":250,"status":"pending"}`),
		"application/json")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	before := summary(t, r)
	require.Equal(t, 1.0, before["total_invoices"])

	draft := upload(t, r).Data.(map[string]any)
	assert.Empty(t, draft["invoice_id"])
	assert.Equal(t, "Acme", draft["client_name"])
	assert.Equal(t, 100.0, draft["amount"])

	w, _ = do(t, r, http.MethodPatch, "/api/v1/draft",
		strings.NewReader(`{"field":"status","value":"paid"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := do(t, r, http.MethodPost, "/api/v1/draft/commit", nil, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	saved := resp.Data.(map[string]any)
	assert.Equal(t, "INV-42", saved["invoice_number"])
	assert.Equal(t, "paid", saved["status"])
	assert.Equal(t, 100.0, saved["amount"])
	assert.Empty(t, fake.puts)

	after := summary(t, r)
	assert.Equal(t, 2.0, after["total_invoices"])
	assert.InDelta(t, 100.0, after["total_revenue"].(float64)-before["total_revenue"].(float64), 1e-9)

	w, resp = do(t, r, http.MethodGet, "/api/v1/invoices", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	paid := 0
	for _, item := range resp.Data.([]any) {
		if item.(map[string]any)["status"] == "paid" {
			paid++
		}
	}
	assert.Equal(t, 1, paid)
}

func TestRemoteMode_RejectsExtractionWithoutIdentifier(t *testing.T) {
	fake := &fakeBackend{puts: map[string]map[string]any{}, ocr: minimalOCRResponse}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	a := newApp(t, map[string]string{"INVOICEDESK_BACKEND_BASE_URL": server.URL})
	r := a.Router()

	upload(t, r)
	w, resp := do(t, r, http.MethodPost, "/api/v1/draft/commit", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "MISSING_IDENTIFIER", resp.Error.Code)

	assert.Empty(t, fake.puts)
	assert.Equal(t, 0.0, summary(t, r)["total_invoices"])
}

func TestHealthEndpoints(t *testing.T) {
	a := newApp(t, map[string]string{
		"INVOICEDESK_BACKEND_BASE_URL": "http://127.0.0.1:1",
		"INVOICEDESK_PERSISTENCE_MODE": "local",
		"INVOICEDESK_LOCAL_PATH":       filepath.Join(t.TempDir(), "invoices.db"),
	})
	r := a.Router()

	w, _ := do(t, r, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodGet, "/readyz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
