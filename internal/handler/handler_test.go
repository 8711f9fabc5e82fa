package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/handler"
	"invoicedesk/internal/service"
	"invoicedesk/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func multipartBody(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestMapDomainError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrNoDraft, http.StatusNotFound, "NO_DRAFT"},
		{fmt.Errorf("ingest.Encode: %w", domain.ErrUnsupportedFormat), http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{&domain.ExtractionError{StatusCode: 500}, http.StatusBadGateway, "EXTRACTION_FAILED"},
		{domain.ErrNetworkUnavailable, http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE"},
		{domain.ErrMissingIdentifier, http.StatusUnprocessableEntity, "MISSING_IDENTIFIER"},
		{&domain.ValidationError{}, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{domain.ErrUnknownField, http.StatusBadRequest, "UNKNOWN_FIELD"},
		{domain.ErrCommitInProgress, http.StatusConflict, "COMMIT_IN_PROGRESS"},
		{domain.ErrStaleResponse, http.StatusConflict, "STALE_RESPONSE"},
		{domain.ErrPersistenceFailed, http.StatusBadGateway, "PERSISTENCE_FAILED"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		status, code, _ := handler.MapDomainError(tc.err)
		assert.Equal(t, tc.status, status, tc.code)
		assert.Equal(t, tc.code, code)
	}
}

func TestUploadHandler_Upload(t *testing.T) {
	ingest := new(mocks.MockIngestService)
	h := handler.NewUploadHandler(ingest, 1<<20)

	draft := domain.NewInvoiceDraft()
	draft.ClientName = "Acme Corporation"
	ingest.On("Ingest", mock.Anything, "march.pdf", mock.Anything).Return(draft, nil)

	body, contentType := multipartBody(t, "march.pdf", []byte("%PDF-1.4"))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Acme Corporation", resp.Data.(map[string]any)["client_name"])
	ingest.AssertExpectations(t)
}

func TestUploadHandler_MissingFile(t *testing.T) {
	h := handler.NewUploadHandler(new(mocks.MockIngestService), 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/uploads", http.NoBody)

	h.Upload(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decode(t, w).Error.Code)
}

func TestUploadHandler_ExtractionFailureCarriesDiagnostic(t *testing.T) {
	ingest := new(mocks.MockIngestService)
	h := handler.NewUploadHandler(ingest, 0)
	ingest.On("Ingest", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("ingest.Extract: %w", &domain.ExtractionError{StatusCode: 500, Diagnostic: "model offline"}))

	body, contentType := multipartBody(t, "scan.png", []byte("\x89PNG"))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "EXTRACTION_FAILED", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "model offline")
}

func TestUploadHandler_Document(t *testing.T) {
	ingest := new(mocks.MockIngestService)
	h := handler.NewUploadHandler(ingest, 0)
	ingest.On("DocumentURL", mock.Anything).Return("https://signed.example/a.pdf", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/draft/document", http.NoBody)

	h.Document(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://signed.example/a.pdf", decode(t, w).Data.(map[string]any)["url"])
}

func TestDraftHandler_Edit(t *testing.T) {
	drafts := new(mocks.MockDraftService)
	h := handler.NewDraftHandler(drafts)

	draft := domain.NewInvoiceDraft()
	draft.Amount = 99
	drafts.On("Edit", mock.Anything, "amount", "99").Return(draft, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPatch, "/api/v1/draft", strings.NewReader(`{"field":"amount","value":"99"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Edit(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 99.0, decode(t, w).Data.(map[string]any)["amount"])
}

func TestDraftHandler_EditBadBody(t *testing.T) {
	h := handler.NewDraftHandler(new(mocks.MockDraftService))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPatch, "/api/v1/draft", strings.NewReader(`{"value":"1"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Edit(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDraftHandler_CommitValidationDetails(t *testing.T) {
	drafts := new(mocks.MockDraftService)
	h := handler.NewDraftHandler(drafts)
	drafts.On("Commit", mock.Anything).Return(nil, &domain.ValidationError{Reasons: []domain.FieldReason{
		{Field: "amount", Reason: "must not be negative"},
	}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/draft/commit", http.NoBody)

	h.Commit(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode(t, w)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "amount", resp.Error.Details[0].Field)
}

func TestDraftHandler_GetAndCancel(t *testing.T) {
	drafts := new(mocks.MockDraftService)
	h := handler.NewDraftHandler(drafts)
	drafts.On("Current", mock.Anything).Return(nil, domain.ErrNoDraft)
	drafts.On("Cancel", mock.Anything).Return()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/draft", http.NoBody)
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/v1/draft", http.NoBody)
	h.Cancel(c)
	assert.Equal(t, http.StatusOK, w.Code)
	drafts.AssertExpectations(t)
}

func TestInvoiceHandler_ListFilter(t *testing.T) {
	invoices := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(invoices)
	invoices.On("List", mock.Anything, domain.InvoiceFilter{Status: domain.InvoiceStatusOverdue, Query: "acme"}).
		Return([]domain.Invoice{{ID: "inv-1"}}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices?status=Overdue&q=acme", http.NoBody)

	h.List(c)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)
	invoices.AssertExpectations(t)
}

func TestInvoiceHandler_ListBadStatus(t *testing.T) {
	h := handler.NewInvoiceHandler(new(mocks.MockInvoiceService))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices?status=void", http.NoBody)

	h.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_GetNotFound(t *testing.T) {
	invoices := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(invoices)
	invoices.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices/nope", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_Create(t *testing.T) {
	invoices := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(invoices)
	invoices.On("Create", mock.Anything, mock.MatchedBy(func(in *service.CreateInvoiceInput) bool {
		return in.ClientName == "Initech" && in.Amount == 42
	})).Return(&domain.Invoice{ID: "local-1", ClientName: "Initech", Amount: 42}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(`{"client_name":"Initech","amount":42}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	invoices.AssertExpectations(t)
}

func TestInvoiceHandler_UpdatePartial(t *testing.T) {
	invoices := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(invoices)
	invoices.On("Update", mock.Anything, "inv-1", mock.MatchedBy(func(in *service.UpdateInvoiceInput) bool {
		return in.Status != nil && *in.Status == domain.InvoiceStatusPaid && in.Amount == nil
	})).Return(&domain.Invoice{ID: "inv-1", Status: domain.InvoiceStatusPaid}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPut, "/api/v1/invoices/inv-1", strings.NewReader(`{"status":"paid"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "inv-1"}}

	h.Update(c)
	assert.Equal(t, http.StatusOK, w.Code)
	invoices.AssertExpectations(t)
}

func TestInvoiceHandler_Export(t *testing.T) {
	invoices := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(invoices)
	invoices.On("Export", mock.Anything, "csv", domain.InvoiceFilter{}, mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(3).(io.Writer), "Invoice ID\n")
		}).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices/export", http.NoBody)

	h.Export(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoices_")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "Invoice ID\n", w.Body.String())
}

func TestInvoiceHandler_SyncUnavailable(t *testing.T) {
	invoices := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(invoices)
	invoices.On("Sync", mock.Anything).Return(nil, fmt.Errorf("sync: %w", domain.ErrNetworkUnavailable))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/sync", http.NoBody)

	h.Sync(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatsHandler_QueryParams(t *testing.T) {
	stats := new(mocks.MockStatsService)
	h := handler.NewStatsHandler(stats)
	stats.On("RevenuePerDay", mock.Anything, 30).Return([]domain.DailyRevenue{{Date: "2024-03-01", Total: 10}}, nil)
	stats.On("TopClients", mock.Anything, 0).Return([]domain.ClientValue{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/stats/revenue-per-day?days=30", http.NoBody)
	h.RevenuePerDay(c)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/stats/top-clients?limit=abc", http.NoBody)
	h.TopClients(c)
	assert.Equal(t, http.StatusOK, w.Code)

	stats.AssertExpectations(t)
}

func TestStatsHandler_Snapshot(t *testing.T) {
	stats := new(mocks.MockStatsService)
	h := handler.NewStatsHandler(stats)
	stats.On("Snapshot", mock.Anything).Return(&domain.StatsSnapshot{TotalRevenue: 150, ProcessingRate: 50}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/stats/snapshot", http.NoBody)
	h.Snapshot(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, 150.0, data["total_revenue"])
	assert.Equal(t, 50.0, data["processing_rate"])
}

type pinger struct{ err error }

func (p pinger) Ping(_ context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	handler.NewHealthHandler(pinger{err: errors.New("closed")}).Readiness(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	handler.NewHealthHandler(pinger{}).Readiness(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
