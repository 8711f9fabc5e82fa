package handler

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/export"
	"invoicedesk/internal/service"
)

// InvoiceHandler handles committed invoices and repository sync.
type InvoiceHandler struct {
	invoices service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoices service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

func parseFilter(c *gin.Context) (domain.InvoiceFilter, bool) {
	filter := domain.InvoiceFilter{Query: c.Query("q")}
	if raw := c.Query("status"); raw != "" && !strings.EqualFold(raw, "all") {
		status, ok := domain.ParseInvoiceStatus(raw)
		if !ok {
			RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "status must be one of paid, pending, overdue")
			return filter, false
		}
		filter.Status = status
	}
	return filter, true
}

// List handles GET /api/v1/invoices
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param status query string false "Filter by status (paid, pending, overdue)"
// @Param q query string false "Search invoice number, client name or email"
// @Success 200 {object} Response{data=[]domain.Invoice}
// @Failure 400 {object} ErrorResponseBody "Invalid status"
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	invoices, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondList(c, invoices, len(invoices))
}

// Get handles GET /api/v1/invoices/:id
// @Summary Get an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=domain.Invoice}
// @Failure 404 {object} ErrorResponseBody
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, inv)
}

// Create handles POST /api/v1/invoices
// @Summary Create an invoice by hand
// @Tags invoices
// @Accept json
// @Produce json
// @Param body body service.CreateInvoiceInput true "Invoice"
// @Success 201 {object} Response{data=domain.Invoice}
// @Failure 400 {object} ErrorResponseBody
// @Failure 422 {object} ValidationErrorBody
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var input service.CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	inv, err := h.invoices.Create(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, inv)
}

// Update handles PUT /api/v1/invoices/:id
// @Summary Edit an invoice
// @Description Fields left out of the body keep their current value.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param body body service.UpdateInvoiceInput true "Changed fields"
// @Success 200 {object} Response{data=domain.Invoice}
// @Failure 404 {object} ErrorResponseBody
// @Failure 422 {object} ValidationErrorBody
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	var input service.UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	inv, err := h.invoices.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, inv)
}

// Delete handles DELETE /api/v1/invoices/:id
// @Summary Delete an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	if err := h.invoices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, MessageResponse{Message: "invoice deleted"})
}

// Export handles GET /api/v1/invoices/export
// @Summary Export invoices
// @Tags invoices
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv (default) or xlsx"
// @Param status query string false "Filter by status"
// @Param q query string false "Search text"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponseBody
// @Router /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", export.FormatCSV))

	var buf bytes.Buffer
	if err := h.invoices.Export(c.Request.Context(), format, filter, &buf); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("invoices", format, time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

// Sync handles POST /api/v1/sync
// @Summary Reload invoices from the persistence store
// @Tags invoices
// @Produce json
// @Success 200 {object} Response{data=service.SyncResult}
// @Failure 502 {object} ErrorResponseBody
// @Failure 503 {object} ErrorResponseBody
// @Router /sync [post]
func (h *InvoiceHandler) Sync(c *gin.Context) {
	result, err := h.invoices.Sync(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// ListClients handles GET /api/v1/clients
// @Summary List clients
// @Tags clients
// @Produce json
// @Success 200 {object} Response{data=[]domain.Client}
// @Router /clients [get]
func (h *InvoiceHandler) ListClients(c *gin.Context) {
	clients, err := h.invoices.Clients(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondList(c, clients, len(clients))
}

// GetClient handles GET /api/v1/clients/:id
// @Summary Get a client
// @Tags clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} Response{data=domain.Client}
// @Failure 404 {object} ErrorResponseBody
// @Router /clients/{id} [get]
func (h *InvoiceHandler) GetClient(c *gin.Context) {
	client, err := h.invoices.Client(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, client)
}

// ClientInvoices handles GET /api/v1/clients/:id/invoices
// @Summary List a client's invoices
// @Tags clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} Response{data=[]domain.Invoice}
// @Failure 404 {object} ErrorResponseBody
// @Router /clients/{id}/invoices [get]
func (h *InvoiceHandler) ClientInvoices(c *gin.Context) {
	invoices, err := h.invoices.ClientInvoices(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondList(c, invoices, len(invoices))
}
