package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicedesk/internal/service"
)

// DraftHandler handles the draft under review.
type DraftHandler struct {
	drafts service.DraftService
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(drafts service.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// Get handles GET /api/v1/draft
// @Summary Get the current draft
// @Tags drafts
// @Produce json
// @Success 200 {object} Response{data=domain.InvoiceDraft}
// @Failure 404 {object} ErrorResponseBody "No draft loaded"
// @Router /draft [get]
func (h *DraftHandler) Get(c *gin.Context) {
	d, err := h.drafts.Current(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, d)
}

// Edit handles PATCH /api/v1/draft
// @Summary Edit one draft field
// @Description Numeric input that does not parse is kept as typed and rejected at commit.
// @Tags drafts
// @Accept json
// @Produce json
// @Param body body EditFieldRequest true "Field and value"
// @Success 200 {object} Response{data=domain.InvoiceDraft}
// @Failure 400 {object} ErrorResponseBody "Unknown field"
// @Failure 404 {object} ErrorResponseBody "No draft loaded"
// @Failure 409 {object} ErrorResponseBody "Commit in progress"
// @Router /draft [patch]
func (h *DraftHandler) Edit(c *gin.Context) {
	var req EditFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "field is required")
		return
	}

	d, err := h.drafts.Edit(c.Request.Context(), req.Field, req.Value)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, d)
}

// Commit handles POST /api/v1/draft/commit
// @Summary Commit the draft
// @Description Validates and saves the draft. On success the draft is cleared; on failure it is kept for correction.
// @Tags drafts
// @Produce json
// @Success 201 {object} Response{data=domain.Invoice}
// @Failure 404 {object} ErrorResponseBody "No draft loaded"
// @Failure 409 {object} ErrorResponseBody "Commit in progress"
// @Failure 422 {object} ValidationErrorBody "Validation failed or missing identifier"
// @Failure 502 {object} ErrorResponseBody "Save rejected"
// @Failure 503 {object} ErrorResponseBody "Backend unreachable"
// @Router /draft/commit [post]
func (h *DraftHandler) Commit(c *gin.Context) {
	inv, err := h.drafts.Commit(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, inv)
}

// Cancel handles DELETE /api/v1/draft
// @Summary Discard the draft
// @Tags drafts
// @Produce json
// @Success 200 {object} Response{data=MessageResponse}
// @Router /draft [delete]
func (h *DraftHandler) Cancel(c *gin.Context) {
	h.drafts.Cancel(c.Request.Context())
	RespondOK(c, MessageResponse{Message: "draft discarded"})
}
