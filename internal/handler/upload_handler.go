package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/service"
)

// multipartOverhead is the allowance above the file limit for multipart framing.
const multipartOverhead = 1 << 20

// UploadHandler handles document uploads.
type UploadHandler struct {
	ingest   service.IngestService
	maxBytes int64
}

// NewUploadHandler creates a new UploadHandler. maxBytes of 0 disables the
// request size cap.
func NewUploadHandler(ingest service.IngestService, maxBytes int64) *UploadHandler {
	return &UploadHandler{ingest: ingest, maxBytes: maxBytes}
}

// Upload handles POST /api/v1/uploads
// @Summary Upload an invoice document
// @Description Encode the document, extract its fields and load them as the draft under review. Any uncommitted draft is replaced.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice document (PDF, JPG or PNG)"
// @Success 201 {object} Response{data=domain.InvoiceDraft} "Draft loaded"
// @Failure 400 {object} ErrorResponseBody "Missing file"
// @Failure 409 {object} ErrorResponseBody "Upload superseded or commit in progress"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 415 {object} ErrorResponseBody "Unsupported format"
// @Failure 502 {object} ErrorResponseBody "Extraction failed"
// @Failure 503 {object} ErrorResponseBody "Backend unreachable"
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	draft, err := h.ingest.Ingest(c.Request.Context(), header.Filename, file)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, draft)
}

// Document handles GET /api/v1/draft/document
// @Summary Link to the draft's source document
// @Description Returns a short-lived presigned URL to the archived upload behind the current draft.
// @Tags drafts
// @Produce json
// @Success 200 {object} Response{data=DocumentURLResponse}
// @Failure 404 {object} ErrorResponseBody "No draft or no archived document"
// @Router /draft/document [get]
func (h *UploadHandler) Document(c *gin.Context) {
	url, err := h.ingest.DocumentURL(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, DocumentURLResponse{URL: url, ExpiresIn: 900})
}
