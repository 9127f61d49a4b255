package handler

import (
	"context"
	"net/http"
	"time"

	"rental_quote_backend/internal/adapters/storage"
	"rental_quote_backend/internal/pdf"
	"rental_quote_backend/internal/quotes/transport"
	"rental_quote_backend/platform/apperr"
	"rental_quote_backend/platform/httpkit"
	"rental_quote_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest      = "invalid request"
	msgValidationFailed    = "validation failed"
	msgInvalidRunID        = "invalid run id"
	msgPDFGenerationFailed = "PDF generation failed"
)

// QuoteService is the slice of the quotes service the handler calls.
type QuoteService interface {
	Run(ctx context.Context, req transport.RunQuoteRequest) (*transport.RunQuoteResponse, error)
	Preview(ctx context.Context, req transport.ParseRequest) (*transport.ParseResponse, error)
	Feedback(ctx context.Context, req transport.FeedbackRequest) (*transport.FeedbackResponse, error)
	Trace(ctx context.Context, runID uuid.UUID) (*transport.RunTraceResponse, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*transport.RunDetailResponse, error)
	LatestDocument(ctx context.Context, runID uuid.UUID) (*transport.QuoteDocument, error)
}

// Handler handles HTTP requests for quotes
type Handler struct {
	svc        QuoteService
	val        *validator.Validator
	storageSvc storage.StorageService
	pdfBucket  string
}

// New creates a new quotes handler
func New(svc QuoteService, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// SetStorageForPDF injects the storage service and bucket for archived PDFs.
func (h *Handler) SetStorageForPDF(svc storage.StorageService, bucket string) {
	h.storageSvc = svc
	h.pdfBucket = bucket
}

// RegisterRoutes registers the public quote routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/run", h.Run)
	rg.POST("/parse", h.Parse)
	rg.POST("/feedback", h.Feedback)
	rg.GET("/runs/:id/pdf", h.DownloadPDF)
}

// RegisterOperatorRoutes registers the trace routes. Both groups must already carry the operator guard.
func (h *Handler) RegisterOperatorRoutes(quotes, runs *gin.RouterGroup) {
	quotes.GET("/runs/:id", h.Trace)
	quotes.GET("/runs/:id/pdf/archive", h.ArchiveLink)
	runs.GET("/:id", h.GetRun)
}

// Run handles POST /api/v1/quote/run
func (h *Handler) Run(c *gin.Context) {
	var req transport.RunQuoteRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.Run(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Parse handles POST /api/v1/quote/parse
// Previews extraction without pricing or recording a run.
func (h *Handler) Parse(c *gin.Context) {
	var req transport.ParseRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.Preview(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Feedback handles POST /api/v1/quote/feedback
func (h *Handler) Feedback(c *gin.Context) {
	var req transport.FeedbackRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.Feedback(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Trace handles GET /api/v1/quote/runs/:id
func (h *Handler) Trace(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}

	result, err := h.svc.Trace(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetRun handles GET /api/v1/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetRun(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// DownloadPDF handles GET /api/v1/quote/runs/:id/pdf
// The PDF is rendered from the latest quote document, so feedback credits show up.
func (h *Handler) DownloadPDF(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}

	doc, err := h.svc.LatestDocument(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	pdfBytes, err := pdf.GenerateQuotePDF(pdf.QuotePDFData{
		RunID:       id.String(),
		GeneratedAt: time.Now(),
		Quote:       *doc,
	})
	if err != nil {
		_ = c.Error(err)
		httpkit.Error(c, http.StatusInternalServerError, apperr.CodeQuoteGeneration, msgPDFGenerationFailed, nil)
		return
	}

	servePDFBytes(c, id.String(), pdfBytes)
}

// ArchiveLink handles GET /api/v1/quote/runs/:id/pdf/archive
// Returns a presigned URL for the PDF the worker archived.
func (h *Handler) ArchiveLink(c *gin.Context) {
	if h.storageSvc == nil || h.pdfBucket == "" {
		httpkit.Error(c, http.StatusServiceUnavailable, apperr.CodeDatabase, "PDF archive is not configured", nil)
		return
	}

	id, ok := parseRunID(c)
	if !ok {
		return
	}

	key := storage.QuotePDFKey(id)
	exists, err := h.storageSvc.ObjectExists(c.Request.Context(), h.pdfBucket, key)
	if err != nil {
		_ = c.Error(err)
		httpkit.Error(c, http.StatusServiceUnavailable, apperr.CodeDatabase, "failed to check PDF archive", nil)
		return
	}
	if !exists {
		httpkit.Error(c, http.StatusNotFound, apperr.CodeNotFound, "no archived PDF for this run", nil)
		return
	}

	link, err := h.storageSvc.GenerateDownloadURL(c.Request.Context(), h.pdfBucket, key)
	if err != nil {
		_ = c.Error(err)
		httpkit.Error(c, http.StatusServiceUnavailable, apperr.CodeDatabase, "failed to sign PDF link", nil)
		return
	}

	httpkit.OK(c, link)
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidation, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidation, msgValidationFailed, validator.FieldErrors(err))
		return false
	}
	return true
}

func parseRunID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidation, msgInvalidRunID, nil)
		return uuid.Nil, false
	}
	return id, true
}
