package handler

import (
	"context"
	"net/http"

	"rental_quote_backend/internal/inventory/transport"
	"rental_quote_backend/platform/apperr"
	"rental_quote_backend/platform/httpkit"
	"rental_quote_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Browser is the inventory service as seen by the handler.
type Browser interface {
	Browse(ctx context.Context, req transport.BrowseRequest) (*transport.BrowseResponse, error)
}

// Handler handles HTTP requests for inventory
type Handler struct {
	svc Browser
	val *validator.Validator
}

// New creates a new inventory handler
func New(svc Browser, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the inventory routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/browse", h.Browse)
}

// Browse handles GET /api/v1/inventory/browse
func (h *Handler) Browse(c *gin.Context) {
	var req transport.BrowseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidation, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidation, "validation failed", validator.FieldErrors(err))
		return
	}

	result, err := h.svc.Browse(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
