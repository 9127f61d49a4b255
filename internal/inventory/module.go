// Package inventory provides the equipment catalog browse module.
package inventory

import (
	apphttp "rental_quote_backend/internal/http"
	"rental_quote_backend/internal/inventory/handler"
	"rental_quote_backend/internal/inventory/repository"
	"rental_quote_backend/internal/inventory/service"
	"rental_quote_backend/platform/logger"
	"rental_quote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the inventory domain module
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new inventory module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{
		handler: handler.New(svc, val),
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "inventory"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/inventory"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
