// Package quotes provides the rental quote domain module.
package quotes

import (
	"rental_quote_backend/internal/adapters/storage"
	apphttp "rental_quote_backend/internal/http"
	"rental_quote_backend/internal/quotes/handler"
	"rental_quote_backend/internal/quotes/repository"
	"rental_quote_backend/internal/quotes/service"
	"rental_quote_backend/platform/events"
	"rental_quote_backend/platform/logger"
	"rental_quote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotes domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new quotes module with all dependencies wired.
// cache may be nil when Redis is disabled.
func NewModule(pool *pgxpool.Pool, cache *repository.PolicyCache, eventBus *events.InMemoryBus, val *validator.Validator, opts service.Options, log *logger.Logger) *Module {
	repo := repository.New(pool)
	catalog := repository.NewCatalogStore(repo, repo, cache, log)
	svc := service.New(catalog, repo, opts, log)
	svc.SetEventBus(eventBus)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// SetSummarizer injects the quote summary provider.
func (m *Module) SetSummarizer(sum service.Summarizer) {
	m.service.SetSummarizer(sum)
}

// SetStorageForPDF injects storage for archived PDF links.
func (m *Module) SetStorageForPDF(svc storage.StorageService, bucket string) {
	m.handler.SetStorageForPDF(svc, bucket)
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/quote"))

	// Trace routes require an operator token when one is configured
	m.handler.RegisterOperatorRoutes(ctx.Operator.Group("/quote"), ctx.Operator.Group("/runs"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
