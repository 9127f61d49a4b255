package service

import (
	"context"
	"encoding/json"

	"rental_quote_backend/internal/events"
	"rental_quote_backend/internal/pricing"
	"rental_quote_backend/internal/quotes/repository"
	"rental_quote_backend/internal/summary"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogStore provides policies, rates and display names.
type CatalogStore interface {
	GetPolicies(ctx context.Context) (pricing.Policies, error)
	pricing.RateSource
}

// AuditLog records runs and their steps.
type AuditLog interface {
	StartRun(ctx context.Context, inputText string, seed *int) (uuid.UUID, error)
	AddStep(ctx context.Context, runID uuid.UUID, kind string, input, output any, durationMs int64) error
	FinishRun(ctx context.Context, runID uuid.UUID, status string, cost decimal.Decimal) error
	GetRun(ctx context.Context, runID uuid.UUID) (*repository.Run, error)
	ListSteps(ctx context.Context, runID uuid.UUID) ([]repository.Step, error)
	LatestQuote(ctx context.Context, runID uuid.UUID, kinds ...string) (json.RawMessage, error)
}

// Summarizer writes the customer-facing note. A nil Summarizer means canned notes only.
type Summarizer = summary.Summarizer

// EventPublisher is the slice of the event bus the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

var (
	_ CatalogStore = (*repository.CatalogStore)(nil)
	_ AuditLog     = (*repository.Repository)(nil)
)
