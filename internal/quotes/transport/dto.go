package transport

import (
	"encoding/json"
	"time"

	"rental_quote_backend/internal/location"
	"rental_quote_backend/internal/parsing"
	"rental_quote_backend/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Summary sources.
const (
	SummarySourceAI       = "ai"
	SummarySourceFallback = "fallback"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// QuoteItemRequest is an optional pre-parsed item. Without a SKU the name is
// matched against the catalog.
type QuoteItemRequest struct {
	SKU      string `json:"sku" validate:"omitempty,max=64"`
	Name     string `json:"name" validate:"omitempty,max=200"`
	Quantity int    `json:"quantity" validate:"min=1,max=100000"`
	Notes    string `json:"notes" validate:"omitempty,max=500"`
}

// ServiceLocationMeta is the zone and region of a selected service area.
type ServiceLocationMeta struct {
	Zone   string `json:"zone" validate:"omitempty,oneof=local regional extended"`
	Region string `json:"region" validate:"omitempty,max=100"`
}

// RunQuoteRequest is the body of POST /quote/run. Either message or items is required.
type RunQuoteRequest struct {
	Message                      string               `json:"message" validate:"omitempty,max=4000"`
	Items                        []QuoteItemRequest   `json:"items" validate:"omitempty,max=100,dive"`
	CustomerTier                 string               `json:"customerTier" validate:"omitempty,oneof=A B C"`
	Location                     string               `json:"location" validate:"omitempty,max=200"`
	Zip                          string               `json:"zip" validate:"omitempty,max=10"`
	StartDate                    string               `json:"startDate" validate:"omitempty,max=40"`
	EndDate                      string               `json:"endDate" validate:"omitempty,max=40"`
	Seed                         *int                 `json:"seed"`
	SelectedServiceLocationID    string               `json:"selectedServiceLocationId" validate:"omitempty,max=100"`
	SelectedServiceLocationLabel string               `json:"selectedServiceLocationLabel" validate:"omitempty,max=200"`
	SelectedServiceLocationMeta  *ServiceLocationMeta `json:"selectedServiceLocationMeta" validate:"omitempty"`
	Language                     string               `json:"language" validate:"omitempty,max=16"`
}

// ParseRequest is the body of POST /quote/parse.
type ParseRequest struct {
	Message   string `json:"message" validate:"required,max=4000"`
	Location  string `json:"location" validate:"omitempty,max=200"`
	Zip       string `json:"zip" validate:"omitempty,max=10"`
	StartDate string `json:"startDate" validate:"omitempty,max=40"`
	EndDate   string `json:"endDate" validate:"omitempty,max=40"`
}

// FeedbackRequest is the body of POST /quote/feedback.
type FeedbackRequest struct {
	RunID  uuid.UUID `json:"runId" validate:"required"`
	Rating int       `json:"rating" validate:"required,min=1,max=5"`
	Note   string    `json:"note" validate:"omitempty,max=1000"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// QuoteDocument is the priced quote plus everything needed to present it.
// It is what the done and feedback_apply steps store.
type QuoteDocument struct {
	pricing.Quote
	Tier          string                `json:"tier"`
	Location      location.Resolved     `json:"location"`
	Summary       string                `json:"summary"`
	SummarySource string                `json:"summarySource"`
	Unmatched     []parsing.MatchedItem `json:"unmatched"`
	Language      string                `json:"language"`
	StartDate     string                `json:"startDate,omitempty"`
	EndDate       string                `json:"endDate,omitempty"`
}

// RunQuoteResponse is returned by POST /quote/run.
type RunQuoteResponse struct {
	RunID uuid.UUID     `json:"runId"`
	Quote QuoteDocument `json:"quote"`
}

// FeedbackResponse is returned by POST /quote/feedback.
type FeedbackResponse struct {
	RunID           uuid.UUID     `json:"runId"`
	GoodwillApplied bool          `json:"goodwillApplied"`
	Quote           QuoteDocument `json:"quote"`
}

// ParseResponse is the extraction preview.
type ParseResponse struct {
	Items     []parsing.MatchedItem `json:"items"`
	Unmatched []parsing.MatchedItem `json:"unmatched"`
	Days      int                   `json:"days"`
	Location  location.Resolved     `json:"location"`
}

// StepResponse is one recorded orchestrator stage.
type StepResponse struct {
	ID         int64           `json:"id"`
	Kind       string          `json:"kind"`
	Input      json.RawMessage `json:"input"`
	Output     json.RawMessage `json:"output"`
	DurationMs int             `json:"durationMs"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// RunTraceResponse is returned by GET /quote/runs/:id.
type RunTraceResponse struct {
	RunID uuid.UUID      `json:"runId"`
	Steps []StepResponse `json:"steps"`
}

// RunResponse is the run header.
type RunResponse struct {
	ID         uuid.UUID       `json:"id"`
	InputText  string          `json:"inputText"`
	Seed       *int            `json:"seed,omitempty"`
	Status     string          `json:"status"`
	CostUSD    decimal.Decimal `json:"costUsd"`
	CreatedAt  time.Time       `json:"createdAt"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
}

// RunDetailResponse is returned by GET /runs/:id.
type RunDetailResponse struct {
	Run   RunResponse    `json:"run"`
	Quote *QuoteDocument `json:"quote"`
	Steps []StepResponse `json:"steps"`
}
