// Package events defines the quote domain events. The bus itself lives in
// platform/events and is re-exported here so modules import a single package.
package events

import (
	"rental_quote_backend/internal/pricing"
	"rental_quote_backend/platform/events"
	"rental_quote_backend/platform/logger"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Subscriber  = events.Subscriber
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates the process-local bus that carries quote events.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Quote Domain Events
// =============================================================================

// QuoteCompleted is published when a run finishes with a priced quote.
type QuoteCompleted struct {
	BaseEvent
	RunID    uuid.UUID     `json:"runId"`
	Tier     string        `json:"tier"`
	Total    pricing.Money `json:"total"`
	Days     int           `json:"days"`
	Location string        `json:"location"`
}

func (e QuoteCompleted) EventName() string { return "quotes.run.completed" }

// FeedbackApplied is published after customer feedback is recorded on a run.
type FeedbackApplied struct {
	BaseEvent
	RunID           uuid.UUID     `json:"runId"`
	Rating          int           `json:"rating"`
	GoodwillApplied bool          `json:"goodwillApplied"`
	Total           pricing.Money `json:"total"`
}

func (e FeedbackApplied) EventName() string { return "quotes.feedback.applied" }
