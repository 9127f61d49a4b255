// Package events carries in-process domain events between modules.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is implemented by every domain event.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent is embedded by domain events for their identity and timestamp.
type BaseEvent struct {
	EventID   uuid.UUID `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a fresh event id and the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{EventID: uuid.New(), Timestamp: time.Now().UTC()}
}

// Handler reacts to one event. Returned errors are logged by the bus.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function subscribe to the bus.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Publisher emits events. Publish is fire-and-forget; PublishSync waits and
// returns the joined handler errors.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	PublishSync(ctx context.Context, event Event) error
}

// Subscriber registers handlers by event name.
type Subscriber interface {
	Subscribe(eventName string, handler Handler)
}

// Bus is both sides of the event bus.
type Bus interface {
	Publisher
	Subscriber
}

var _ Bus = (*InMemoryBus)(nil)
