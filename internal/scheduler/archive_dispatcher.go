package scheduler

import (
	"context"

	"rental_quote_backend/internal/events"
	"rental_quote_backend/platform/logger"

	"github.com/google/uuid"
)

// ArchiveDispatcher turns quote events into PDF archive jobs.
type ArchiveDispatcher struct {
	archiver PDFArchiver
	log      *logger.Logger
}

func NewArchiveDispatcher(archiver PDFArchiver, log *logger.Logger) *ArchiveDispatcher {
	return &ArchiveDispatcher{archiver: archiver, log: log}
}

// RegisterHandlers archives every completed quote, and re-archives after
// feedback changed the totals.
func (d *ArchiveDispatcher) RegisterHandlers(bus events.Subscriber) {
	bus.Subscribe(events.QuoteCompleted{}.EventName(), events.HandlerFunc(d.handleQuoteCompleted))
	bus.Subscribe(events.FeedbackApplied{}.EventName(), events.HandlerFunc(d.handleFeedbackApplied))
}

func (d *ArchiveDispatcher) handleQuoteCompleted(ctx context.Context, event events.Event) error {
	e, ok := event.(events.QuoteCompleted)
	if !ok {
		return nil
	}
	return d.enqueue(ctx, e.RunID)
}

func (d *ArchiveDispatcher) handleFeedbackApplied(ctx context.Context, event events.Event) error {
	e, ok := event.(events.FeedbackApplied)
	if !ok || !e.GoodwillApplied {
		return nil
	}
	return d.enqueue(ctx, e.RunID)
}

func (d *ArchiveDispatcher) enqueue(ctx context.Context, runID uuid.UUID) error {
	if err := d.archiver.EnqueueQuotePDFArchive(ctx, runID); err != nil {
		return err
	}
	d.log.WithContext(ctx).Debug("quote pdf archive queued", "runId", runID)
	return nil
}
