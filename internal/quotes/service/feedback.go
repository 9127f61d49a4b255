package service

import (
	"context"
	"encoding/json"
	"time"

	"rental_quote_backend/internal/events"
	"rental_quote_backend/internal/pricing"
	"rental_quote_backend/internal/quotes/transport"
	"rental_quote_backend/platform/apperr"
	"rental_quote_backend/platform/logger"
	"rental_quote_backend/platform/sanitize"
)

// Feedback records a customer rating on a finished run. A rating of 3 or less
// earns a one-time goodwill credit on the latest quote.
func (s *Service) Feedback(ctx context.Context, req transport.FeedbackRequest) (*transport.FeedbackResponse, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}
	ctx = logger.ContextWithRunID(ctx, req.RunID.String())

	doc, err := s.LatestDocument(ctx, req.RunID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	applied := false
	if !doc.HasFee(pricing.FeeGoodwillDiscount) {
		applied = pricing.ApplyGoodwill(&doc.Quote, req.Rating)
	}

	input := map[string]any{"rating": req.Rating, "note": sanitize.Text(req.Note, 1000)}
	if err := s.audit.AddStep(ctx, req.RunID, StepFeedbackApply, input, doc, time.Since(start).Milliseconds()); err != nil {
		return nil, storeErr("failed to record feedback", err)
	}

	s.log.WithContext(ctx).Info("feedback recorded", "rating", req.Rating, "goodwillApplied", applied)
	if s.events != nil {
		s.events.Publish(ctx, events.FeedbackApplied{
			BaseEvent:       events.NewBaseEvent(),
			RunID:           req.RunID,
			Rating:          req.Rating,
			GoodwillApplied: applied,
			Total:           doc.Total,
		})
	}

	return &transport.FeedbackResponse{RunID: req.RunID, GoodwillApplied: applied, Quote: *doc}, nil
}

func decodeDocument(raw json.RawMessage) (*transport.QuoteDocument, error) {
	var doc transport.QuoteDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "stored quote is unreadable", err)
	}
	return &doc, nil
}
