package service

import (
	"context"

	"rental_quote_backend/internal/parsing"
	"rental_quote_backend/internal/quotes/transport"
	"rental_quote_backend/platform/apperr"
	"rental_quote_backend/platform/sanitize"
)

// Preview runs extraction only: items, rental days and location. Nothing is
// priced or recorded.
func (s *Service) Preview(ctx context.Context, req transport.ParseRequest) (*transport.ParseResponse, error) {
	message := sanitize.Text(req.Message, maxMessageRunes)
	if message == "" {
		return nil, apperr.Validation("message is required")
	}

	norm := s.normalize(message, transport.RunQuoteRequest{
		Location:  req.Location,
		Zip:       req.Zip,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	s.log.WithContext(ctx).Debug("quote preview parsed",
		"matched", len(norm.Matched)-len(norm.Unmatched),
		"unmatched", len(norm.Unmatched),
		"days", norm.Days,
	)

	items := make([]parsing.MatchedItem, 0, len(norm.Matched))
	for _, it := range norm.Matched {
		if it.Matched {
			items = append(items, it)
		}
	}
	return &transport.ParseResponse{
		Items:     items,
		Unmatched: norm.Unmatched,
		Days:      norm.Days,
		Location:  norm.Location,
	}, nil
}
