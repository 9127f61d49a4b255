package service

import (
	"context"

	"rental_quote_backend/internal/quotes/repository"
	"rental_quote_backend/internal/quotes/transport"
	"rental_quote_backend/platform/apperr"

	"github.com/google/uuid"
)

// LatestDocument returns the newest quote document of a run, including any
// feedback adjustment.
func (s *Service) LatestDocument(ctx context.Context, runID uuid.UUID) (*transport.QuoteDocument, error) {
	raw, err := s.audit.LatestQuote(ctx, runID, StepDone, StepFeedbackApply)
	if err != nil {
		return nil, storeErr("failed to load quote", err)
	}
	return decodeDocument(raw)
}

// Trace returns the ordered steps of a run.
func (s *Service) Trace(ctx context.Context, runID uuid.UUID) (*transport.RunTraceResponse, error) {
	if _, err := s.audit.GetRun(ctx, runID); err != nil {
		return nil, storeErr("failed to load run", err)
	}
	steps, err := s.audit.ListSteps(ctx, runID)
	if err != nil {
		return nil, storeErr("failed to load steps", err)
	}
	return &transport.RunTraceResponse{RunID: runID, Steps: toStepResponses(steps)}, nil
}

// GetRun returns the run header, its steps and the latest quote document.
// Quote is nil for runs that never completed.
func (s *Service) GetRun(ctx context.Context, runID uuid.UUID) (*transport.RunDetailResponse, error) {
	run, err := s.audit.GetRun(ctx, runID)
	if err != nil {
		return nil, storeErr("failed to load run", err)
	}
	steps, err := s.audit.ListSteps(ctx, runID)
	if err != nil {
		return nil, storeErr("failed to load steps", err)
	}

	doc, err := s.LatestDocument(ctx, runID)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	return &transport.RunDetailResponse{
		Run:   toRunResponse(run),
		Quote: doc,
		Steps: toStepResponses(steps),
	}, nil
}

func toRunResponse(run *repository.Run) transport.RunResponse {
	return transport.RunResponse{
		ID:         run.ID,
		InputText:  run.InputText,
		Seed:       run.Seed,
		Status:     run.Status,
		CostUSD:    run.CostUSD,
		CreatedAt:  run.CreatedAt,
		FinishedAt: run.FinishedAt,
	}
}

func toStepResponses(steps []repository.Step) []transport.StepResponse {
	out := make([]transport.StepResponse, 0, len(steps))
	for _, st := range steps {
		out = append(out, transport.StepResponse{
			ID:         st.ID,
			Kind:       st.Kind,
			Input:      st.Input,
			Output:     st.Output,
			DurationMs: st.DurationMs,
			CreatedAt:  st.CreatedAt,
		})
	}
	return out
}
