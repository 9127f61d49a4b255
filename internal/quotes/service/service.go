package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rental_quote_backend/internal/events"
	"rental_quote_backend/internal/location"
	"rental_quote_backend/internal/parsing"
	"rental_quote_backend/internal/pricing"
	"rental_quote_backend/internal/quotes/repository"
	"rental_quote_backend/internal/quotes/transport"
	"rental_quote_backend/internal/summary"
	"rental_quote_backend/platform/apperr"
	"rental_quote_backend/platform/config"
	"rental_quote_backend/platform/logger"
	"rental_quote_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Step kinds recorded in the audit log.
const (
	StepNormalize     = "normalize"
	StepFetchPolicies = "fetch_policies"
	StepPrice         = "price"
	StepGuardrails    = "guardrails"
	StepAISummary     = "ai_summary"
	StepDone          = "done"
	StepError         = "error"
	StepFeedbackApply = "feedback_apply"
)

const maxMessageRunes = 4000

// Options are the fallbacks and limits of the orchestrator.
type Options struct {
	FallbackDays   int
	FallbackSKU    string
	FallbackQty    int
	SummaryTimeout time.Duration
}

// OptionsConfig is the configuration the orchestrator reads.
type OptionsConfig interface {
	config.QuoteConfig
	GetSummaryTimeout() time.Duration
}

// OptionsFromConfig copies the orchestrator settings out of the app config.
func OptionsFromConfig(cfg OptionsConfig) Options {
	return Options{
		FallbackDays:   cfg.GetFallbackDays(),
		FallbackSKU:    cfg.GetFallbackSKU(),
		FallbackQty:    cfg.GetFallbackQty(),
		SummaryTimeout: cfg.GetSummaryTimeout(),
	}
}

func (o Options) withDefaults() Options {
	if o.FallbackDays < 1 {
		o.FallbackDays = parsing.DefaultFallbackDays
	}
	if strings.TrimSpace(o.FallbackSKU) == "" {
		o.FallbackSKU = "CHAIR-FOLD-WHT"
	}
	if o.FallbackQty < 1 {
		o.FallbackQty = 100
	}
	if o.SummaryTimeout <= 0 {
		o.SummaryTimeout = 8 * time.Second
	}
	return o
}

// Service runs the quote pipeline and serves run history.
type Service struct {
	catalog    CatalogStore
	audit      AuditLog
	summarizer Summarizer
	events     EventPublisher
	parser     *parsing.Catalog
	resolver   *location.Resolver
	opts       Options
	log        *logger.Logger
}

// New creates a quotes service using the embedded synonym catalog and location table.
func New(catalog CatalogStore, audit AuditLog, opts Options, log *logger.Logger) *Service {
	return &Service{
		catalog:  catalog,
		audit:    audit,
		parser:   parsing.DefaultCatalog(),
		resolver: location.NewResolver(nil, 0),
		opts:     opts.withDefaults(),
		log:      log,
	}
}

// SetSummarizer injects the summary provider. Nil keeps canned notes only.
func (s *Service) SetSummarizer(sum Summarizer) {
	s.summarizer = sum
}

// SetEventBus injects the event publisher.
func (s *Service) SetEventBus(pub EventPublisher) {
	s.events = pub
}

// normalized is the output of the normalize stage.
type normalized struct {
	Items        []pricing.Item        `json:"items"`
	Matched      []parsing.MatchedItem `json:"matched"`
	Unmatched    []parsing.MatchedItem `json:"unmatched"`
	Days         int                   `json:"days"`
	Location     location.Resolved     `json:"location"`
	UsedFallback bool                  `json:"usedFallback"`
	Notes        []string              `json:"notes"`
}

// Run executes the pipeline for one request and records every stage.
func (s *Service) Run(ctx context.Context, req transport.RunQuoteRequest) (*transport.RunQuoteResponse, error) {
	tier, err := resolveTier(req.CustomerTier)
	if err != nil {
		return nil, err
	}
	message := sanitize.Text(req.Message, maxMessageRunes)
	if message == "" && len(req.Items) == 0 {
		return nil, apperr.Validation("message or items is required")
	}

	runID, err := s.audit.StartRun(ctx, runInputText(message, tier, req), req.Seed)
	if err != nil {
		return nil, storeErr("failed to start run", err)
	}
	ctx = logger.ContextWithRunID(ctx, runID.String())

	doc, err := s.execute(ctx, runID, message, tier, req)
	if err != nil {
		appErr := classify(err)
		s.recordFailure(ctx, runID, req, err, appErr)
		return nil, appErr
	}

	if err := s.audit.FinishRun(ctx, runID, repository.RunStatusCompleted, decimal.Zero); err != nil {
		appErr := classify(storeErr("failed to finish run", err))
		s.recordFailure(ctx, runID, req, err, appErr)
		return nil, appErr
	}

	if s.events != nil {
		s.events.Publish(ctx, events.QuoteCompleted{
			BaseEvent: events.NewBaseEvent(),
			RunID:     runID,
			Tier:      tier,
			Total:     doc.Total,
			Days:      doc.Days,
			Location:  doc.Location.Final,
		})
	}

	return &transport.RunQuoteResponse{RunID: runID, Quote: *doc}, nil
}

func (s *Service) execute(ctx context.Context, runID uuid.UUID, message, tier string, req transport.RunQuoteRequest) (*transport.QuoteDocument, error) {
	var norm normalized
	err := s.stage(ctx, runID, StepNormalize, map[string]any{"request": req}, func() (any, error) {
		norm = s.normalize(message, req)
		return norm, nil
	})
	if err != nil {
		return nil, err
	}

	var policies pricing.Policies
	err = s.stage(ctx, runID, StepFetchPolicies, map[string]any{}, func() (any, error) {
		p, err := s.catalog.GetPolicies(ctx)
		if err != nil {
			return nil, storeErr("failed to load policies", err)
		}
		policies = p
		return p.Raw, nil
	})
	if err != nil {
		return nil, err
	}

	var quote *pricing.Quote
	priceInput := map[string]any{"items": norm.Items, "days": norm.Days, "tier": tier}
	err = s.stage(ctx, runID, StepPrice, priceInput, func() (any, error) {
		q, err := pricing.ComputeQuote(ctx, norm.Items, norm.Days, policies, tier, s.catalog)
		if err != nil {
			return nil, err
		}
		q.Notes = append(q.Notes, norm.Notes...)
		quote = q
		return q, nil
	})
	if err != nil {
		return nil, err
	}

	err = s.stage(ctx, runID, StepGuardrails, map[string]any{}, func() (any, error) {
		if err := pricing.CheckGuardrails(quote); err != nil {
			return nil, err
		}
		return quote, nil
	})
	if err != nil {
		return nil, err
	}

	doc := &transport.QuoteDocument{
		Quote:     *quote,
		Tier:      tier,
		Location:  norm.Location,
		Unmatched: norm.Unmatched,
		Language:  summary.BaseLanguage(req.Language),
		StartDate: strings.TrimSpace(req.StartDate),
		EndDate:   strings.TrimSpace(req.EndDate),
	}
	if doc.Unmatched == nil {
		doc.Unmatched = []parsing.MatchedItem{}
	}

	input := summary.Input{Language: doc.Language, Tier: tier, Location: doc.Location.Final, Quote: quote}
	err = s.stage(ctx, runID, StepAISummary, map[string]any{"language": doc.Language}, func() (any, error) {
		text, source, sumErr := s.summarize(ctx, input)
		doc.Summary = text
		doc.SummarySource = source
		out := map[string]any{"summary": text, "source": source}
		if sumErr != nil {
			out["error"] = sumErr.Error()
			out["code"] = apperr.CodeAIService
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.stage(ctx, runID, StepDone, map[string]any{}, func() (any, error) { return doc, nil }); err != nil {
		return nil, err
	}
	return doc, nil
}

// normalize resolves items, duration and location. Structured items win over
// the message; the message still feeds duration and location.
func (s *Service) normalize(message string, req transport.RunQuoteRequest) normalized {
	var matched []parsing.MatchedItem
	if len(req.Items) > 0 {
		matched = s.structuredItems(req.Items)
	} else {
		matched = s.parser.ParseItems(message)
	}

	n := normalized{
		Matched:   matched,
		Items:     []pricing.Item{},
		Unmatched: []parsing.MatchedItem{},
		Notes:     []string{},
	}
	for _, it := range matched {
		if it.Matched {
			n.Items = append(n.Items, pricing.Item{SKU: it.SKU, Quantity: it.Quantity})
			continue
		}
		n.Unmatched = append(n.Unmatched, it)
		label := it.UnmatchedName
		if label == "" {
			label = it.Source
		}
		n.Notes = append(n.Notes, fmt.Sprintf("Could not match '%s' to a catalog item.", label))
	}

	if len(n.Items) == 0 {
		n.Items = append(n.Items, pricing.Item{SKU: s.opts.FallbackSKU, Quantity: s.opts.FallbackQty})
		n.UsedFallback = true
		n.Notes = append(n.Notes, fmt.Sprintf("No catalog items recognized; quoted the default %d x %s.", s.opts.FallbackQty, s.opts.FallbackSKU))
	}

	n.Days = parsing.DurationDays(req.StartDate, req.EndDate, message, s.opts.FallbackDays)

	var meta *location.Meta
	if req.SelectedServiceLocationMeta != nil {
		meta = &location.Meta{
			Zone:   req.SelectedServiceLocationMeta.Zone,
			Region: req.SelectedServiceLocationMeta.Region,
		}
	}
	n.Location = s.resolver.Resolve(location.Request{
		Text:          message,
		Stated:        sanitize.Text(req.Location, 200),
		SelectedID:    req.SelectedServiceLocationID,
		SelectedLabel: sanitize.Text(req.SelectedServiceLocationLabel, 200),
		SelectedMeta:  meta,
		PostalCode:    req.Zip,
	})
	if n.Location.Conflict {
		n.Notes = append(n.Notes, n.Location.ConflictMessage)
	}
	return n
}

// structuredItems resolves request items: an explicit SKU is taken as is, a
// name goes through the matcher. Repeated SKUs are merged by summing quantities.
func (s *Service) structuredItems(items []transport.QuoteItemRequest) []parsing.MatchedItem {
	out := make([]parsing.MatchedItem, 0, len(items))
	position := make(map[string]int)
	for _, it := range items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		name := sanitize.Text(it.Name, 200)

		item := parsing.MatchedItem{Quantity: qty, Source: name}
		if sku := strings.TrimSpace(it.SKU); sku != "" {
			item.SKU = sku
			item.Confidence = 1
			item.Matched = true
			if item.Source == "" {
				item.Source = sku
			}
		} else if m := s.parser.Find(name, parsing.DefaultMinSimilarity); m.SKU != "" {
			item.SKU = m.SKU
			item.Confidence = m.Confidence
			item.Matched = true
		} else {
			item.UnmatchedName = parsing.Normalize(name)
			out = append(out, item)
			continue
		}

		if idx, seen := position[item.SKU]; seen {
			out[idx].Quantity += item.Quantity
			if item.Confidence > out[idx].Confidence {
				out[idx].Confidence = item.Confidence
			}
			continue
		}
		position[item.SKU] = len(out)
		out = append(out, item)
	}
	return out
}

// summarize never fails the run: any provider problem yields the canned note.
func (s *Service) summarize(ctx context.Context, input summary.Input) (string, string, error) {
	if s.summarizer == nil {
		return summary.FallbackNote(input), transport.SummarySourceFallback, nil
	}

	sumCtx, cancel := context.WithTimeout(ctx, s.opts.SummaryTimeout)
	defer cancel()

	text, err := s.summarizer.Summarize(sumCtx, input)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty summary")
	}
	if err != nil {
		s.log.WithContext(ctx).Warn("quote summary failed, using fallback note",
			"code", apperr.CodeAIService,
			"error", err,
		)
		return summary.FallbackNote(input), transport.SummarySourceFallback, err
	}
	return strings.TrimSpace(text), transport.SummarySourceAI, nil
}

// stageError tags a pipeline failure with the stage it happened in.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

// stage runs fn and records its step. A failing fn records nothing here;
// the caller writes the error step.
func (s *Service) stage(ctx context.Context, runID uuid.UUID, kind string, input any, fn func() (any, error)) error {
	start := time.Now()
	output, err := fn()
	took := time.Since(start)
	s.log.WithContext(ctx).QuoteStage(kind, took, err)
	if err != nil {
		return &stageError{stage: kind, err: err}
	}

	if err := s.audit.AddStep(ctx, runID, kind, input, output, took.Milliseconds()); err != nil {
		return &stageError{stage: kind, err: storeErr("failed to record step", err)}
	}
	return nil
}

// recordFailure writes the error step and closes the run as failed. It runs on
// a context detached from the request so a cancelled client still leaves a trace.
func (s *Service) recordFailure(ctx context.Context, runID uuid.UUID, req transport.RunQuoteRequest, err error, appErr *apperr.Error) {
	ctx = context.WithoutCancel(ctx)
	log := s.log.WithContext(ctx)

	stage := ""
	var se *stageError
	if errors.As(err, &se) {
		stage = se.stage
	}

	input := map[string]any{"stage": stage, "request": req}
	output := map[string]any{"error": err.Error(), "code": appErr.ErrorCode()}
	if stepErr := s.audit.AddStep(ctx, runID, StepError, input, output, 0); stepErr != nil {
		log.DatabaseError("add error step", stepErr)
	}
	if finishErr := s.audit.FinishRun(ctx, runID, repository.RunStatusFailed, decimal.Zero); finishErr != nil {
		log.DatabaseError("finish failed run", finishErr)
	}
}

// classify maps pipeline errors onto typed API errors.
func classify(err error) *apperr.Error {
	cause := err
	var se *stageError
	if errors.As(err, &se) {
		cause = se.err
	}

	var appErr *apperr.Error
	switch {
	case errors.As(cause, &appErr):
		return appErr
	case errors.Is(cause, pricing.ErrRateNotFound):
		return apperr.Wrap(apperr.KindUnprocessable, "no rate for requested item", cause).WithCode(apperr.CodeRateNotFound)
	case errors.Is(cause, pricing.ErrGuardrailViolation):
		return apperr.Wrap(apperr.KindUnprocessable, "quote rejected", cause).WithCode(apperr.CodeGuardrail)
	default:
		return apperr.Wrap(apperr.KindInternal, "quote generation failed", cause)
	}
}

// storeErr keeps typed errors from the store and marks anything else as unavailable.
func storeErr(message string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Unavailable(message, err)
}

// resolveTier applies the same rule as the request DTO: empty means C, and
// anything else must be exactly A, B or C.
func resolveTier(tier string) (string, error) {
	if tier == "" {
		return pricing.TierC, nil
	}
	if !pricing.ValidTier(tier) {
		return "", apperr.Validation("customerTier must be one of A, B, C").WithDetails(map[string]string{"customerTier": tier})
	}
	return tier, nil
}

// runInputText is the message, or a short synthesized line for structured requests.
func runInputText(message, tier string, req transport.RunQuoteRequest) string {
	if message != "" {
		return message
	}
	where := strings.TrimSpace(req.Location)
	if where == "" {
		where = strings.TrimSpace(req.Zip)
	}
	if where == "" {
		where = "unknown"
	}
	return strings.TrimSpace(fmt.Sprintf("tier %s in %s %s to %s", tier, where, req.StartDate, req.EndDate))
}
