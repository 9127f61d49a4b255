package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"rental_quote_backend/internal/adapters/storage"
	"rental_quote_backend/internal/pdf"
	"rental_quote_backend/internal/quotes/transport"
	"rental_quote_backend/platform/apperr"
	"rental_quote_backend/platform/config"
	"rental_quote_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// DocumentLoader returns the latest quote document of a run.
type DocumentLoader interface {
	LatestDocument(ctx context.Context, runID uuid.UUID) (*transport.QuoteDocument, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	docs   DocumentLoader
	store  storage.StorageService
	bucket string
	log    *logger.Logger
	now    func() time.Time
}

func NewWorker(cfg config.SchedulerConfig, docs DocumentLoader, store storage.StorageService, bucket string, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		docs:   docs,
		store:  store,
		bucket: bucket,
		log:    log,
		now:    time.Now,
	}

	mux.HandleFunc(TaskArchiveQuotePDF, w.handleArchiveQuotePDF)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleArchiveQuotePDF(ctx context.Context, task *asynq.Task) error {
	if w.store == nil {
		return nil
	}

	payload, err := ParseArchiveQuotePDFPayload(task)
	if err != nil {
		return fmt.Errorf("decode archive payload: %v: %w", err, asynq.SkipRetry)
	}

	runID, err := uuid.Parse(payload.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", payload.RunID, asynq.SkipRetry)
	}

	doc, err := w.docs.LatestDocument(ctx, runID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			w.log.Warn("skipping pdf archive for missing run", "runId", runID)
			return nil
		}
		return err
	}

	data, err := pdf.GenerateQuotePDF(pdf.QuotePDFData{
		RunID:       runID.String(),
		GeneratedAt: w.now(),
		Quote:       *doc,
	})
	if err != nil {
		return fmt.Errorf("render quote pdf: %w", err)
	}

	key := storage.QuotePDFKey(runID)
	if err := w.store.PutObject(ctx, w.bucket, key, storage.ContentTypePDF, bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("upload quote pdf: %w", err)
	}

	w.log.Info("quote pdf archived", "runId", runID, "key", key, "bytes", len(data))
	return nil
}
