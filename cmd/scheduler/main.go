package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rental_quote_backend/internal/adapters/storage"
	quotesrepo "rental_quote_backend/internal/quotes/repository"
	"rental_quote_backend/internal/quotes/service"
	"rental_quote_backend/internal/scheduler"
	"rental_quote_backend/platform/config"
	"rental_quote_backend/platform/db"
	"rental_quote_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	// Worker-side quote wiring (no HTTP handlers, no summaries).
	repo := quotesrepo.New(pool)
	catalog := quotesrepo.NewCatalogStore(repo, repo, nil, log)
	quoteSvc := service.New(catalog, repo, service.OptionsFromConfig(cfg), log)

	var storageSvc storage.StorageService
	if cfg.IsMinIOEnabled() {
		minio, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure quote-pdfs bucket", 5, 2*time.Second, func() error {
			return minio.EnsureBucketExists(ctx, cfg.GetMinioBucketQuotePDFs())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err)
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		storageSvc = minio
	} else {
		log.Warn("MINIO_ENDPOINT not configured; archive jobs will be acknowledged without upload")
	}

	worker, err := scheduler.NewWorker(cfg, quoteSvc, storageSvc, cfg.GetMinioBucketQuotePDFs(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	cleanup := scheduler.NewRunCleanup(repo, log, cfg.GetRunCleanupInterval(), cfg.GetRunRetention())
	if storageSvc != nil {
		cleanup.SetArchive(storageSvc, cfg.GetMinioBucketQuotePDFs())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cleanup.Run(gctx)
		return nil
	})
	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})
	_ = g.Wait()
	log.Info("scheduler stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
