package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rental_quote_backend/internal/adapters/storage"
	"rental_quote_backend/internal/events"
	apphttp "rental_quote_backend/internal/http"
	"rental_quote_backend/internal/http/router"
	"rental_quote_backend/internal/inventory"
	"rental_quote_backend/internal/quotes"
	quotesrepo "rental_quote_backend/internal/quotes/repository"
	"rental_quote_backend/internal/quotes/service"
	"rental_quote_backend/internal/scheduler"
	"rental_quote_backend/internal/summary"
	"rental_quote_backend/platform/config"
	"rental_quote_backend/platform/db"
	"rental_quote_backend/platform/logger"
	"rental_quote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const storageBucketEnsureErrPrefix = "failed to ensure storage bucket exists: "
const storageBucketEnsureErrMsg = "failed to ensure storage bucket exists"

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error(storageBucketEnsureErrMsg, "error", err, "bucket", bucket)
		panic(storageBucketEnsureErrPrefix + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	policyCache := initPolicyCache(cfg, log)
	if policyCache != nil {
		defer func() { _ = policyCache.Close() }()
	}

	archiver, closeArchiver := initArchiveClient(cfg, log)
	if closeArchiver != nil {
		defer closeArchiver()
	}
	if archiver != nil {
		scheduler.NewArchiveDispatcher(archiver, log).RegisterHandlers(eventBus)
	}
	// Runs before the closes deferred above, so in-flight handlers can still enqueue.
	defer eventBus.Wait()

	// Shared validator instance for dependency injection
	val := validator.New()

	summarizer, err := summary.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize summary provider", "error", err)
		panic("failed to initialize summary provider: " + err.Error())
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	quotesModule := quotes.NewModule(pool, policyCache, eventBus, val, service.OptionsFromConfig(cfg), log)
	if summarizer != nil {
		quotesModule.SetSummarizer(summarizer)
		log.Info("quote summaries enabled", "provider", cfg.GetLLMProvider(), "model", cfg.GetLLMModel())
	}

	// Archived PDFs are optional; on-the-fly rendering works without MinIO.
	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		ensureBucket(ctx, log, storageSvc, "quote-pdfs", cfg.GetMinioBucketQuotePDFs())
		quotesModule.SetStorageForPDF(storageSvc, cfg.GetMinioBucketQuotePDFs())
		log.Info("storage service initialized", "quotePDFsBucket", cfg.GetMinioBucketQuotePDFs())
	}

	inventoryModule := inventory.NewModule(pool, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			quotesModule,
			inventoryModule,
		},
	}
	if policyCache != nil {
		app.Cache = policyCache
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initPolicyCache(cfg config.RedisConfig, log *logger.Logger) *quotesrepo.PolicyCache {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; policy cache disabled")
		return nil
	}

	cache, err := quotesrepo.NewPolicyCache(cfg)
	if err != nil {
		log.Error("failed to initialize policy cache", "error", err)
		return nil
	}
	return cache
}

func initArchiveClient(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.PDFArchiver, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; quote PDF archiving disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize archive scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
