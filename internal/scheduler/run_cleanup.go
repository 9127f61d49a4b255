package scheduler

import (
	"context"
	"time"

	"rental_quote_backend/internal/adapters/storage"
	"rental_quote_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultRunCleanupInterval = time.Hour
	defaultRunRetention       = 30 * 24 * time.Hour
)

// RunPruner deletes finished runs older than a cutoff.
type RunPruner interface {
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

// RunCleanup periodically removes old finished quote runs, their steps and
// their archived PDFs.
type RunCleanup struct {
	repo      RunPruner
	store     storage.StorageService
	bucket    string
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewRunCleanup(repo RunPruner, log *logger.Logger, interval, retention time.Duration) *RunCleanup {
	if interval <= 0 {
		interval = defaultRunCleanupInterval
	}
	if retention <= 0 {
		retention = defaultRunRetention
	}

	return &RunCleanup{
		repo:      repo,
		log:       log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

// SetArchive makes the sweep also delete archived PDFs of removed runs.
func (c *RunCleanup) SetArchive(store storage.StorageService, bucket string) {
	c.store = store
	c.bucket = bucket
}

func (c *RunCleanup) Run(ctx context.Context) {
	if c == nil || c.repo == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *RunCleanup) cleanup(ctx context.Context) {
	cutoff := c.now().Add(-c.retention)

	deleted, err := c.repo.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		c.log.Warn("run cleanup failed", "error", err)
		return
	}
	if len(deleted) == 0 {
		return
	}

	removedPDFs := 0
	if c.store != nil {
		for _, id := range deleted {
			if err := c.store.DeleteObject(ctx, c.bucket, storage.QuotePDFKey(id)); err != nil {
				c.log.Warn("failed to delete archived pdf", "runId", id, "error", err)
				continue
			}
			removedPDFs++
		}
	}

	c.log.Info("run cleanup deleted finished runs", "deleted", len(deleted), "pdfs", removedPDFs, "cutoff", cutoff)
}
