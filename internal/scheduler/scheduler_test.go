package scheduler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"rental_quote_backend/internal/adapters/storage"
	"rental_quote_backend/internal/events"
	"rental_quote_backend/internal/location"
	"rental_quote_backend/internal/pricing"
	"rental_quote_backend/internal/quotes/transport"
	"rental_quote_backend/platform/apperr"
	"rental_quote_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

type recordingArchiver struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (r *recordingArchiver) EnqueueQuotePDFArchive(_ context.Context, runID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, runID)
	return nil
}

type stubDocs struct {
	doc *transport.QuoteDocument
	err error
}

func (s stubDocs) LatestDocument(context.Context, uuid.UUID) (*transport.QuoteDocument, error) {
	return s.doc, s.err
}

type memoryStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStore) EnsureBucketExists(context.Context, string) error { return nil }

func (m *memoryStore) PutObject(_ context.Context, bucket, key, contentType string, reader io.Reader, _ int64) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.objects[bucket+"/"+key] = data
	m.types[bucket+"/"+key] = contentType
	return nil
}

func (m *memoryStore) ObjectExists(_ context.Context, bucket, key string) (bool, error) {
	_, ok := m.objects[bucket+"/"+key]
	return ok, nil
}

func (m *memoryStore) GenerateDownloadURL(context.Context, string, string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "http://minio.local/x", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (m *memoryStore) DeleteObject(_ context.Context, bucket, key string) error {
	delete(m.objects, bucket+"/"+key)
	return nil
}

type stubPruner struct {
	cutoff  time.Time
	calls   int
	deleted []uuid.UUID
}

func (s *stubPruner) DeleteRunsBefore(_ context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	s.cutoff = cutoff
	s.calls++
	return s.deleted, nil
}

func sampleDoc() *transport.QuoteDocument {
	d := func(s string) pricing.Money { return pricing.NewMoney(decimal.RequireFromString(s)) }
	return &transport.QuoteDocument{
		Quote: pricing.Quote{
			Items:    []pricing.LineItem{{SKU: "CHAIR-FOLD-WHT", Name: "White Folding Chair", Qty: 10, DailyRate: d("2.50"), UnitPrice: d("2.50"), Subtotal: d("25.00")}},
			Subtotal: d("25.00"),
			Tax:      d("2.06"),
			Total:    d("27.06"),
			Days:     1,
		},
		Tier:     "C",
		Location: location.Resolved{Final: "Dallas, TX"},
	}
}

func archiveTask(t *testing.T, runID string) *asynq.Task {
	t.Helper()
	task, err := NewArchiveQuotePDFTask(ArchiveQuotePDFPayload{RunID: runID})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	return task
}

func TestArchiveDispatcher_QueuesCompletedAndGoodwillRuns(t *testing.T) {
	bus := events.NewInMemoryBus(logger.Discard())
	archiver := &recordingArchiver{}
	NewArchiveDispatcher(archiver, logger.Discard()).RegisterHandlers(bus)

	completed := uuid.New()
	goodwill := uuid.New()
	bus.Publish(context.Background(), events.QuoteCompleted{BaseEvent: events.NewBaseEvent(), RunID: completed})
	bus.Publish(context.Background(), events.FeedbackApplied{BaseEvent: events.NewBaseEvent(), RunID: goodwill, Rating: 2, GoodwillApplied: true})
	bus.Publish(context.Background(), events.FeedbackApplied{BaseEvent: events.NewBaseEvent(), RunID: uuid.New(), Rating: 5})
	bus.Wait()

	if len(archiver.ids) != 2 {
		t.Fatalf("expected 2 archive jobs, got %v", archiver.ids)
	}
	seen := map[uuid.UUID]bool{}
	for _, id := range archiver.ids {
		seen[id] = true
	}
	if !seen[completed] || !seen[goodwill] {
		t.Fatalf("unexpected archived runs %v", archiver.ids)
	}
}

func TestHandleArchiveQuotePDF_UploadsRenderedPDF(t *testing.T) {
	store := newMemoryStore()
	w := &Worker{docs: stubDocs{doc: sampleDoc()}, store: store, bucket: "quote-pdfs", log: logger.Discard(), now: time.Now}
	runID := uuid.New()

	if err := w.handleArchiveQuotePDF(context.Background(), archiveTask(t, runID.String())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key := "quote-pdfs/" + storage.QuotePDFKey(runID)
	data, ok := store.objects[key]
	if !ok {
		t.Fatalf("expected object at %s", key)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF content")
	}
	if store.types[key] != storage.ContentTypePDF {
		t.Fatalf("unexpected content type %q", store.types[key])
	}
}

func TestHandleArchiveQuotePDF_InvalidRunIDSkipsRetry(t *testing.T) {
	w := &Worker{docs: stubDocs{doc: sampleDoc()}, store: newMemoryStore(), log: logger.Discard(), now: time.Now}
	err := w.handleArchiveQuotePDF(context.Background(), archiveTask(t, "nope"))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestHandleArchiveQuotePDF_MissingRunIsDropped(t *testing.T) {
	store := newMemoryStore()
	w := &Worker{docs: stubDocs{err: apperr.NotFound("run not found")}, store: store, log: logger.Discard(), now: time.Now}
	if err := w.handleArchiveQuotePDF(context.Background(), archiveTask(t, uuid.NewString())); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if len(store.objects) != 0 {
		t.Fatalf("expected no uploads")
	}
}

func TestHandleArchiveQuotePDF_StoreOutageRetries(t *testing.T) {
	w := &Worker{docs: stubDocs{err: apperr.Unavailable("db down", errors.New("conn refused"))}, store: newMemoryStore(), log: logger.Discard(), now: time.Now}
	err := w.handleArchiveQuotePDF(context.Background(), archiveTask(t, uuid.NewString()))
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestRunCleanup_UsesRetentionCutoff(t *testing.T) {
	pruner := &stubPruner{}
	c := NewRunCleanup(pruner, logger.Discard(), time.Minute, 48*time.Hour)
	fixed := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Run(ctx)

	if pruner.calls != 1 {
		t.Fatalf("expected one sweep, got %d", pruner.calls)
	}
	if want := fixed.Add(-48 * time.Hour); !pruner.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %v, got %v", want, pruner.cutoff)
	}
}

func TestRunCleanup_RemovesArchivedPDFs(t *testing.T) {
	old := uuid.New()
	kept := uuid.New()
	store := newMemoryStore()
	store.objects["quote-pdfs/"+storage.QuotePDFKey(old)] = []byte("%PDF")
	store.objects["quote-pdfs/"+storage.QuotePDFKey(kept)] = []byte("%PDF")

	c := NewRunCleanup(&stubPruner{deleted: []uuid.UUID{old}}, logger.Discard(), time.Minute, time.Hour)
	c.SetArchive(store, "quote-pdfs")
	c.cleanup(context.Background())

	if _, ok := store.objects["quote-pdfs/"+storage.QuotePDFKey(old)]; ok {
		t.Fatalf("expected archived pdf of deleted run to be removed")
	}
	if _, ok := store.objects["quote-pdfs/"+storage.QuotePDFKey(kept)]; !ok {
		t.Fatalf("expected other pdfs to stay")
	}
}

func TestNewRunCleanup_Defaults(t *testing.T) {
	c := NewRunCleanup(&stubPruner{}, logger.Discard(), 0, -1)
	if c.interval != defaultRunCleanupInterval || c.retention != defaultRunRetention {
		t.Fatalf("unexpected defaults %v %v", c.interval, c.retention)
	}
}
