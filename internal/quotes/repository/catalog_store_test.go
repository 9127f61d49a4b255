package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"rental_quote_backend/internal/pricing"
	"rental_quote_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type countingPolicies struct {
	calls int
	docs  map[string]json.RawMessage
	err   error
}

func (p *countingPolicies) PolicyDocuments(context.Context) (map[string]json.RawMessage, error) {
	p.calls++
	return p.docs, p.err
}

type noRates struct{}

func (noRates) GetRate(_ context.Context, sku string) (pricing.Rate, error) {
	return pricing.Rate{}, pricing.ErrRateNotFound
}

func (noRates) GetItemName(_ context.Context, sku string) (string, error) { return sku, nil }

func seededPolicies() map[string]json.RawMessage {
	return map[string]json.RawMessage{
		pricing.PolicyTaxRate:       json.RawMessage(`{"pct": 8.25}`),
		pricing.PolicyDamageWaiver:  json.RawMessage(`{"pct": 8.0}`),
		pricing.PolicyTierDiscounts: json.RawMessage(`{"A": {"pct": 10}, "B": {"pct": 5}, "C": {"pct": 0}}`),
	}
}

func newTestCache(t *testing.T) (*PolicyCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPolicyCacheWithClient(client, time.Minute), mr
}

func TestCatalogStore_GetPoliciesReadsThroughCache(t *testing.T) {
	cache, mr := newTestCache(t)
	source := &countingPolicies{docs: seededPolicies()}
	store := NewCatalogStore(source, noRates{}, cache, logger.Discard())
	ctx := context.Background()

	first, err := store.GetPolicies(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.GetPolicies(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected one database load, got %d", source.calls)
	}
	if !first.TaxPct.Equal(decimal.RequireFromString("8.25")) || !second.DiscountPct("A").Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected policies: %+v / %+v", first, second)
	}
	if !mr.Exists(policyCacheKey) {
		t.Fatalf("expected cache key to be written")
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.GetPolicies(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected reload after ttl, got %d loads", source.calls)
	}
}

func TestCatalogStore_CacheOutageFallsBackToDatabase(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()
	source := &countingPolicies{docs: seededPolicies()}
	store := NewCatalogStore(source, noRates{}, cache, logger.Discard())

	p, err := store.GetPolicies(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.DamageWaiverPct.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("unexpected waiver pct %s", p.DamageWaiverPct)
	}
}

func TestCatalogStore_SourceErrorIsReturned(t *testing.T) {
	source := &countingPolicies{err: errors.New("db down")}
	store := NewCatalogStore(source, noRates{}, nil, logger.Discard())
	if _, err := store.GetPolicies(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPolicyCache_Invalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	if err := cache.Set(ctx, seededPolicies()); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, err := cache.Get(ctx); err != nil || ok {
		t.Fatalf("expected miss after invalidate, ok=%v err=%v", ok, err)
	}
}
