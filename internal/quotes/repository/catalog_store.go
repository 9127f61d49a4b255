package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rental_quote_backend/internal/pricing"
	"rental_quote_backend/platform/apperr"
	"rental_quote_backend/platform/logger"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PolicyDocuments loads every stored policy as raw JSON keyed by name.
func (r *Repository) PolicyDocuments(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := r.pool.Query(ctx, `SELECT key_name, value_json FROM policies`)
	if err != nil {
		return nil, apperr.Unavailable("failed to query policies", err)
	}
	defer rows.Close()

	docs := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		docs[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("failed to iterate policies", err)
	}
	return docs, nil
}

// GetRate returns the pricing record of sku, or pricing.ErrRateNotFound.
func (r *Repository) GetRate(ctx context.Context, sku string) (pricing.Rate, error) {
	var daily, delivery string
	query := `SELECT daily_rate::text, delivery_fee_base::text FROM rates WHERE sku = $1`
	if err := r.pool.QueryRow(ctx, query, sku).Scan(&daily, &delivery); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.Rate{}, fmt.Errorf("%w: %s", pricing.ErrRateNotFound, sku)
		}
		return pricing.Rate{}, apperr.Unavailable("failed to get rate", err)
	}

	dailyRate, err := decimal.NewFromString(daily)
	if err != nil {
		return pricing.Rate{}, fmt.Errorf("parse daily rate for %s: %w", sku, err)
	}
	deliveryFee, err := decimal.NewFromString(delivery)
	if err != nil {
		return pricing.Rate{}, fmt.Errorf("parse delivery fee for %s: %w", sku, err)
	}
	return pricing.Rate{SKU: sku, DailyRate: dailyRate, DeliveryFeeBase: deliveryFee}, nil
}

// GetItemName returns the inventory display name, or sku when unknown.
func (r *Repository) GetItemName(ctx context.Context, sku string) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT name FROM inventory WHERE sku = $1`, sku).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sku, nil
		}
		return "", apperr.Unavailable("failed to get item name", err)
	}
	return name, nil
}

// PolicySource loads raw policy documents.
type PolicySource interface {
	PolicyDocuments(ctx context.Context) (map[string]json.RawMessage, error)
}

// RateLookup is the rate half of the catalog.
type RateLookup interface {
	GetRate(ctx context.Context, sku string) (pricing.Rate, error)
	GetItemName(ctx context.Context, sku string) (string, error)
}

// CatalogStore serves policies (optionally through the Redis cache), rates and names.
type CatalogStore struct {
	policies PolicySource
	rates    RateLookup
	cache    *PolicyCache
	log      *logger.Logger
}

// NewCatalogStore wires the catalog. cache may be nil.
func NewCatalogStore(policies PolicySource, rates RateLookup, cache *PolicyCache, log *logger.Logger) *CatalogStore {
	return &CatalogStore{policies: policies, rates: rates, cache: cache, log: log}
}

// GetPolicies reads through the cache. Cache failures are logged and bypassed.
func (s *CatalogStore) GetPolicies(ctx context.Context) (pricing.Policies, error) {
	if s.cache != nil {
		docs, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.WithContext(ctx).Warn("policy cache read failed", "error", err)
		} else if ok {
			return pricing.ParsePolicies(docs)
		}
	}

	docs, err := s.policies.PolicyDocuments(ctx)
	if err != nil {
		return pricing.Policies{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, docs); err != nil {
			s.log.WithContext(ctx).Warn("policy cache write failed", "error", err)
		}
	}
	return pricing.ParsePolicies(docs)
}

// GetRate delegates to the rate lookup.
func (s *CatalogStore) GetRate(ctx context.Context, sku string) (pricing.Rate, error) {
	return s.rates.GetRate(ctx, sku)
}

// GetItemName delegates to the rate lookup.
func (s *CatalogStore) GetItemName(ctx context.Context, sku string) (string, error) {
	return s.rates.GetItemName(ctx, sku)
}

var _ pricing.RateSource = (*CatalogStore)(nil)
