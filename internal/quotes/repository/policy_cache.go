package repository

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rental_quote_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

const (
	policyCacheKey        = "rental_quote:policies"
	defaultPolicyCacheTTL = 5 * time.Minute
)

// PolicyCache keeps the raw policy documents in Redis for a short TTL.
type PolicyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPolicyCache connects to the configured Redis. It returns nil, nil when Redis is disabled.
func NewPolicyCache(cfg config.RedisConfig) (*PolicyCache, error) {
	if !cfg.IsRedisEnabled() {
		return nil, nil
	}
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return NewPolicyCacheWithClient(redis.NewClient(opt), cfg.GetPolicyCacheTTL()), nil
}

// NewPolicyCacheWithClient wraps an existing client.
func NewPolicyCacheWithClient(client *redis.Client, ttl time.Duration) *PolicyCache {
	if ttl <= 0 {
		ttl = defaultPolicyCacheTTL
	}
	return &PolicyCache{client: client, ttl: ttl}
}

// Get returns the cached documents and whether they were present.
func (c *PolicyCache) Get(ctx context.Context) (map[string]json.RawMessage, bool, error) {
	raw, err := c.client.Get(ctx, policyCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var docs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, false, fmt.Errorf("decode cached policies: %w", err)
	}
	return docs, true, nil
}

// Set stores docs until the TTL expires.
func (c *PolicyCache) Set(ctx context.Context, docs map[string]json.RawMessage) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode policies: %w", err)
	}
	return c.client.Set(ctx, policyCacheKey, raw, c.ttl).Err()
}

// Invalidate drops the cached documents.
func (c *PolicyCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, policyCacheKey).Err()
}

// Ping checks the Redis connection.
func (c *PolicyCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client.
func (c *PolicyCache) Close() error {
	return c.client.Close()
}
