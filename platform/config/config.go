// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides operator token validation settings for middleware.
type JWTConfig interface {
	GetOperatorJWTSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// RedisConfig provides settings for the policy cache and the job queue.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetPolicyCacheTTL() time.Duration
	IsRedisEnabled() bool
}

// SchedulerConfig provides settings for the background worker.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueue() string
	GetAsynqConcurrency() int
	GetRunRetention() time.Duration
	GetRunCleanupInterval() time.Duration
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketQuotePDFs() string
	IsMinIOEnabled() bool
}

// SummaryConfig provides settings for the LLM quote summary.
type SummaryConfig interface {
	GetLLMProvider() string
	GetLLMModel() string
	GetMoonshotAPIKey() string
	GetOpenAIAPIKey() string
	GetOpenAIBaseURL() string
	GetSummaryTimeout() time.Duration
}

// QuoteConfig provides the fallbacks applied when a request carries too little detail.
type QuoteConfig interface {
	GetFallbackDays() int
	GetFallbackSKU() string
	GetFallbackQty() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	RateLimitRPS         float64
	RateLimitBurst       int
	OperatorJWTSecret    string
	RedisURL             string
	RedisTLSInsecure     bool
	PolicyCacheTTL       time.Duration
	AsynqQueue           string
	AsynqConcurrency     int
	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOUseSSL          bool
	MinioBucketQuotePDFs string
	LLMProvider          string
	LLMModel             string
	MoonshotAPIKey       string
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	SummaryTimeout       time.Duration
	FallbackDays         int
	FallbackSKU          string
	FallbackQty          int
	RunRetention         time.Duration
	RunCleanupInterval   time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetOperatorJWTSecret() string { return c.OperatorJWTSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// RedisConfig implementation
func (c *Config) GetRedisURL() string              { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool        { return c.RedisTLSInsecure }
func (c *Config) GetPolicyCacheTTL() time.Duration { return c.PolicyCacheTTL }
func (c *Config) IsRedisEnabled() bool             { return c.RedisURL != "" }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueue() string                { return c.AsynqQueue }
func (c *Config) GetAsynqConcurrency() int             { return c.AsynqConcurrency }
func (c *Config) GetRunRetention() time.Duration       { return c.RunRetention }
func (c *Config) GetRunCleanupInterval() time.Duration { return c.RunCleanupInterval }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string        { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string       { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string       { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool            { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketQuotePDFs() string { return c.MinioBucketQuotePDFs }
func (c *Config) IsMinIOEnabled() bool            { return c.MinIOEndpoint != "" }

// SummaryConfig implementation
func (c *Config) GetLLMProvider() string           { return c.LLMProvider }
func (c *Config) GetLLMModel() string              { return c.LLMModel }
func (c *Config) GetMoonshotAPIKey() string        { return c.MoonshotAPIKey }
func (c *Config) GetOpenAIAPIKey() string          { return c.OpenAIAPIKey }
func (c *Config) GetOpenAIBaseURL() string         { return c.OpenAIBaseURL }
func (c *Config) GetSummaryTimeout() time.Duration { return c.SummaryTimeout }

// QuoteConfig implementation
func (c *Config) GetFallbackDays() int   { return c.FallbackDays }
func (c *Config) GetFallbackSKU() string { return c.FallbackSKU }
func (c *Config) GetFallbackQty() int    { return c.FallbackQty }

// Supported LLM providers.
const (
	ProviderMoonshot = "moonshot"
	ProviderOpenAI   = "openai"
	ProviderNone     = "none"
)

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RateLimitRPS:         mustFloat(getEnv("RATE_LIMIT_RPS", "5")),
		RateLimitBurst:       mustInt(getEnv("RATE_LIMIT_BURST", "20")),
		OperatorJWTSecret:    getEnv("OPERATOR_JWT_SECRET", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisTLSInsecure:     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		PolicyCacheTTL:       mustDuration(getEnv("POLICY_CACHE_TTL", "5m")),
		AsynqQueue:           getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:     mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		MinIOEndpoint:        getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:       getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:       getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:          strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketQuotePDFs: getEnv("MINIO_BUCKET_QUOTE_PDFS", "quote-pdfs"),
		LLMProvider:          strings.ToLower(getEnv("LLM_PROVIDER", ProviderMoonshot)),
		LLMModel:             getEnv("LLM_MODEL", ""),
		MoonshotAPIKey:       getEnv("MOONSHOT_API_KEY", ""),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", ""),
		SummaryTimeout:       mustDuration(getEnv("SUMMARY_TIMEOUT", "8s")),
		FallbackDays:         mustInt(getEnv("QUOTE_FALLBACK_DAYS", "3")),
		FallbackSKU:          getEnv("QUOTE_FALLBACK_SKU", "CHAIR-FOLD-WHT"),
		FallbackQty:          mustInt(getEnv("QUOTE_FALLBACK_QTY", "100")),
		RunRetention:         time.Duration(mustInt(getEnv("RUN_RETENTION_DAYS", "90"))) * 24 * time.Hour,
		RunCleanupInterval:   mustDuration(getEnv("RUN_CLEANUP_INTERVAL", "6h")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	switch cfg.LLMProvider {
	case ProviderMoonshot, ProviderOpenAI, ProviderNone:
	default:
		return nil, fmt.Errorf("LLM_PROVIDER must be one of moonshot, openai, none (got %q)", cfg.LLMProvider)
	}
	if cfg.SummaryTimeout <= 0 {
		cfg.SummaryTimeout = 8 * time.Second
	}
	if cfg.FallbackDays < 1 {
		cfg.FallbackDays = 3
	}
	if cfg.FallbackQty < 1 {
		cfg.FallbackQty = 100
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
