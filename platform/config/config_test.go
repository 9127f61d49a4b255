package config

import (
	"testing"
	"time"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is empty")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/quotes")
	t.Setenv("CORS_ORIGINS", "http://localhost:4200")
	t.Setenv("CORS_ALLOW_ALL", "false")
	t.Setenv("LLM_PROVIDER", "none")
	t.Setenv("SUMMARY_TIMEOUT", "")
	t.Setenv("QUOTE_FALLBACK_DAYS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetSummaryTimeout() != 8*time.Second {
		t.Fatalf("expected 8s summary timeout, got %s", cfg.GetSummaryTimeout())
	}
	if cfg.GetFallbackDays() != 3 {
		t.Fatalf("expected fallback days 3, got %d", cfg.GetFallbackDays())
	}
	if cfg.IsRedisEnabled() && cfg.GetRedisURL() == "" {
		t.Fatalf("redis reported enabled without url")
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/quotes")
	t.Setenv("LLM_PROVIDER", "bard")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestLoadWildcardOriginRejectsCredentials(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/quotes")
	t.Setenv("LLM_PROVIDER", "none")
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for wildcard origins with credentials")
	}
}
