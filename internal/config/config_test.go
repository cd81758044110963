package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "smartmatch")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("NEXTEN_URL", "http://nexten:5052")
	t.Setenv("V1_URL", "http://v1:5062")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if cfg.Breaker.FailureThreshold != 5 {
		t.Fatalf("expected default failure threshold 5, got %d", cfg.Breaker.FailureThreshold)
	}
	if cfg.Breaker.RecoveryTimeout != time.Minute {
		t.Fatalf("expected default recovery timeout 60s, got %s", cfg.Breaker.RecoveryTimeout)
	}
	if cfg.Selector.NextenMinScore != 80 {
		t.Fatalf("expected default min score 80, got %.1f", cfg.Selector.NextenMinScore)
	}
	if cfg.Backends.MaxRetries != 3 {
		t.Fatalf("expected default retries 3, got %d", cfg.Backends.MaxRetries)
	}
	if cfg.Backends.NextenTimeout != 30*time.Second || cfg.Backends.V1Timeout != 20*time.Second {
		t.Fatalf("unexpected backend timeouts: %+v", cfg.Backends)
	}
	if cfg.Cache.SelectionTTL != 30*time.Minute || cfg.Cache.ResultTTL != time.Hour || cfg.Cache.RequestTTL != 10*time.Minute {
		t.Fatalf("unexpected TTL defaults: %+v", cfg.Cache)
	}
	if !cfg.App.EnableCaching || !cfg.App.EnableFallback {
		t.Fatalf("caching and fallback must default on")
	}
	if cfg.Database.Enabled() {
		t.Fatalf("database must be disabled without DB_HOST")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CB_FAILURE_THRESHOLD", "3")
	t.Setenv("CB_RECOVERY_TIMEOUT_SECONDS", "10")
	t.Setenv("ENABLE_CACHING", "false")
	t.Setenv("DB_HOST", "localhost")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Breaker.FailureThreshold != 3 {
		t.Fatalf("expected threshold 3, got %d", cfg.Breaker.FailureThreshold)
	}
	if cfg.Breaker.RecoveryTimeout != 10*time.Second {
		t.Fatalf("expected 10s recovery, got %s", cfg.Breaker.RecoveryTimeout)
	}
	if cfg.App.EnableCaching {
		t.Fatalf("expected caching disabled")
	}
	if !cfg.Database.Enabled() {
		t.Fatalf("expected database enabled with DB_HOST set")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NEXTEN_URL", "")
	t.Setenv("V1_URL", "")

	_, err := Load()
	if !errors.Is(err, errMissingRequiredEnv) {
		t.Fatalf("expected missing-env error, got %v", err)
	}
	for _, key := range []string{"NEXTEN_URL", "V1_URL"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error must name %s, got %v", key, err)
		}
	}
}
