package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("WEBHOOK_BASE_URL", "http://n8n")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("RATE_LIMIT_SEARCH", "10/min")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("HISTORY_LIMIT", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JWTSecret != "super-secret" || cfg.Port != "9000" || cfg.WebhookBaseURL != "http://n8n" {
		t.Fatalf("unexpected config values: %+v", cfg)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Fatalf("expected token ttl 2h, got %s", cfg.TokenTTL)
	}
	if cfg.RateLimitSearch.Requests != 10 || cfg.RateLimitSearch.Interval != time.Minute {
		t.Fatalf("unexpected rate limit config: %+v", cfg.RateLimitSearch)
	}
	if cfg.HistoryLimit != 25 {
		t.Fatalf("expected history limit 25, got %d", cfg.HistoryLimit)
	}
	if cfg.WebhookMaxBody != 10<<20 {
		t.Fatalf("expected 10 MiB webhook body cap, got %d", cfg.WebhookMaxBody)
	}
	if cfg.LegacyOwnerID != "" {
		t.Fatalf("expected legacy migration disabled by default, got owner %q", cfg.LegacyOwnerID)
	}
	if cfg.CacheMaxAge != 24*time.Hour || cfg.FetchMaxRetries != 2 || cfg.FetchRetryBase != time.Second || cfg.FetchRetryCap != 30*time.Second {
		t.Fatalf("unexpected cache defaults: %+v", cfg)
	}

	// invalid rate limit should error
	t.Setenv("RATE_LIMIT_SEARCH", "xyz")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid rate limit")
	}
}

func TestLoad_StorageValidation(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	os.Unsetenv("DATABASE_URL")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when postgres driver has no DATABASE_URL")
	}

	t.Setenv("STORAGE_DRIVER", "redis")
	os.Unsetenv("REDIS_URL")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when redis driver has no REDIS_URL")
	}

	t.Setenv("STORAGE_DRIVER", "cassandra")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: 7070\nwebhook_path: prospects\nstorage_driver: memory\nhistory_limit: 10\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("WEBHOOK_PATH", "from-env")
	os.Unsetenv("PORT")
	os.Unsetenv("STORAGE_DRIVER")
	os.Unsetenv("HISTORY_LIMIT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7070" {
		t.Fatalf("expected port from file, got %s", cfg.Port)
	}
	if cfg.WebhookPath != "from-env" {
		t.Fatalf("expected env to override file, got %s", cfg.WebhookPath)
	}
	if cfg.StorageDriver != DriverMemory || cfg.HistoryLimit != 10 {
		t.Fatalf("unexpected values from file: %+v", cfg)
	}

	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestParseRateLimit(t *testing.T) {
	cfg, err := parseRateLimit("5/sec")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Requests != 5 || cfg.Interval != time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := parseRateLimit("bad-format"); err == nil {
		t.Fatalf("expected error for malformed value")
	}
	if _, err := parseRateLimit("0/min"); err == nil {
		t.Fatalf("expected error for zero requests")
	}
	if _, err := parseRateLimit("5/day"); err == nil {
		t.Fatalf("expected error for unsupported unit")
	}
}

func TestGetEnv(t *testing.T) {
	os.Unsetenv("FOO")
	if val := getEnv("FOO", "fallback"); val != "fallback" {
		t.Fatalf("expected fallback, got %s", val)
	}
	t.Setenv("FOO", "value")
	if val := getEnv("FOO", "fallback"); val != "value" {
		t.Fatalf("expected env value, got %s", val)
	}
}

func TestParseDuration(t *testing.T) {
	if parseDuration("3h", time.Hour) != 3*time.Hour {
		t.Fatalf("expected 3h duration")
	}
	if parseDuration("invalid", 24*time.Hour) != 24*time.Hour {
		t.Fatalf("expected fallback duration")
	}
	if parseDuration("-1s", time.Minute) != time.Minute {
		t.Fatalf("expected fallback for negative duration")
	}
}
