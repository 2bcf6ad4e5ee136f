package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port     string
	LogLevel string

	JWTSecret   string
	JWTAudience string
	JWTIssuer   string
	TokenTTL    time.Duration

	WebhookBaseURL  string
	WebhookPath     string
	WebhookAudience string
	WebhookTimeout  time.Duration
	WebhookMaxBody  int
	PhoneRegion     string

	StorageDriver string
	SQLitePath    string
	DatabaseURL   string
	RedisURL      string
	LegacyOwnerID string

	CacheMaxAge     time.Duration
	HistoryLimit    int
	FetchMaxRetries int
	FetchRetryBase  time.Duration
	FetchRetryCap   time.Duration

	RateLimitSearch RateLimitConfig
	JanitorSchedule string
}

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// source resolves a key from the environment first, then from the optional config file.
type source struct {
	file map[string]string
}

// Load reads configuration from environment variables, an optional YAML file
// named by CONFIG_PATH, and applies sane defaults.
func Load() (*Config, error) {
	src := source{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		file, err := readFile(path)
		if err != nil {
			return nil, err
		}
		src.file = file
	}

	cfg := &Config{
		Port:     src.get("PORT", "8080"),
		LogLevel: src.get("LOG_LEVEL", "info"),

		JWTSecret:   src.get("JWT_SECRET", "dev-secret"),
		JWTAudience: src.get("JWT_AUDIENCE", ""),
		JWTIssuer:   src.get("JWT_ISSUER", ""),
		TokenTTL:    parseDuration(src.get("JWT_TTL", "24h"), 24*time.Hour),

		WebhookBaseURL:  src.get("WEBHOOK_BASE_URL", "http://localhost:5678"),
		WebhookPath:     src.get("WEBHOOK_PATH", "decisionfindr"),
		WebhookAudience: src.get("WEBHOOK_AUDIENCE", ""),
		WebhookTimeout:  parseDuration(src.get("WEBHOOK_TIMEOUT", "60s"), 60*time.Second),
		PhoneRegion:     strings.ToUpper(src.get("PHONE_REGION", "US")),

		StorageDriver: strings.ToLower(src.get("STORAGE_DRIVER", DriverSQLite)),
		SQLitePath:    src.get("SQLITE_PATH", "decisionfindr.db"),
		DatabaseURL:   src.get("DATABASE_URL", ""),
		RedisURL:      src.get("REDIS_URL", ""),
		LegacyOwnerID: strings.TrimSpace(src.get("LEGACY_OWNER_ID", "")),

		CacheMaxAge:    parseDuration(src.get("CACHE_MAX_AGE", "24h"), 24*time.Hour),
		FetchRetryBase: parseDuration(src.get("FETCH_RETRY_BASE", "1s"), time.Second),
		FetchRetryCap:  parseDuration(src.get("FETCH_RETRY_CAP", "30s"), 30*time.Second),

		JanitorSchedule: src.get("JANITOR_SCHEDULE", "@every 1h"),
	}

	var err error
	if cfg.HistoryLimit, err = parsePositiveInt(src.get("HISTORY_LIMIT", "50")); err != nil {
		return nil, fmt.Errorf("invalid HISTORY_LIMIT value: %w", err)
	}
	if cfg.WebhookMaxBody, err = parsePositiveInt(src.get("WEBHOOK_MAX_BODY_BYTES", "10485760")); err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_MAX_BODY_BYTES value: %w", err)
	}
	if cfg.FetchMaxRetries, err = strconv.Atoi(src.get("FETCH_MAX_RETRIES", "2")); err != nil || cfg.FetchMaxRetries < 0 {
		return nil, fmt.Errorf("invalid FETCH_MAX_RETRIES value: %q", src.get("FETCH_MAX_RETRIES", "2"))
	}

	rl, err := parseRateLimit(src.get("RATE_LIMIT_SEARCH", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SEARCH value: %w", err)
	}
	cfg.RateLimitSearch = rl

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER: %s", c.StorageDriver)
	}
	return nil
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	values := make(map[string]string, len(raw))
	for key, val := range raw {
		if val == nil {
			continue
		}
		values[strings.ToLower(strings.TrimSpace(key))] = fmt.Sprint(val)
	}
	return values, nil
}

func (s source) get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	if val, ok := s.file[strings.ToLower(key)]; ok && val != "" {
		return val
	}
	return fallback
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	return source{}.get(key, fallback)
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parsePositiveInt(input string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", v)
	}
	return v, nil
}
