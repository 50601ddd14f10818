// Package config loads and validates all environment variables at startup.
// Every other package receives typed values; nothing else reads os.Getenv.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port     string     // default "8080"
	Env      string     // "development" | "staging" | "production"
	LogLevel slog.Level // default debug outside production, info in production

	// ── Engine ────────────────────────────────────────────────────────────────
	// Empty paths select the built-in catalogue and tables.
	CatalogPath string
	TablesPath  string

	// ClampMultiSelect truncates multi-select answers to the question's cap
	// before validation, as the questionnaire UI does. Default true.
	ClampMultiSelect bool

	// DateLocation is the zone used for the creation date stamped on
	// documents. Default time.Local.
	DateLocation *time.Location

	// ── Cache ─────────────────────────────────────────────────────────────────
	// Optional. When REDIS_URL is empty, rendered documents are not cached.
	RedisURL string
	CacheTTL time.Duration // default 1h

	// ── Worker ────────────────────────────────────────────────────────────────
	WorkerCount int           // default 4
	JobTimeout  time.Duration // default 30s
}

var validEnvs = map[string]bool{"development": true, "staging": true, "production": true}

// Load reads all environment variables and returns a validated Config.
// It loads a .env file from the working directory when present, so plain
// `go run ./cmd/api` works in development without any wrapper. Real
// environment variables always take precedence over .env values.
func Load() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load(".env")

	var errs []error

	c := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		CatalogPath:      os.Getenv("CATALOG_PATH"),
		TablesPath:       os.Getenv("TABLES_PATH"),
		ClampMultiSelect: getEnvAsBool("CLAMP_MULTI_SELECT", true),
		RedisURL:         os.Getenv("REDIS_URL"),
		CacheTTL:         getEnvAsDuration("CACHE_TTL", time.Hour),
		WorkerCount:      getEnvAsInt("WORKER_COUNT", 4),
		JobTimeout:       getEnvAsDuration("JOB_TIMEOUT", 30*time.Second),
	}

	defaultLevel := slog.LevelDebug
	if c.Env == "production" {
		defaultLevel = slog.LevelInfo
	}
	level, err := parseLevel(os.Getenv("LOG_LEVEL"), defaultLevel)
	if err != nil {
		errs = append(errs, err)
	}
	c.LogLevel = level

	loc, err := loadLocation(os.Getenv("DATE_TZ"))
	if err != nil {
		errs = append(errs, err)
	}
	c.DateLocation = loc

	errs = append(errs, c.validate())
	return c, errors.Join(errs...)
}

func (c *Config) validate() error {
	var errs []error

	if !validEnvs[c.Env] {
		errs = append(errs, fmt.Errorf("ENV must be one of development, staging, production; got %q", c.Env))
	}
	if c.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("WORKER_COUNT must be >= 1, got %d", c.WorkerCount))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL))
	}
	if c.JobTimeout <= 0 {
		errs = append(errs, fmt.Errorf("JOB_TIMEOUT must be positive, got %s", c.JobTimeout))
	}
	if c.RedisURL != "" && !strings.HasPrefix(c.RedisURL, "redis://") && !strings.HasPrefix(c.RedisURL, "rediss://") {
		errs = append(errs, fmt.Errorf("REDIS_URL must start with redis:// or rediss://"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the JSON log handler should be used.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// A plain integer is seconds.
	if value, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(value) * time.Second
	}
	// Fall back to Go duration syntax: "30s", "5m", "1h", etc.
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseLevel(s string, defaultLevel slog.Level) (slog.Level, error) {
	if s == "" {
		return defaultLevel, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return defaultLevel, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local, fmt.Errorf("DATE_TZ: %w", err)
	}
	return loc, nil
}
