// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"

	"github.com/pkordes/riderent/backend/internal/domain"
)

// History storage backends.
const (
	HistoryMemory   = "memory"
	HistoryRedis    = "redis"
	HistoryPostgres = "postgres"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (local web client).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// APIBaseURL is the rental platform API that owns cities and vehicles. Required.
	APIBaseURL string

	// SearchVariant selects the search flow: "dated" (city and dates) or
	// "city-only". Defaults to dated.
	SearchVariant domain.SearchVariant

	// Timezone is the IANA zone "today" is evaluated in. Defaults to Asia/Jakarta.
	Timezone *time.Location

	// SessionTTL is how long an idle search session survives. Defaults to 30m.
	SessionTTL time.Duration

	// CityFetchTimeout bounds the city catalog request made per session. Defaults to 10s.
	CityFetchTimeout time.Duration

	// HistoryBackend is one of memory, redis, postgres. Defaults to memory.
	HistoryBackend string

	// RedisURL is required when HistoryBackend is redis.
	RedisURL string

	// DatabaseURL is the Postgres connection string, required when
	// HistoryBackend is postgres.
	DatabaseURL string

	// RateLimitRPS and RateLimitBurst shape the per-IP token bucket.
	RateLimitRPS   float64
	RateLimitBurst int

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is read first when present; real
// environment variables win over it. Returns one error listing every
// required variable that is not set and every value that does not parse.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: reading .env: %w", err)
	}

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		APIBaseURL:     os.Getenv("API_BASE_URL"),
		HistoryBackend: strings.ToLower(getEnv("HISTORY_BACKEND", HistoryMemory)),
		RedisURL:       os.Getenv("REDIS_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
	}

	var missing, invalid []string

	if cfg.APIBaseURL == "" {
		missing = append(missing, "API_BASE_URL")
	}

	switch cfg.HistoryBackend {
	case HistoryMemory:
	case HistoryRedis:
		if cfg.RedisURL == "" {
			missing = append(missing, "REDIS_URL")
		}
	case HistoryPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		invalid = append(invalid, "HISTORY_BACKEND")
	}

	var err error
	if cfg.SearchVariant, err = domain.ParseSearchVariant(getEnv("SEARCH_VARIANT", string(domain.VariantDated))); err != nil {
		invalid = append(invalid, "SEARCH_VARIANT")
	}
	if cfg.Timezone, err = time.LoadLocation(getEnv("TIMEZONE", "Asia/Jakarta")); err != nil {
		invalid = append(invalid, "TIMEZONE")
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 30*time.Minute); err != nil {
		invalid = append(invalid, "SESSION_TTL")
	}
	if cfg.CityFetchTimeout, err = durationEnv("CITY_FETCH_TIMEOUT", 10*time.Second); err != nil {
		invalid = append(invalid, "CITY_FETCH_TIMEOUT")
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "10"), 64); err != nil || cfg.RateLimitRPS <= 0 {
		invalid = append(invalid, "RATE_LIMIT_RPS")
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20")); err != nil || cfg.RateLimitBurst < 1 {
		invalid = append(invalid, "RATE_LIMIT_BURST")
	}
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil || cfg.MaxBodyBytes < 1 {
		invalid = append(invalid, "MAX_BODY_BYTES")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid environment variables: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
