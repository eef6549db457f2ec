package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment       string
	LogLevel          string
	MetricsAddr       string // empty disables the metrics listener
	SnapshotBackend   string // "badger" or "redis"
	BadgerDir         string
	RedisURL          string
	RateLimitMax      int
	RateLimitWindow   time.Duration
	OracleCacheTTL    time.Duration
	BootControllers   []string
	IdentityJWTSecret string
	IdentityJWTIssuer string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	rateMax, err := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_MAX: %w", err)
	}

	rateWindowSec, err := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW_SECONDS: %w", err)
	}

	oracleTTLSec, err := strconv.Atoi(getEnv("ORACLE_CACHE_TTL_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid ORACLE_CACHE_TTL_SECONDS: %w", err)
	}

	backend := getEnv("SNAPSHOT_BACKEND", "badger")
	switch backend {
	case "badger", "redis":
	default:
		return nil, fmt.Errorf("invalid SNAPSHOT_BACKEND %q: want badger or redis", backend)
	}

	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		MetricsAddr:       getEnv("METRICS_ADDR", ""),
		SnapshotBackend:   backend,
		BadgerDir:         getEnv("BADGER_DIR", "./data/adminstate"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		RateLimitMax:      rateMax,
		RateLimitWindow:   time.Duration(rateWindowSec) * time.Second,
		OracleCacheTTL:    time.Duration(oracleTTLSec) * time.Second,
		BootControllers:   parseCSVEnv("ADMIN_CONTROLLERS", nil),
		IdentityJWTSecret: os.Getenv("IDENTITY_JWT_SECRET"),
		IdentityJWTIssuer: getEnv("IDENTITY_JWT_ISSUER", "adminstate"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
