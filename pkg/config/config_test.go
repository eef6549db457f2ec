package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("environment: %s", cfg.Environment)
	}
	if cfg.SnapshotBackend != "badger" {
		t.Errorf("backend: %s", cfg.SnapshotBackend)
	}
	if cfg.RateLimitMax != 100 {
		t.Errorf("rate limit max: %d", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != 60*time.Second {
		t.Errorf("rate limit window: %s", cfg.RateLimitWindow)
	}
	if cfg.OracleCacheTTL != 30*time.Second {
		t.Errorf("oracle ttl: %s", cfg.OracleCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SNAPSHOT_BACKEND", "redis")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "10")
	t.Setenv("ADMIN_CONTROLLERS", "root-1, root-2 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SnapshotBackend != "redis" {
		t.Errorf("backend: %s", cfg.SnapshotBackend)
	}
	if cfg.RateLimitMax != 5 || cfg.RateLimitWindow != 10*time.Second {
		t.Errorf("rate limit: %d / %s", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if len(cfg.BootControllers) != 2 || cfg.BootControllers[0] != "root-1" || cfg.BootControllers[1] != "root-2" {
		t.Errorf("controllers: %v", cfg.BootControllers)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SNAPSHOT_BACKEND", "s3")
	if _, err := Load(); err == nil {
		t.Fatal("unknown backend accepted")
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "lots")
	if _, err := Load(); err == nil {
		t.Fatal("non-numeric rate limit accepted")
	}
}
