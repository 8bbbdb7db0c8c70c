package config

import (
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if cfg.API.BaseURL != "http://localhost:3000" {
		t.Fatalf("unexpected API base url %q", cfg.API.BaseURL)
	}
	if cfg.Sync.PollInterval != 5*time.Second {
		t.Fatalf("expected default 5s poll interval, got %v", cfg.Sync.PollInterval)
	}
	if cfg.Snapshot.Backend != SnapshotBackendFile {
		t.Fatalf("expected file snapshot backend by default, got %q", cfg.Snapshot.Backend)
	}
}

func TestLoad_MissingBaseURL(t *testing.T) {
	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvAPIBaseURL, "")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing base url to return an error")
	}
}

func TestLoad_RelativeBaseURLRejected(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvAPIBaseURL, "/api")

	if _, err := Load(); err == nil {
		t.Fatal("expected relative base url to return an error")
	}
}

func TestLoad_RedisBackendRequiresAddress(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvSnapshotBackend, "redis")

	if _, err := Load(); err == nil {
		t.Fatal("expected redis backend without address to return an error")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	if _, err := Load(); err != nil {
		t.Fatalf("redis backend with url should load: %v", err)
	}
}

func TestLoad_IntervalOverride(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvSyncInterval, "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Sync.PollInterval != 250*time.Millisecond {
		t.Fatalf("expected overridden interval, got %v", cfg.Sync.PollInterval)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvAPIBaseURL, "http://localhost:3000")
}
