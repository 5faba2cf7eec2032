package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/memories")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.StorageBackend != BackendPostgres {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.AutoMigrate || cfg.DBMaxConns != 10 {
		t.Fatalf("unexpected db defaults: %+v", cfg)
	}
	if cfg.RequestTimeout() != 10*time.Second {
		t.Fatalf("expected 10s request timeout, got %s", cfg.RequestTimeout())
	}
}

func TestLoadConfig_PostgresRequiresDatabaseURL(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadConfig_LocalBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", " Local ")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "3")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageBackend != BackendLocal {
		t.Fatalf("expected normalized backend, got %q", cfg.StorageBackend)
	}
	if cfg.RequestTimeout() != 3*time.Second {
		t.Fatalf("expected 3s, got %s", cfg.RequestTimeout())
	}
}

func TestLoadConfig_UnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	if _, err := LoadConfig(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
