package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("REQUIRE_AUTH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.Storage.Backend != StorageLocal {
		t.Errorf("expected local storage backend, got %q", cfg.Storage.Backend)
	}
	if cfg.RequireAuth {
		t.Error("expected REQUIRE_AUTH to default to false")
	}
	if !cfg.RunMigrations {
		t.Error("expected RUN_MIGRATIONS to default to true")
	}
}

func TestLoad_ParsesValues(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("REQUIRE_AUTH", "true")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("S3_PATH_STYLE", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.JWTExpiry != 2*time.Hour {
		t.Errorf("expected 2h expiry, got %v", cfg.JWTExpiry)
	}
	if !cfg.RequireAuth {
		t.Error("expected RequireAuth true")
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Errorf("expected 1024, got %d", cfg.MaxUploadBytes)
	}
	if !cfg.Storage.PathStyle {
		t.Error("expected PathStyle true")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "soon")
	t.Setenv("MAX_UPLOAD_BYTES", "-5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("expected fallback expiry, got %v", cfg.JWTExpiry)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("expected fallback upload limit, got %d", cfg.MaxUploadBytes)
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); !errors.Is(err, ErrDefaultSecret) {
		t.Errorf("expected ErrDefaultSecret, got %v", err)
	}

	t.Setenv("JWT_SECRET", "a-real-secret")
	if _, err := Load(); err != nil {
		t.Errorf("expected no error with a secret set, got %v", err)
	}
}

func TestLoadClient(t *testing.T) {
	t.Setenv("NUTRISCAN_API_BASE_URL", "")
	t.Setenv("NUTRISCAN_STATE_FILE", "/tmp/state.json")

	cfg := LoadClient()
	if cfg.APIBaseURL != "http://localhost:8080" {
		t.Errorf("expected default base URL, got %q", cfg.APIBaseURL)
	}
	if cfg.StateFile != "/tmp/state.json" {
		t.Errorf("expected state file override, got %q", cfg.StateFile)
	}
}
