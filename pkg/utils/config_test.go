package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"TOPMOVIES_ENV", "TOPMOVIES_HTTP_ADDR", "TOPMOVIES_TMDB_API_KEY",
		"TOPMOVIES_TMDB_BASE_URL", "TOPMOVIES_METADATA_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadAppConfig()
	if cfg.Env != "development" || cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TMDB.BaseURL != "https://api.themoviedb.org/3" {
		t.Fatalf("unexpected tmdb base url %q", cfg.TMDB.BaseURL)
	}
	if cfg.TMDB.Timeout != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %v", cfg.TMDB.Timeout)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error without api key")
	}
}

func TestLoadAppConfigOverrides(t *testing.T) {
	t.Setenv("TOPMOVIES_TMDB_API_KEY", "secret")
	t.Setenv("TOPMOVIES_METADATA_TIMEOUT_SECONDS", "3")
	t.Setenv("TOPMOVIES_ENV", "production")
	t.Setenv("TOPMOVIES_SESSION_SECRET", "")

	cfg := LoadAppConfig()
	if cfg.TMDB.Timeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %v", cfg.TMDB.Timeout)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected production config with dev session secret to fail")
	}

	t.Setenv("TOPMOVIES_SESSION_SECRET", "real-secret")
	if err := LoadAppConfig().Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestInvalidTimeoutKeepsDefault(t *testing.T) {
	t.Setenv("TOPMOVIES_METADATA_TIMEOUT_SECONDS", "soon")
	if got := LoadAppConfig().TMDB.Timeout; got != 10*time.Second {
		t.Fatalf("expected default timeout, got %v", got)
	}
}

func TestWSOriginsSplitOnCommas(t *testing.T) {
	t.Setenv("TOPMOVIES_WS_ORIGINS", " https://a.example, ,https://b.example:8443 ")
	got := LoadAppConfig().WSOrigins
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example:8443" {
		t.Fatalf("unexpected origins %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TOPMOVIES_GRPC_ADDR=:7777\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("TOPMOVIES_GRPC_ADDR", "")
	os.Unsetenv("TOPMOVIES_GRPC_ADDR")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}
	if got := LoadAppConfig().GRPCAddr; got != ":7777" {
		t.Fatalf("expected .env value, got %q", got)
	}
}
