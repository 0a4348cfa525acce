package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Postgres.MaxConns != 15 {
		t.Errorf("expected max_conns 15, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Analyzer.Backend != "offline" {
		t.Errorf("expected offline analyzer, got %s", cfg.Analyzer.Backend)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("expected token TTL 12h, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Cache.DashboardTTL != 10*time.Second {
		t.Errorf("expected dashboard TTL 10s, got %v", cfg.Cache.DashboardTTL)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
  cors_origin: "http://example.com"
postgres:
  max_conns: 20
analyzer:
  backend: "llm"
  url: "http://localhost:4000/v1"
logging:
  level: "debug"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.CORSOrigin != "http://example.com" {
		t.Errorf("expected cors http://example.com, got %s", cfg.Server.CORSOrigin)
	}
	if cfg.Postgres.MaxConns != 20 {
		t.Errorf("expected max_conns 20, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Analyzer.Backend != "llm" || cfg.Analyzer.URL != "http://localhost:4000/v1" {
		t.Errorf("analyzer not overridden: %+v", cfg.Analyzer)
	}
	// Unchanged fields keep defaults
	if cfg.Auth.BcryptCost != 12 {
		t.Errorf("expected default bcrypt cost, got %d", cfg.Auth.BcryptCost)
	}
}

func TestLoadYAMLMissingFile(t *testing.T) {
	cfg := Defaults()
	if err := loadYAML(&cfg, filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Errorf("missing file should not error, got %v", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CAPRAIL_PORT", "7070")
	t.Setenv("CAPRAIL_TOKEN_SECRET", "test-secret")
	t.Setenv("CAPRAIL_TOKEN_TTL", "1h")
	t.Setenv("CAPRAIL_TELEMETRY_ENABLED", "true")

	cfg := Defaults()
	loadEnv(&cfg)

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Server.Port)
	}
	if cfg.Auth.TokenSecret != "test-secret" {
		t.Errorf("token secret not loaded from env")
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("expected TTL 1h, got %v", cfg.Auth.TokenTTL)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("telemetry not enabled from env")
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := validate(&cfg); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	bad := Defaults()
	bad.Analyzer.Backend = "remote"
	if err := validate(&bad); err == nil {
		t.Error("unknown analyzer backend accepted")
	}

	bad = Defaults()
	bad.Analyzer.Backend = "llm"
	bad.Analyzer.URL = ""
	if err := validate(&bad); err == nil {
		t.Error("llm backend without URL accepted")
	}

	bad = Defaults()
	bad.Auth.BcryptCost = 2
	if err := validate(&bad); err == nil {
		t.Error("bcrypt cost below range accepted")
	}
}
