package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_EnvOverridesYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
port: "3080"
env: "test"
database:
  host: "db.example.com"
  database: "ladle_test"
anthropic:
  model: "claude-sonnet-4-20250514"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// cleanenv reads config.yaml relative to the working directory
	origWd, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer func() { _ = os.Chdir(origWd) }()

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("PGHOST", "env-host")
	t.Setenv("PORT", "4000")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Host != "env-host" {
		t.Errorf("expected env var to override YAML host, got %q", cfg.Database.Host)
	}
	if cfg.Port != "4000" {
		t.Errorf("expected env var to override YAML port, got %q", cfg.Port)
	}
	if cfg.Database.Database != "ladle_test" {
		t.Errorf("expected YAML database name, got %q", cfg.Database.Database)
	}
	if cfg.Version != "test-version" {
		t.Errorf("expected injected version, got %q", cfg.Version)
	}
}

func TestLoad_RequiresAPIKey(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("env: test\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	origWd, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer func() { _ = os.Chdir(origWd) }()

	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := Load("dev"); err == nil {
		t.Fatal("expected error when ANTHROPIC_API_KEY is unset")
	}
}

func TestConnectionString(t *testing.T) {
	c := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "ladle",
		Password: "secret",
		Database: "ladle_engine",
		SSLMode:  "disable",
	}

	got := c.ConnectionString()
	want := "host=localhost port=5432 user=ladle password=secret dbname=ladle_engine sslmode=disable"
	if got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}
