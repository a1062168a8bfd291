package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_AppliesDefaultsAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
postgres:
  dsn: "postgres://localhost/arbiter"
scheduler:
  scrape_interval_seconds: 45
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("POSTGRES_DSN", "postgres://override/arbiter")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok123")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Postgres.DSN != "postgres://override/arbiter" {
		t.Fatalf("expected env DSN to win, got %q", cfg.Postgres.DSN)
	}
	if cfg.Scheduler.ScrapeIntervalSeconds != 45 {
		t.Fatalf("expected configured interval preserved, got %d", cfg.Scheduler.ScrapeIntervalSeconds)
	}
	if cfg.Scheduler.MaxConcurrentRequests != 10 {
		t.Fatalf("expected default concurrency, got %d", cfg.Scheduler.MaxConcurrentRequests)
	}
	if cfg.Resolver.MatchSimilarityThreshold != 85.0 {
		t.Fatalf("expected default threshold, got %v", cfg.Resolver.MatchSimilarityThreshold)
	}
	if cfg.Telegram.BotToken != "tok123" || cfg.Telegram.ChatID != 42 {
		t.Fatalf("expected telegram env overrides applied, got %+v", cfg.Telegram)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path.yaml"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
