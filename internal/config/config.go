// Package config loads the pipeline's static configuration from a YAML
// file, then overlays environment variables for the handful of values
// operators typically inject per-deployment (secrets, DSNs). Grounded on the
// prior internal/pkg/config.Load + cmd/calculator/main.go's env-override
// pattern.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document (§6).
type Config struct {
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Arbitrage ArbitrageConfig `yaml:"arbitrage"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Providers []ProviderConfig `yaml:"providers"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type PostgresConfig struct {
	DSN         string `yaml:"dsn"`
	MaxConns    int    `yaml:"max_conns"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// SchedulerConfig holds the §6 scrape-cycle keys.
type SchedulerConfig struct {
	ScrapeIntervalSeconds  int `yaml:"scrape_interval_seconds"`  // default 30
	RequestTimeoutSeconds  int `yaml:"request_timeout_seconds"`  // default 30
	MaxConcurrentRequests  int `yaml:"max_concurrent_requests"`  // default 10
}

// ResolverConfig holds the §6 match-identity keys.
type ResolverConfig struct {
	MatchSimilarityThreshold float64 `yaml:"match_similarity_threshold"` // default 85.0
}

// ArbitrageConfig holds the §6 arbitrage keys.
type ArbitrageConfig struct {
	MinProfitPercentage     float64 `yaml:"min_profit_percentage"`      // default 0.1
	MovementThresholdPercent float64 `yaml:"movement_threshold_percent"` // default 5.0
	HistoryRetention        time.Duration `yaml:"history_retention"`    // default 168h (7d)
	MatchRetention          time.Duration `yaml:"match_retention"`      // default 720h (30d)
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

// ProviderConfig is one entry of the static provider vocabulary (§6
// "providers_enabled").
type ProviderConfig struct {
	ID      int    `yaml:"id"`
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"`
	BaseURL string `yaml:"base_url"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool    `yaml:"json"`
}

// Load reads the YAML document at path, applies defaults for anything left
// zero, then overlays the environment variables operators use to inject
// secrets without touching the checked-in file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Postgres.MaxConns <= 0 {
		cfg.Postgres.MaxConns = 50
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "arbiter:events"
	}
	if cfg.Scheduler.ScrapeIntervalSeconds <= 0 {
		cfg.Scheduler.ScrapeIntervalSeconds = 30
	}
	if cfg.Scheduler.RequestTimeoutSeconds <= 0 {
		cfg.Scheduler.RequestTimeoutSeconds = 30
	}
	if cfg.Scheduler.MaxConcurrentRequests <= 0 {
		cfg.Scheduler.MaxConcurrentRequests = 10
	}
	if cfg.Resolver.MatchSimilarityThreshold <= 0 {
		cfg.Resolver.MatchSimilarityThreshold = 85.0
	}
	if cfg.Arbitrage.MinProfitPercentage <= 0 {
		cfg.Arbitrage.MinProfitPercentage = 0.1
	}
	if cfg.Arbitrage.MovementThresholdPercent <= 0 {
		cfg.Arbitrage.MovementThresholdPercent = 5.0
	}
	if cfg.Arbitrage.HistoryRetention <= 0 {
		cfg.Arbitrage.HistoryRetention = 7 * 24 * time.Hour
	}
	if cfg.Arbitrage.MatchRetention <= 0 {
		cfg.Arbitrage.MatchRetention = 30 * 24 * time.Hour
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func applyEnvOverrides(cfg *Config) {
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.Postgres.DSN = dsn
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.BotToken = token
	}
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		if chatID, err := strconv.ParseInt(chatIDStr, 10, 64); err == nil {
			cfg.Telegram.ChatID = chatID
		}
	}
}
