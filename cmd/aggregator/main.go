// Command aggregator is the composition root for the odds ingestion
// pipeline: it wires config, storage, every enabled provider adapter, the
// resolver, scheduler, and event publisher, then runs the fixed-cadence
// scrape cycle until signalled to stop. Mirrors
// cmd/calculator/main.go startup shape (flag + env config path, signal
// handling, HTTP health server run alongside the main loop).
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oddsforge/arbiter/internal/adapters/httputil"
	"github.com/oddsforge/arbiter/internal/adapters/kestrel"
	"github.com/oddsforge/arbiter/internal/adapters/meridian"
	"github.com/oddsforge/arbiter/internal/adapters/solace"
	"github.com/oddsforge/arbiter/internal/cmc"
	"github.com/oddsforge/arbiter/internal/config"
	"github.com/oddsforge/arbiter/internal/logging"
	"github.com/oddsforge/arbiter/internal/models"
	"github.com/oddsforge/arbiter/internal/persister"
	"github.com/oddsforge/arbiter/internal/publisher"
	"github.com/oddsforge/arbiter/internal/resolver"
	"github.com/oddsforge/arbiter/internal/scheduler"
	"github.com/oddsforge/arbiter/internal/telemetry"
)

const defaultConfigPath = "configs/production.yaml"

func main() {
	var configPath, statsAddr string
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = defaultConfigPath
	}
	flag.StringVar(&configPath, "config", defaultPath, "path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&statsAddr, "stats-addr", ":8080", "telemetry /stats listen address")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("aggregator: load config: %v", err)
	}
	logging.Setup(cfg.Logging, "aggregator")
	slog.Info("aggregator: config loaded", "path", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("aggregator: shutdown signal received")
		cancel()
	}()

	store, err := persister.Open(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		log.Fatalf("aggregator: open store: %v", err)
	}
	defer store.Close()

	providers, sports, sources := buildSources(cfg)
	if err := store.SeedVocabulary(ctx, providers, sports, cmc.Table); err != nil {
		log.Fatalf("aggregator: seed vocabulary: %v", err)
	}

	redisClient, err := publisher.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Warn("aggregator: redis unavailable, continuing with in-process fan-out only", "error", err)
	}
	pub := publisher.New(redisClient, cfg.Redis.Channel)
	defer pub.Close()

	if tg := publisher.NewTelegramSubscriber(cfg.Telegram.BotToken, cfg.Telegram.ChatID); tg != nil {
		go tg.Run(ctx, pub.Subscribe("telegram", publisher.DefaultBufferSize))
		slog.Info("aggregator: telegram subscriber attached")
	}

	r := resolver.New(store)
	tel := telemetry.New()

	sched := scheduler.New(
		sources, r, store, pub, tel,
		time.Duration(cfg.Scheduler.ScrapeIntervalSeconds)*time.Second,
		time.Duration(cfg.Scheduler.RequestTimeoutSeconds)*time.Second,
		cfg.Scheduler.MaxConcurrentRequests,
		cfg.Arbitrage.MinProfitPercentage,
		cfg.Arbitrage.MovementThresholdPercent,
	)

	sweeper := persister.NewSweeper(store, cfg.Arbitrage.HistoryRetention, cfg.Arbitrage.MatchRetention)
	go runSweeper(ctx, sweeper)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/stats", tel.Handler())
	srv := &http.Server{Addr: statsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		slog.Info("aggregator: stats server listening", "addr", statsAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("aggregator: stats server error", "error", err)
		}
	}()

	slog.Info("aggregator: starting scrape cycle", "providers", len(sources), "interval_seconds", cfg.Scheduler.ScrapeIntervalSeconds)
	sched.Run(ctx)
	slog.Info("aggregator: stopped")
}

// buildSources constructs one adapter per enabled provider, dispatching on
// its configured driver shape, and returns the static provider/sport
// vocabulary alongside the scheduler sources built from them.
func buildSources(cfg *config.Config) ([]models.Provider, []models.SportID, []scheduler.Source) {
	sports := []models.SportID{models.SportFootball, models.SportBasketball, models.SportTennis, models.SportHockey, models.SportTableTennis}

	var providers []models.Provider
	var sources []scheduler.Source
	client := httputil.New(
		time.Duration(cfg.Scheduler.RequestTimeoutSeconds)*time.Second,
		cfg.Scheduler.MaxConcurrentRequests,
		"arbiter/1.0",
	)

	for _, pc := range cfg.Providers {
		providers = append(providers, models.Provider{ID: pc.ID, Name: pc.Name, Enabled: pc.Enabled, Driver: models.FetchDriver(pc.Driver)})
		if !pc.Enabled {
			continue
		}
		switch pc.Driver {
		case "kestrel":
			sources = append(sources, scheduler.Source{ProviderID: pc.ID, Adapter: kestrel.New(client, pc.BaseURL, "en", "1", sports)})
		case "meridian":
			sources = append(sources, scheduler.Source{ProviderID: pc.ID, Adapter: meridian.New(client, pc.BaseURL, sports)})
		case "solace":
			sources = append(sources, scheduler.Source{ProviderID: pc.ID, Adapter: solace.New(pc.BaseURL, sports, time.Duration(cfg.Scheduler.RequestTimeoutSeconds)*time.Second)})
		default:
			slog.Warn("aggregator: unknown provider driver, skipping", "provider", pc.Name, "driver", pc.Driver)
		}
	}
	return providers, sports, sources
}

func runSweeper(ctx context.Context, s *persister.Sweeper) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Run(ctx, time.Now()); err != nil {
				slog.Error("aggregator: sweeper run failed", "error", err)
			}
		}
	}
}

