// Command sweeper runs the retention sweep (mark-finished, trim history,
// purge old matches, §4.6) once and exits, or stays resident and runs it on
// an hourly tick with -loop. Mirrors
// cmd/tools/ttl-manager's flag-driven standalone-maintenance-tool shape.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"github.com/oddsforge/arbiter/internal/config"
	"github.com/oddsforge/arbiter/internal/logging"
	"github.com/oddsforge/arbiter/internal/persister"
)

func main() {
	var (
		configPath = flag.String("config", "configs/production.yaml", "path to config file")
		loop       = flag.Bool("loop", false, "stay resident and sweep hourly instead of running once")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("sweeper: load config: %v", err)
	}

	logging.Setup(cfg.Logging, "sweeper")

	ctx := context.Background()
	store, err := persister.Open(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		log.Fatalf("sweeper: open store: %v", err)
	}
	defer store.Close()

	s := persister.NewSweeper(store, cfg.Arbitrage.HistoryRetention, cfg.Arbitrage.MatchRetention)

	if !*loop {
		if err := s.Run(ctx, time.Now()); err != nil {
			log.Fatalf("sweeper: run: %v", err)
		}
		return
	}

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		if err := s.Run(ctx, time.Now()); err != nil {
			slog.Error("sweeper: run failed", "error", err)
		}
		<-ticker.C
	}
}
