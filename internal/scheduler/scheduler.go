// Package scheduler runs the scrape cycle: fixed cadence, per-provider
// isolation, a per-cycle deadline, and arbitrage detection only once every
// provider's cycle work has landed (§4.2, §4.7, §5). Grounded on the
// prior internal/pkg/parserutil.RunParsers (WaitGroup fan-out with an
// error-isolating goroutine per parser), generalized from its
// unbounded-concurrency fan-out to a counting semaphore bounding in-flight
// providers per §6's max_concurrent_requests, and from "let the HTTP client
// time out" to an explicit per-cycle context deadline.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/oddsforge/arbiter/internal/adapters"
	"github.com/oddsforge/arbiter/internal/arbitrage"
	"github.com/oddsforge/arbiter/internal/models"
	"github.com/oddsforge/arbiter/internal/publisher"
	"github.com/oddsforge/arbiter/internal/resolver"
	"github.com/oddsforge/arbiter/internal/telemetry"
)

// Source pairs one provider's static identity with its adapter.
type Source struct {
	ProviderID int
	Adapter    adapters.Adapter
}

// Store is the persister surface the scheduler drives; internal/persister.Store
// implements it. Declared on the consumer side (scheduler, not persister) so
// a cycle can be exercised against a fake without a database, the way the
// prior parsers package consumes its own YDBClient/Parser interfaces.
type Store interface {
	UpsertMatches(ctx context.Context, matches []models.Match) ([]int64, error)
	WriteOdds(ctx context.Context, rows []models.CurrentOdds) error
	ActiveOddsForArbitrage(ctx context.Context, now time.Time) ([]models.CurrentOdds, map[int64]time.Time, error)
	UpsertArbitrage(ctx context.Context, a models.Arbitrage) (isNew bool, id int64, err error)
	DeactivateStaleArbitrage(ctx context.Context, stillActiveIDs []int64) error
}

// Publisher is the fan-out surface the scheduler drives;
// internal/publisher.Publisher implements it.
type Publisher interface {
	Publish(ctx context.Context, ev publisher.Event) error
}

// Scheduler owns the fixed-cadence cycle loop.
type Scheduler struct {
	sources   []Source
	resolver  *resolver.Resolver
	store     Store
	publisher Publisher
	telemetry *telemetry.Collector

	interval              time.Duration
	cycleDeadline         time.Duration
	maxConcurrentRequests int
	minProfitPercent      float64
	movementThreshold     float64

	// prevOdds tracks each key's price entering this cycle so movements can
	// be detected by comparison, without a second database round-trip.
	prevOdds map[models.OddsKey]models.CurrentOdds
}

// New wires a Scheduler. interval is the fixed cadence between cycle starts;
// cycleDeadline bounds how long one cycle may run before its context is
// cancelled (§6).
func New(sources []Source, r *resolver.Resolver, store Store, pub Publisher, tel *telemetry.Collector, interval, cycleDeadline time.Duration, maxConcurrentRequests int, minProfitPercent, movementThreshold float64) *Scheduler {
	return &Scheduler{
		sources:               sources,
		resolver:              r,
		store:                 store,
		publisher:             pub,
		telemetry:             tel,
		interval:              interval,
		cycleDeadline:         cycleDeadline,
		maxConcurrentRequests: maxConcurrentRequests,
		minProfitPercent:      minProfitPercent,
		movementThreshold:     movementThreshold,
		prevOdds:              make(map[models.OddsKey]models.CurrentOdds),
	}
}

// Run blocks, firing one cycle every interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle fans out to every source under a counting semaphore, waits for
// all of them (panics and errors contained per-source), then runs arbitrage
// and line-movement detection once — never interleaved with an in-flight
// provider write (§4.7 ordering guarantee).
func (s *Scheduler) RunCycle(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.cycleDeadline)
	defer cancel()

	sem := make(chan struct{}, maxInt(s.maxConcurrentRequests, 1))
	done := make(chan struct{}, len(s.sources))

	for _, src := range s.sources {
		src := src
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; done <- struct{}{} }()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("scheduler: provider goroutine panicked", "provider", src.ProviderID, "recover", r)
				}
			}()
			s.runSource(ctx, src)
		}()
	}
	for range s.sources {
		<-done
	}

	s.detectArbitrage(ctx)
}

func (s *Scheduler) runSource(ctx context.Context, src Source) {
	start := time.Now()
	var requests, errs, matchesPersisted, pricesPersisted uint64

	raw, err := src.Adapter.Scrape(ctx)
	requests++
	if err != nil {
		errs++
		slog.Error("scheduler: scrape failed", "provider", src.ProviderID, "error", err)
		s.telemetry.RecordCycle(src.ProviderID, requests, errs, matchesPersisted, pricesPersisted, time.Since(start), start)
		return
	}
	for i := range raw {
		raw[i].ProviderID = src.ProviderID
	}

	decisions, err := s.resolver.Resolve(ctx, raw)
	if err != nil {
		errs++
		slog.Error("scheduler: resolve failed", "provider", src.ProviderID, "error", err)
		s.telemetry.RecordCycle(src.ProviderID, requests, errs, matchesPersisted, pricesPersisted, time.Since(start), start)
		return
	}

	matches := make([]models.Match, len(decisions))
	for i, d := range decisions {
		matches[i] = *d.NewMatch
	}

	// Ordering guarantee: matches land before their odds (§4.6).
	ids, err := s.store.UpsertMatches(ctx, matches)
	if err != nil {
		errs++
		slog.Error("scheduler: upsert matches failed", "provider", src.ProviderID, "error", err)
		s.telemetry.RecordCycle(src.ProviderID, requests, errs, matchesPersisted, pricesPersisted, time.Since(start), start)
		return
	}
	matchesPersisted = uint64(len(ids))

	now := time.Now()
	var oddsRows []models.CurrentOdds
	for i, id := range ids {
		for _, ro := range decisions[i].Raw.Odds {
			oddsRows = append(oddsRows, models.CurrentOdds{
				OddsKey: models.OddsKey{
					MatchID: id, ProviderID: src.ProviderID,
					BetTypeID: ro.BetTypeID, Margin: ro.Margin, Selection: ro.Selection,
				},
				P1: ro.P1, P2: ro.P2, P3: ro.P3,
				UpdatedAt: now,
			})
		}
	}

	moves := arbitrage.DetectMovements(s.prevOdds, oddsRows, s.movementThreshold, now)
	for _, m := range moves {
		_ = s.publisher.Publish(ctx, publisher.Event{Kind: publisher.KindLineMovement, MatchID: m.MatchID, Payload: m, OccuredAt: now})
	}
	s.telemetry.AddMovements(uint64(len(moves)))
	for _, r := range oddsRows {
		s.prevOdds[r.OddsKey] = r
	}

	if err := s.store.WriteOdds(ctx, oddsRows); err != nil {
		errs++
		slog.Error("scheduler: write odds failed", "provider", src.ProviderID, "error", err)
	} else {
		pricesPersisted = uint64(len(oddsRows))
	}

	s.telemetry.RecordCycle(src.ProviderID, requests, errs, matchesPersisted, pricesPersisted, time.Since(start), start)
}

func (s *Scheduler) detectArbitrage(ctx context.Context) {
	rows, startTimes, err := s.store.ActiveOddsForArbitrage(ctx, time.Now())
	if err != nil {
		slog.Error("scheduler: load active odds for arbitrage failed", "error", err)
		return
	}

	found := arbitrage.Detect(rows, startTimes, time.Now())
	var stillActive []int64
	for _, a := range found {
		if a.ProfitPercent < s.minProfitPercent {
			continue
		}
		isNew, id, err := s.store.UpsertArbitrage(ctx, a)
		if err != nil {
			slog.Error("scheduler: upsert arbitrage failed", "error", err)
			continue
		}
		stillActive = append(stillActive, id)
		if isNew {
			_ = s.publisher.Publish(ctx, publisher.Event{Kind: publisher.KindArbitrage, MatchID: a.MatchID, Payload: a, OccuredAt: time.Now()})
		}
	}
	s.telemetry.SetArbitrageActive(uint64(len(stillActive)))

	if err := s.store.DeactivateStaleArbitrage(ctx, stillActive); err != nil {
		slog.Error("scheduler: deactivate stale arbitrage failed", "error", err)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
