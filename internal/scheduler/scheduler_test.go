package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/oddsforge/arbiter/internal/models"
	"github.com/oddsforge/arbiter/internal/publisher"
	"github.com/oddsforge/arbiter/internal/resolver"
	"github.com/oddsforge/arbiter/internal/telemetry"
)

func newTestCollector() *telemetry.Collector {
	return telemetry.New()
}

// fakeAdapter scrapes a fixed set of raw matches, or panics/errors on demand.
type fakeAdapter struct {
	matches []models.RawMatch
	err     error
	panic   bool
}

func (f *fakeAdapter) BaseURL() string                 { return "https://fake.test" }
func (f *fakeAdapter) SupportedSports() []models.SportID { return []models.SportID{models.SportFootball} }
func (f *fakeAdapter) Scrape(ctx context.Context) ([]models.RawMatch, error) {
	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

// fakeStore records calls in-memory instead of touching Postgres.
type fakeStore struct {
	mu            sync.Mutex
	upsertCalls   int
	writeOddsRows []models.CurrentOdds
	nextID        int64
}

func (s *fakeStore) UpsertMatches(ctx context.Context, matches []models.Match) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCalls++
	ids := make([]int64, len(matches))
	for i := range matches {
		s.nextID++
		ids[i] = s.nextID
	}
	return ids, nil
}

func (s *fakeStore) WriteOdds(ctx context.Context, rows []models.CurrentOdds) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeOddsRows = append(s.writeOddsRows, rows...)
	return nil
}

func (s *fakeStore) ActiveOddsForArbitrage(ctx context.Context, now time.Time) ([]models.CurrentOdds, map[int64]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CurrentOdds(nil), s.writeOddsRows...), map[int64]time.Time{}, nil
}

func (s *fakeStore) UpsertArbitrage(ctx context.Context, a models.Arbitrage) (bool, int64, error) {
	return true, 1, nil
}

func (s *fakeStore) DeactivateStaleArbitrage(ctx context.Context, stillActiveIDs []int64) error {
	return nil
}

// fakePublisher discards events but counts them.
type fakePublisher struct {
	mu     sync.Mutex
	events int
}

func (p *fakePublisher) Publish(ctx context.Context, ev publisher.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events++
	return nil
}

func newTestResolver() *resolver.Resolver {
	return resolver.New(&noopCandidateStore{})
}

// noopCandidateStore satisfies resolver.CandidateStore with no prior matches,
// so every raw match resolves as new.
type noopCandidateStore struct{}

func (noopCandidateStore) CandidatesInWindow(ctx context.Context, sport models.SportID, from, to time.Time) ([]models.Match, error) {
	return nil, nil
}

func (noopCandidateStore) LatestPrices(ctx context.Context, matchID int64) ([]models.CurrentOdds, error) {
	return nil, nil
}

func sampleRawMatch() models.RawMatch {
	return models.RawMatch{
		Sport:       models.SportFootball,
		HomeTeamRaw: "Arsenal",
		AwayTeamRaw: "Chelsea",
		StartTime:   time.Now().Add(2 * time.Hour),
		Odds: []models.RawOdds{
			{BetTypeID: 1, Margin: 0, Selection: "1", P1: 2.1},
		},
	}
}

// TestRunCycle_IsolatesPanickingProvider verifies a provider whose adapter
// panics does not stop the other sources from completing their cycle, and
// RunCycle itself returns rather than propagating the panic.
func TestRunCycle_IsolatesPanickingProvider(t *testing.T) {
	good := &fakeAdapter{matches: []models.RawMatch{sampleRawMatch()}}
	bad := &fakeAdapter{panic: true}

	store := &fakeStore{}
	pub := &fakePublisher{}
	tel := newTestCollector()

	s := New(
		[]Source{{ProviderID: 1, Adapter: good}, {ProviderID: 2, Adapter: bad}},
		newTestResolver(), store, pub, tel,
		time.Minute, 5*time.Second, 4, 0.1, 5.0,
	)

	done := make(chan struct{})
	go func() {
		s.RunCycle(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunCycle did not return, panic likely propagated")
	}

	if store.upsertCalls != 1 {
		t.Fatalf("expected the healthy provider to still persist its matches, got %d upsert calls", store.upsertCalls)
	}
}

// TestRunCycle_IsolatesErroringProvider verifies an adapter returning an
// error does not stop sibling providers from persisting their own data.
func TestRunCycle_IsolatesErroringProvider(t *testing.T) {
	good := &fakeAdapter{matches: []models.RawMatch{sampleRawMatch()}}
	failing := &fakeAdapter{err: errors.New("upstream unavailable")}

	store := &fakeStore{}
	pub := &fakePublisher{}
	tel := newTestCollector()

	s := New(
		[]Source{{ProviderID: 1, Adapter: failing}, {ProviderID: 2, Adapter: good}},
		newTestResolver(), store, pub, tel,
		time.Minute, 5*time.Second, 4, 0.1, 5.0,
	)

	s.RunCycle(context.Background())

	if store.upsertCalls != 1 {
		t.Fatalf("expected exactly one provider's matches to be persisted, got %d upsert calls", store.upsertCalls)
	}
	if len(store.writeOddsRows) != 1 {
		t.Fatalf("expected exactly one odds row written, got %d", len(store.writeOddsRows))
	}
}
