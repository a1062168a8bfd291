package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/oddsforge/arbiter/internal/models"
)

type fakeStore struct {
	candidates []models.Match
}

func (f *fakeStore) CandidatesInWindow(ctx context.Context, sport models.SportID, from, to time.Time) ([]models.Match, error) {
	var out []models.Match
	for _, c := range f.candidates {
		if c.Sport == sport && !c.StartTime.Before(from) && !c.StartTime.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) LatestPrices(ctx context.Context, matchID int64) ([]models.CurrentOdds, error) {
	return nil, nil
}

// Boundary scenario 4: football "Crvena Zvezda vs Partizan" from one
// provider and "Partizan vs Red Star Belgrade" from another at the same
// kickoff must merge into one match with both external ids.
func TestResolve_FuzzyMatchAcrossOrderFlip(t *testing.T) {
	kickoff := time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC)
	store := &fakeStore{candidates: []models.Match{
		{
			ID:              1,
			Team1Normalized: "crvena zvezda",
			Team2Normalized: "partizan",
			Sport:           models.SportFootball,
			StartTime:       kickoff,
			ExternalIDs:     map[int]string{1: "ext-1"},
			Status:          models.StatusUpcoming,
		},
	}}
	r := New(store)

	second := models.RawMatch{
		ProviderID:      2,
		HomeTeamRaw:     "Partizan",
		AwayTeamRaw:     "Red Star Belgrade",
		Sport:           models.SportFootball,
		StartTime:       kickoff,
		ExternalEventID: "ext-2",
	}

	decisions, err := r.Resolve(context.Background(), []models.RawMatch{second})
	if err != nil {
		t.Fatal(err)
	}
	if len(decisions) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(decisions))
	}
	d := decisions[0]
	if d.ExistingID != 1 {
		t.Fatalf("expected reuse of match 1, got new match (score=%v)", d.Score)
	}
	if d.NewMatch == nil || d.NewMatch.ExternalIDs[2] != "ext-2" || d.NewMatch.ExternalIDs[1] != "ext-1" {
		t.Fatalf("expected merged external ids, got %+v", d.NewMatch)
	}
}

func TestResolve_NoCandidateCreatesNewMatch(t *testing.T) {
	store := &fakeStore{}
	r := New(store)
	raw := models.RawMatch{
		ProviderID:  1,
		HomeTeamRaw: "Hades",
		AwayTeamRaw: "Olympos",
		Sport:       models.SportFootball,
		StartTime:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	decisions, err := r.Resolve(context.Background(), []models.RawMatch{raw})
	if err != nil {
		t.Fatal(err)
	}
	if decisions[0].ExistingID != 0 || decisions[0].NewMatch == nil {
		t.Fatalf("expected a brand new match, got %+v", decisions[0])
	}
}

func TestResolve_DeterministicOrdering(t *testing.T) {
	store := &fakeStore{}
	r := New(store)
	later := models.RawMatch{ProviderID: 1, HomeTeamRaw: "A", AwayTeamRaw: "B", Sport: models.SportFootball, StartTime: time.Unix(200, 0)}
	earlier := models.RawMatch{ProviderID: 1, HomeTeamRaw: "C", AwayTeamRaw: "D", Sport: models.SportFootball, StartTime: time.Unix(100, 0)}

	decisions, err := r.Resolve(context.Background(), []models.RawMatch{later, earlier})
	if err != nil {
		t.Fatal(err)
	}
	if decisions[0].Raw.StartTime.After(decisions[1].Raw.StartTime) {
		t.Fatal("expected sport-then-start-time deterministic ordering")
	}
}
