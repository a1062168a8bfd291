package persister

import (
	"testing"
	"time"

	"github.com/oddsforge/arbiter/internal/models"
)

func TestDedupeByKey_LastObservationWins(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Second)
	key := models.OddsKey{MatchID: 1, ProviderID: 2, BetTypeID: 3, Margin: 0, Selection: ""}

	rows := []models.CurrentOdds{
		{OddsKey: key, P1: 1.90, P2: 1.95, UpdatedAt: t0},
		{OddsKey: key, P1: 1.92, P2: 1.93, UpdatedAt: t1},
		{OddsKey: models.OddsKey{MatchID: 1, ProviderID: 2, BetTypeID: 4, Margin: 0, Selection: ""}, P1: 2.5, UpdatedAt: t0},
	}

	out := dedupeByKey(rows)
	if len(out) != 2 {
		t.Fatalf("expected 2 deduped rows, got %d", len(out))
	}
	if out[0].BetTypeID != 3 || out[0].P1 != 1.92 {
		t.Fatalf("expected latest observation to win, got %+v", out[0])
	}
	if out[0].UpdatedAt != t1 {
		t.Fatalf("expected timestamp %v, got %v", t1, out[0].UpdatedAt)
	}
}

func TestDedupeByKey_PreservesFirstSeenOrder(t *testing.T) {
	now := time.Now()
	rows := []models.CurrentOdds{
		{OddsKey: models.OddsKey{MatchID: 1, ProviderID: 1, BetTypeID: 10}, P1: 2.0, UpdatedAt: now},
		{OddsKey: models.OddsKey{MatchID: 1, ProviderID: 1, BetTypeID: 11}, P1: 3.0, UpdatedAt: now},
	}
	out := dedupeByKey(rows)
	if len(out) != 2 || out[0].BetTypeID != 10 || out[1].BetTypeID != 11 {
		t.Fatalf("expected insertion order preserved, got %+v", out)
	}
}

func TestNullableOdd(t *testing.T) {
	if nullableOdd(0) != nil {
		t.Fatal("expected zero price to map to NULL (unused outcome slot)")
	}
	if nullableOdd(1.85) != 1.85 {
		t.Fatal("expected non-zero price to pass through")
	}
}
