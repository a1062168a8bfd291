package arbitrage

import (
	"testing"
	"time"

	"github.com/oddsforge/arbiter/internal/models"
)

func TestDetectMovements_FlagsPastThreshold(t *testing.T) {
	now := time.Now()
	key := models.OddsKey{MatchID: 1, ProviderID: 1, BetTypeID: 1, Selection: ""}
	previous := map[models.OddsKey]models.CurrentOdds{
		key: {OddsKey: key, P1: 1.90, P2: 3.40, P3: 4.00, UpdatedAt: now.Add(-time.Minute)},
	}
	incoming := []models.CurrentOdds{
		{OddsKey: key, P1: 1.50, P2: 3.40, P3: 4.00, UpdatedAt: now}, // ~21% drop on home
	}

	moves := DetectMovements(previous, incoming, DefaultMovementThresholdPercent, now)
	if len(moves) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(moves))
	}
	if moves[0].PreviousPrice != 1.90 || moves[0].CurrentPrice != 1.50 {
		t.Fatalf("unexpected movement: %+v", moves[0])
	}
	if moves[0].ChangePercent >= 0 {
		t.Fatalf("expected a negative change percent for a price drop, got %v", moves[0].ChangePercent)
	}
}

func TestDetectMovements_IgnoresBelowThreshold(t *testing.T) {
	now := time.Now()
	key := models.OddsKey{MatchID: 1, ProviderID: 1, BetTypeID: 1}
	previous := map[models.OddsKey]models.CurrentOdds{
		key: {OddsKey: key, P1: 1.90, UpdatedAt: now},
	}
	incoming := []models.CurrentOdds{
		{OddsKey: key, P1: 1.88, UpdatedAt: now}, // ~1% move
	}
	moves := DetectMovements(previous, incoming, DefaultMovementThresholdPercent, now)
	if len(moves) != 0 {
		t.Fatalf("expected no movement below threshold, got %+v", moves)
	}
}

func TestDetectMovements_NoPriorSnapshotSkipped(t *testing.T) {
	now := time.Now()
	incoming := []models.CurrentOdds{
		{OddsKey: models.OddsKey{MatchID: 1, ProviderID: 1, BetTypeID: 1}, P1: 2.0, UpdatedAt: now},
	}
	moves := DetectMovements(nil, incoming, DefaultMovementThresholdPercent, now)
	if len(moves) != 0 {
		t.Fatalf("expected no movements with no prior data, got %+v", moves)
	}
}
