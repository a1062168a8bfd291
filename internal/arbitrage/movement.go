package arbitrage

import (
	"time"

	"github.com/oddsforge/arbiter/internal/models"
)

// DefaultMovementThresholdPercent matches the prior
// computeAndStoreLineMovements default sensitivity.
const DefaultMovementThresholdPercent = 5.0

// DetectMovements compares each incoming quote against the previous
// observation for the same five-tuple key in previous (the scheduler passes
// its in-memory map of earlier cycles' rows), and reports, per key, the
// largest price-field move whose magnitude clears thresholdPercent — at most
// one movement per key (§9 supplemented feature, modeled on
// calculator.computeAndStoreLineMovements — generalized here from a
// max/min-snapshot comparison to a direct previous-observation comparison).
func DetectMovements(previous map[models.OddsKey]models.CurrentOdds, incoming []models.CurrentOdds, thresholdPercent float64, now time.Time) []models.LineMovement {
	if thresholdPercent <= 0 {
		thresholdPercent = DefaultMovementThresholdPercent
	}

	var out []models.LineMovement
	for _, cur := range incoming {
		prev, ok := previous[cur.OddsKey]
		if !ok {
			continue
		}
		if m, moved := compareOne(prev, cur, thresholdPercent, now); moved {
			out = append(out, m)
		}
	}
	return out
}

func compareOne(prev, cur models.CurrentOdds, thresholdPercent float64, now time.Time) (models.LineMovement, bool) {
	prevPrices := []float64{prev.P1, prev.P2, prev.P3}
	curPrices := []float64{cur.P1, cur.P2, cur.P3}

	var best models.LineMovement
	var bestAbsPercent float64
	found := false

	for i := 0; i < 3; i++ {
		p, c := prevPrices[i], curPrices[i]
		if p <= 1.0 || c <= 1.0 {
			continue
		}
		changePercent := (c - p) / p * 100
		abs := changePercent
		if abs < 0 {
			abs = -abs
		}
		if abs < thresholdPercent || abs <= bestAbsPercent {
			continue
		}
		bestAbsPercent = abs
		found = true
		best = models.LineMovement{
			MatchID:       cur.MatchID,
			ProviderID:    cur.ProviderID,
			BetTypeID:     cur.BetTypeID,
			Margin:        cur.Margin,
			Selection:     cur.Selection,
			PreviousPrice: p,
			CurrentPrice:  c,
			ChangePercent: changePercent,
			RecordedAt:    now,
		}
	}
	return best, found
}
