package arbitrage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/oddsforge/arbiter/internal/models"
)

// priceTick is the rounding precision content hashing uses so that
// sub-tick price jitter (e.g. a provider re-serving 1.9099999999) doesn't
// spuriously mint a new opportunity on every cycle (§4.7 step 6).
const priceTick = 0.001

// ContentHash computes a deterministic hash over the sorted legs of an
// opportunity, so re-detecting the exact same combination across cycles
// produces the same hash and the persister's ON CONFLICT upsert treats it as
// a refresh rather than a new row (§3, §4.7 step 6).
func ContentHash(matchID int64, betTypeID int, margin float64, legs []models.Leg) uint64 {
	sorted := make([]models.Leg, len(legs))
	copy(sorted, legs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].OutcomeIndex < sorted[j].OutcomeIndex })

	var b strings.Builder
	fmt.Fprintf(&b, "%d|%d|%.3f", matchID, betTypeID, margin)
	for _, l := range sorted {
		tick := roundToTick(l.Price)
		fmt.Fprintf(&b, "|%d:%d:%.3f", l.OutcomeIndex, l.ProviderID, tick)
	}
	return xxhash.Sum64String(b.String())
}

func roundToTick(p float64) float64 {
	return float64(int64(p/priceTick+0.5)) * priceTick
}
