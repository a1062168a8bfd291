// Package arbitrage implements the arbitrage engine (§4.7): for every
// (match, bet type, margin) group, picks the best price per outcome across
// providers and flags any combination whose implied probabilities sum to
// less than one. Mirrors
// internal/calculator/calculator/{matcher.go,value_calculator.go}, which runs
// the same best-price-per-outcome scan over a slice of provider quotes,
// generalized here from the prior single 1X2 shape to every CMC arity
// plus the declared arity-1 selection partitions.
package arbitrage

import (
	"sort"
	"time"

	"github.com/oddsforge/arbiter/internal/cmc"
	"github.com/oddsforge/arbiter/internal/models"
)

// MinProfitPercent is the floor below which Detect discards a combination as
// noise (§6 default). Detect always applies it; a configured
// min_profit_percentage is applied by the scheduler on top of it, so config
// can raise the floor but not lower it.
const MinProfitPercent = 0.1

// groupKey identifies one (match, bet type, margin) group the engine scans
// independently, per §4.7 step 1.
type groupKey struct {
	MatchID   int64
	BetTypeID int
	Margin    float64
}

// Detect scans every current_odds row supplied (already filtered to matches
// that haven't started, per the caller) and returns the arbitrage
// opportunities found, one per qualifying group. startTimes supplies each
// match's kickoff for the opportunity's expiry.
func Detect(rows []models.CurrentOdds, startTimes map[int64]time.Time, now time.Time) []models.Arbitrage {
	groups := groupRows(rows)

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].MatchID != keys[j].MatchID {
			return keys[i].MatchID < keys[j].MatchID
		}
		if keys[i].BetTypeID != keys[j].BetTypeID {
			return keys[i].BetTypeID < keys[j].BetTypeID
		}
		return keys[i].Margin < keys[j].Margin
	})

	var out []models.Arbitrage
	for _, k := range keys {
		bt, ok := cmc.Lookup(k.BetTypeID)
		if !ok {
			continue
		}
		legs, ok := bestLegs(bt, groups[k])
		if !ok {
			continue
		}
		arb, ok := evaluate(k, legs, now)
		if !ok {
			continue
		}
		arb.ExpiresAt = startTimes[k.MatchID]
		out = append(out, arb)
	}
	return out
}

func groupRows(rows []models.CurrentOdds) map[groupKey][]models.CurrentOdds {
	groups := make(map[groupKey][]models.CurrentOdds)
	for _, r := range rows {
		k := groupKey{MatchID: r.MatchID, BetTypeID: r.BetTypeID, Margin: r.Margin}
		groups[k] = append(groups[k], r)
	}
	return groups
}

// bestLegs selects the best price per outcome for a group. For arity 2/3 bet
// types the outcome is the price-field index; for arity-1 bet types with a
// declared partition, the outcome is the selection string, and every
// selection in the partition must be present or the group is incomplete
// (§4.7 step 2, §9 Design Notes: partitions are declared, never inferred).
func bestLegs(bt models.BetType, rows []models.CurrentOdds) ([]models.Leg, bool) {
	switch bt.Arity {
	case models.Arity2, models.Arity3:
		return bestLegsByOutcomeIndex(rows, int(bt.Arity))
	case models.Arity1:
		partition, ok := cmc.PartitionFor(bt.Partition)
		if !ok {
			return nil, false
		}
		return bestLegsBySelection(rows, partition)
	default:
		return nil, false
	}
}

func bestLegsByOutcomeIndex(rows []models.CurrentOdds, arity int) ([]models.Leg, bool) {
	best := make(map[int]models.Leg, arity)
	for _, r := range rows {
		prices := []float64{r.P1, r.P2, r.P3}
		for idx := 0; idx < arity; idx++ {
			p := prices[idx]
			if p <= 1.0 {
				continue
			}
			outcome := idx + 1
			cur, exists := best[outcome]
			if !exists || p > cur.Price || (p == cur.Price && r.ProviderID < cur.ProviderID) {
				best[outcome] = models.Leg{ProviderID: r.ProviderID, OutcomeIndex: outcome, Price: p}
			}
		}
	}
	if len(best) != arity {
		return nil, false
	}
	legs := make([]models.Leg, 0, arity)
	for outcome := 1; outcome <= arity; outcome++ {
		legs = append(legs, best[outcome])
	}
	return legs, true
}

func bestLegsBySelection(rows []models.CurrentOdds, partition cmc.Partition) ([]models.Leg, bool) {
	bySelection := make(map[string]models.CurrentOdds, len(partition.Selections))
	for _, r := range rows {
		if r.P1 <= 1.0 {
			continue
		}
		cur, exists := bySelection[r.Selection]
		if !exists || r.P1 > cur.P1 || (r.P1 == cur.P1 && r.ProviderID < cur.ProviderID) {
			bySelection[r.Selection] = r
		}
	}

	legs := make([]models.Leg, 0, len(partition.Selections))
	for i, sel := range partition.Selections {
		r, ok := bySelection[sel]
		if !ok {
			return nil, false // partition not fully covered — never infer completeness
		}
		legs = append(legs, models.Leg{ProviderID: r.ProviderID, OutcomeIndex: i + 1, Price: r.P1})
	}
	return legs, true
}

// evaluate computes the implied-probability sum, and builds the Arbitrage
// record when S < 1 and the profit clears the noise floor (§4.7 steps 3-5).
func evaluate(k groupKey, legs []models.Leg, now time.Time) (models.Arbitrage, bool) {
	var sumInverse float64
	for _, l := range legs {
		sumInverse += 1 / l.Price
	}
	if sumInverse >= 1.0 {
		return models.Arbitrage{}, false
	}
	profitPct := (1/sumInverse - 1) * 100
	if profitPct < MinProfitPercent {
		return models.Arbitrage{}, false
	}

	stakes := make([]models.Stake, len(legs))
	for i, l := range legs {
		stakes[i] = models.Stake{OutcomeIndex: l.OutcomeIndex, Fraction: (1 / l.Price) / sumInverse}
	}

	return models.Arbitrage{
		MatchID:       k.MatchID,
		BetTypeID:     k.BetTypeID,
		Margin:        k.Margin,
		ProfitPercent: profitPct,
		BestLegs:      legs,
		StakeSplit:    stakes,
		ContentHash:   ContentHash(k.MatchID, k.BetTypeID, k.Margin, legs),
		DetectedAt:    now,
		LastSeenAt:    now,
		Active:        true,
	}, true
}
