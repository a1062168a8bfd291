package cmc

import (
	"fmt"
	"log/slog"

	"github.com/oddsforge/arbiter/internal/models"
)

// Key is the provider-independent canonical wager identity (§3).
type Key struct {
	BetTypeID int
	Selection string
	Margin    float64
}

// VendorRow is what a provider adapter hands the codec for one priced market.
type VendorRow struct {
	Provider  int
	BetTypeID int     // already resolved to our vocabulary by the adapter's own lookup table
	Selection string  // raw, pre-normalization selection (may be "")
	Margin    float64 // raw line/threshold; sign convention is the adapter's own unless Quirk says otherwise
	P1, P2, P3 float64
}

// Quirk names a per-provider idiosyncrasy the codec corrects for (§4.1).
type Quirk int

const (
	QuirkNone Quirk = iota
	// QuirkInvertHandicapSign negates the handicap line on European
	// (three-way) and Asian handicap markets, because this provider family
	// reports it in the opposite ("negative = home advantage") convention
	// from ours.
	QuirkInvertHandicapSign
	// QuirkHTFTDashSeparator rewrites "-" separated HT/FT selections to "/".
	QuirkHTFTDashSeparator
	// QuirkRomanHalfLocalizedCombo folds Roman-numeral half suffixes and
	// localized Tim1/Tim2/GG/NG tokens into the canonical vocabulary.
	QuirkRomanHalfLocalizedCombo
	// QuirkGoalRangeDigitIsExactGoals re-routes a standalone digit selection
	// under the goal-range bet type to the exact-goals bet type.
	QuirkGoalRangeDigitIsExactGoals
)

// UnmappedMarket is emitted (never as an error) when a vendor code/name has
// no entry in the vocabulary, so operators can extend the mapping tables.
type UnmappedMarket struct {
	Provider   int
	VendorCode string
	Reason     string
}

// Encode projects one vendor row into the canonical key space, applying the
// quirks declared for that provider. ok is false for an unmapped market —
// never an error (§4.1, §7).
func Encode(row VendorRow, quirks ...Quirk) (Key, bool) {
	bt, known := Lookup(row.BetTypeID)
	if !known {
		logUnmapped(UnmappedMarket{Provider: row.Provider, VendorCode: fmt.Sprintf("bet_type:%d", row.BetTypeID), Reason: "unknown bet_type_id"})
		return Key{}, false
	}

	sel := row.Selection
	margin := row.Margin
	betTypeID := row.BetTypeID

	for _, q := range quirks {
		switch q {
		case QuirkInvertHandicapSign:
			if betTypeID == BetEuropeanHandicap || betTypeID == BetAsianHandicap {
				margin = -margin
			}
		case QuirkHTFTDashSeparator:
			if betTypeID == BetHTFT {
				sel = NormalizeHTFTSeparator(sel)
			}
		case QuirkRomanHalfLocalizedCombo:
			sel = RomanHalfToPrefix(FoldLocalizedTokens(sel))
		case QuirkGoalRangeDigitIsExactGoals:
			if betTypeID == BetGoalRange {
				if exact, ok := GoalRangeDigitToExactGoals(sel); ok {
					betTypeID = BetExactGoals
					sel = exact
				}
			}
		}
	}

	key := Key{BetTypeID: betTypeID, Selection: sel, Margin: margin}
	if err := Validate(key, bt.Arity, row.P1, row.P2, row.P3); err != nil {
		logUnmapped(UnmappedMarket{Provider: row.Provider, VendorCode: fmt.Sprintf("bet_type:%d selection:%s", betTypeID, sel), Reason: err.Error()})
		return Key{}, false
	}
	return key, true
}

// Validate rejects rows whose arity, price count, or selection syntax
// violates the contract (§4.1). For arity k, only the first k price fields
// may be non-zero; others must be zero and must never be consulted.
func Validate(key Key, arity models.Arity, p1, p2, p3 float64) error {
	switch arity {
	case models.Arity1:
		if key.Selection == "" {
			return fmt.Errorf("arity-1 bet type requires a non-empty selection")
		}
		if p1 <= 1.0 {
			return fmt.Errorf("arity-1 bet type requires p1 > 1.0, got %v", p1)
		}
		if p2 != 0 || p3 != 0 {
			return fmt.Errorf("arity-1 bet type must carry only p1")
		}
	case models.Arity2:
		if p1 <= 1.0 || p2 <= 1.0 {
			return fmt.Errorf("arity-2 bet type requires p1 and p2 > 1.0")
		}
		if p3 != 0 {
			return fmt.Errorf("arity-2 bet type must not carry p3")
		}
	case models.Arity3:
		if p1 <= 1.0 || p2 <= 1.0 || p3 <= 1.0 {
			return fmt.Errorf("arity-3 bet type requires p1, p2 and p3 > 1.0")
		}
	default:
		return fmt.Errorf("unknown arity %d", arity)
	}
	return nil
}

// Decode produces a human-readable label for a canonical key, used by the
// publisher (§4.1 operation 2).
func Decode(key Key) string {
	bt, ok := Lookup(key.BetTypeID)
	if !ok {
		return fmt.Sprintf("unknown(%d)", key.BetTypeID)
	}
	switch bt.Arity {
	case models.Arity1:
		return fmt.Sprintf("%s: %s", bt.Name, key.Selection)
	default:
		if key.Margin != 0 {
			return fmt.Sprintf("%s (%+g)", bt.Name, key.Margin)
		}
		return bt.Name
	}
}

// logUnmapped emits at debug level: unmapped markets are never persisted and
// never treated as errors (§4.1, §7).
func logUnmapped(u UnmappedMarket) {
	slog.Debug("cmc: unmapped market", "provider", u.Provider, "vendor_code", u.VendorCode, "reason", u.Reason)
}
