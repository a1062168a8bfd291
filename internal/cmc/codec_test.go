package cmc

import "testing"

// Property test seeded by the cross-provider audit fixtures (§8 invariant 1):
// two providers offering the identical real-world wager must encode to the
// same canonical key.
func TestEncode_CrossProviderAgreement(t *testing.T) {
	rowA := VendorRow{Provider: 1, BetTypeID: BetOneXTwo, P1: 2.10, P2: 3.40, P3: 3.60}
	rowB := VendorRow{Provider: 2, BetTypeID: BetOneXTwo, P1: 2.05, P2: 3.50, P3: 3.55}

	keyA, okA := Encode(rowA)
	keyB, okB := Encode(rowB)
	if !okA || !okB {
		t.Fatalf("expected both rows to encode, got okA=%v okB=%v", okA, okB)
	}
	if keyA.BetTypeID != keyB.BetTypeID || keyA.Selection != keyB.Selection || keyA.Margin != keyB.Margin {
		t.Fatalf("expected identical canonical key, got %+v vs %+v", keyA, keyB)
	}
}

// §8 invariant 4 / boundary scenario 2: provider X reports the handicap line
// in the negated convention on 3-way football; after the codec's quirk for
// that provider family, both rows' margins must agree.
func TestEncode_HandicapSignConvention(t *testing.T) {
	// Provider X: raw home line is -1.0 in "negative = home advantage" convention —
	// the quirk inverts it to our "positive = home advantage" convention.
	rowX := VendorRow{Provider: 10, BetTypeID: BetEuropeanHandicap, Margin: -1.0, P1: 1.70, P2: 3.40, P3: 5.50}
	// Provider Y already reports in our convention.
	rowY := VendorRow{Provider: 11, BetTypeID: BetEuropeanHandicap, Margin: 1.0, P1: 1.72, P2: 3.35, P3: 5.20}

	keyX, okX := Encode(rowX, QuirkInvertHandicapSign)
	keyY, okY := Encode(rowY)
	if !okX || !okY {
		t.Fatalf("expected both rows to encode, got okX=%v okY=%v", okX, okY)
	}
	if keyX.Margin != keyY.Margin {
		t.Fatalf("expected equal margins after sign correction, got %v vs %v", keyX.Margin, keyY.Margin)
	}
	if keyX.Margin != 1.0 {
		t.Fatalf("expected margin +1.0 (positive = home advantage), got %v", keyX.Margin)
	}
}

// Boundary scenario 1: three providers describe the same HT/FT wager with
// "1-1", "1/1" and (already-decoded) "1/1"; all must persist selection "1/1".
func TestEncode_HTFTSeparatorNormalization(t *testing.T) {
	dash := VendorRow{Provider: 20, BetTypeID: BetHTFT, Selection: "1-1", P1: 5.50}
	slash := VendorRow{Provider: 21, BetTypeID: BetHTFT, Selection: "1/1", P1: 5.60}

	keyDash, ok := Encode(dash, QuirkHTFTDashSeparator)
	if !ok {
		t.Fatal("expected dash-separated row to encode")
	}
	keySlash, ok := Encode(slash, QuirkHTFTDashSeparator)
	if !ok {
		t.Fatal("expected slash-separated row to encode")
	}
	if keyDash.Selection != "1/1" || keySlash.Selection != "1/1" {
		t.Fatalf("expected both to normalize to 1/1, got %q and %q", keyDash.Selection, keySlash.Selection)
	}
}

// Roman-numeral half suffix + localized team tokens fold to canonical vocabulary.
func TestEncode_RomanHalfAndLocalizedTokens(t *testing.T) {
	row := VendorRow{Provider: 30, BetTypeID: BetFirstGoal, Selection: "I:Tim1", P1: 1.90}
	key, ok := Encode(row, QuirkRomanHalfLocalizedCombo)
	if !ok {
		t.Fatal("expected row to encode")
	}
	if key.Selection != "H1:H" {
		t.Fatalf("expected H1:H, got %q", key.Selection)
	}
}

// Boundary scenario 3: a "goal range" market emitting a bare digit selection
// must be re-routed to exact_goals with a T prefix.
func TestEncode_GoalRangeDigitReroutesToExactGoals(t *testing.T) {
	row := VendorRow{Provider: 40, BetTypeID: BetGoalRange, Selection: "3", P1: 6.00}
	key, ok := Encode(row, QuirkGoalRangeDigitIsExactGoals)
	if !ok {
		t.Fatal("expected row to encode")
	}
	if key.BetTypeID != BetExactGoals || key.Selection != "T3" {
		t.Fatalf("expected exact_goals/T3, got bet_type=%d selection=%q", key.BetTypeID, key.Selection)
	}
}

// A genuine range selection (not a bare digit) stays under goal-range.
func TestEncode_GoalRangeTrueRangeUnaffected(t *testing.T) {
	row := VendorRow{Provider: 40, BetTypeID: BetGoalRange, Selection: "0-2", P1: 1.80}
	key, ok := Encode(row, QuirkGoalRangeDigitIsExactGoals)
	if !ok {
		t.Fatal("expected row to encode")
	}
	if key.BetTypeID != BetGoalRange || key.Selection != "0-2" {
		t.Fatalf("expected goal_range/0-2 unchanged, got bet_type=%d selection=%q", key.BetTypeID, key.Selection)
	}
}

func TestEncode_UnmappedMarketIsNotError(t *testing.T) {
	row := VendorRow{Provider: 1, BetTypeID: 99999, P1: 2.0, P2: 2.0}
	_, ok := Encode(row)
	if ok {
		t.Fatal("expected unknown bet type to be unmapped, not encoded")
	}
}

func TestEncode_InvariantViolationRejected(t *testing.T) {
	// arity-3 row missing p3
	row := VendorRow{Provider: 1, BetTypeID: BetOneXTwo, P1: 2.0, P2: 3.0}
	_, ok := Encode(row)
	if ok {
		t.Fatal("expected row with missing p3 on arity-3 bet type to be rejected")
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	key := Key{BetTypeID: BetTotalOverUnder, Margin: 2.5}
	label := Decode(key)
	if label != "Total Over/Under (+2.5)" {
		t.Fatalf("unexpected label: %q", label)
	}
}
