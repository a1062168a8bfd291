package cmc

import "strconv"

// Partition declares the full set of mutually-exclusive selections that make
// up a complete outcome cover for an arity-1 bet type. The arbitrage engine
// (internal/arbitrage) only ever combines arity-1 rows into an opportunity
// when every selection in a partition is present across the group — it never
// infers a partition from row counts (§9 Design Notes).
//
// Open Question resolution (§9): the original vocabulary source is inconsistent
// about whether "any other score" closes the correct-score partition. We
// declare it explicitly closed here — CorrectScorePartition includes the
// "other" selection as a full outcome — so the engine's completeness check
// is unambiguous rather than inferred.
type Partition struct {
	Name       string
	Selections []string
}

var (
	// HTFTPartition: 3 halftime states x 3 fulltime states = 9 selections.
	HTFTPartition = Partition{
		Name: "ht_ft",
		Selections: []string{
			"1/1", "1/X", "1/2",
			"X/1", "X/X", "X/2",
			"2/1", "2/X", "2/2",
		},
	}

	// FirstGoalPartition: who scores first, or neither (X = no goal / 0-0).
	FirstGoalPartition = Partition{
		Name:       "first_goal",
		Selections: []string{"H", "A", "X"},
	}

	// CorrectScorePartition (below) declares a closed correct-score cover for
	// scores up to maxGoals per side plus a catch-all "other" selection.
	// Declared intentionally (see Open Question note above) rather than
	// inferred from whatever rows a provider happens to send.
)

// CorrectScorePartition builds the closed correct-score partition for a
// given per-side goal cap (the common sportsbook convention caps explicit
// scorelines at 4-4 or so and buckets the rest into "other").
func CorrectScorePartition(maxGoalsPerSide int) Partition {
	var sels []string
	for h := 0; h <= maxGoalsPerSide; h++ {
		for a := 0; a <= maxGoalsPerSide; a++ {
			sels = append(sels, scoreSelection(h, a))
		}
	}
	sels = append(sels, "other")
	return Partition{Name: "correct_score", Selections: sels}
}

func scoreSelection(h, a int) string {
	return strconv.Itoa(h) + ":" + strconv.Itoa(a)
}

// ExactGoalsPartition declares the closed cover for the "T-prefixed exact
// goal count" market: "T0" through "T<cap-1>" plus an open-ended "T<cap>+"
// bucket, in the same T-prefixed form the codec produces when it re-routes
// goal-range digits (§4.1 quirk 4).
func ExactGoalsPartition(cap int) Partition {
	sels := make([]string, 0, cap+1)
	for n := 0; n < cap; n++ {
		sels = append(sels, "T"+strconv.Itoa(n))
	}
	sels = append(sels, "T"+strconv.Itoa(cap)+"+")
	return Partition{Name: "exact_goals", Selections: sels}
}

// partitionsByName is looked up by the arbitrage engine when it needs to
// check a group of arity-1 rows for completeness.
var partitionsByName = map[string]Partition{
	"ht_ft":         HTFTPartition,
	"first_goal":    FirstGoalPartition,
	"correct_score": CorrectScorePartition(4),
	"exact_goals":   ExactGoalsPartition(6),
}

// PartitionFor returns the declared partition for a bet type's Partition
// name, or false if the bet type does not participate in arbitrage grouping
// (arity-1 bet types with no declared partition, e.g. goal-range, are never
// combined into arbitrage — §4.7).
func PartitionFor(name string) (Partition, bool) {
	if name == "" {
		return Partition{}, false
	}
	p, ok := partitionsByName[name]
	return p, ok
}
