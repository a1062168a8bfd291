// Package cmc is the Canonical Market Codec: the closed vocabulary that every
// vendor market is projected into, so the same real-world wager from any
// provider produces an identical (bet_type_id, selection, margin) key.
//
// The vocabulary table below is representative of the full ≈124-entry set
// described in §3 and §4.1; it covers one bet type per documented
// category and is append-only and operator-extensible, exactly like the
// prior event-type table (internal/pkg/models.StandardEventType).
package cmc

import "github.com/oddsforge/arbiter/internal/models"

// Bet type IDs. Keep numbering stable — these are persisted.
const (
	BetOneXTwo          = 1  // arity 3: home/draw/away
	BetTotalOverUnder   = 2  // arity 2: margin = line
	BetBothTeamsToScore = 3  // arity 2
	BetAsianHandicap    = 4  // arity 2: margin = line, positive = home advantage
	BetOddEven          = 5  // arity 2
	BetOneXTwoFirstHalf = 6  // arity 3
	BetDoubleChance     = 7  // arity 3
	BetEuropeanHandicap = 8  // arity 3: margin = line
	BetCorrectScore     = 9  // arity 1, partition "correct_score"
	BetHTFT             = 10 // arity 1, partition "ht_ft"
	BetExactGoals       = 11 // arity 1, partition "exact_goals"
	BetGoalRange        = 12 // arity 1 (no partition — ranges overlap, never a complete cover)
	BetFirstGoal        = 13 // arity 1, partition "first_goal"
)

// Table is the live vocabulary, keyed by bet type id.
var Table = map[int]models.BetType{
	BetOneXTwo:          {ID: BetOneXTwo, Name: "1X2", Arity: models.Arity3},
	BetTotalOverUnder:   {ID: BetTotalOverUnder, Name: "Total Over/Under", Arity: models.Arity2},
	BetBothTeamsToScore: {ID: BetBothTeamsToScore, Name: "Both Teams To Score", Arity: models.Arity2},
	BetAsianHandicap:    {ID: BetAsianHandicap, Name: "Asian Handicap", Arity: models.Arity2},
	BetOddEven:          {ID: BetOddEven, Name: "Odd/Even", Arity: models.Arity2},
	BetOneXTwoFirstHalf: {ID: BetOneXTwoFirstHalf, Name: "1X2 (1st Half)", Arity: models.Arity3},
	BetDoubleChance:     {ID: BetDoubleChance, Name: "Double Chance", Arity: models.Arity3},
	BetEuropeanHandicap: {ID: BetEuropeanHandicap, Name: "European Handicap", Arity: models.Arity3},
	BetCorrectScore:     {ID: BetCorrectScore, Name: "Correct Score", Arity: models.Arity1, Partition: "correct_score"},
	BetHTFT:             {ID: BetHTFT, Name: "Halftime/Fulltime", Arity: models.Arity1, Partition: "ht_ft"},
	BetExactGoals:       {ID: BetExactGoals, Name: "Exact Goals", Arity: models.Arity1, Partition: "exact_goals"},
	BetGoalRange:        {ID: BetGoalRange, Name: "Goal Range", Arity: models.Arity1},
	BetFirstGoal:        {ID: BetFirstGoal, Name: "First Goal", Arity: models.Arity1, Partition: "first_goal"},
}

// Lookup returns the BetType for id, or false if the vocabulary does not know it.
func Lookup(id int) (models.BetType, bool) {
	bt, ok := Table[id]
	return bt, ok
}
