package models

import "time"

// Leg is one priced outcome contributing to an Arbitrage (§3).
type Leg struct {
	ProviderID   int
	OutcomeIndex int // 1-based position within the bet type's arity, or selection-partition index for arity-1
	Price        float64
}

// Stake is the unit-stake fraction to place on one Leg so every outcome
// returns the same profit (§4.7).
type Stake struct {
	OutcomeIndex int
	Fraction     float64
}

// Arbitrage is a detected risk-free combination across providers (§3).
type Arbitrage struct {
	ID             int64
	MatchID        int64
	BetTypeID      int
	Margin         float64
	ProfitPercent  float64
	BestLegs       []Leg
	StakeSplit     []Stake
	ContentHash    uint64
	DetectedAt     time.Time
	LastSeenAt     time.Time
	ExpiresAt      time.Time // = match start time
	Active         bool
}
