package models

import "time"

// LineMovement is a single provider's price on a single market drifting far
// enough, fast enough, to be worth surfacing on its own, independent of any
// arbitrage combination it may or may not be part of.
type LineMovement struct {
	MatchID       int64
	ProviderID    int
	BetTypeID     int
	Margin        float64
	Selection     string
	PreviousPrice float64
	CurrentPrice  float64
	ChangePercent float64
	RecordedAt    time.Time
}
