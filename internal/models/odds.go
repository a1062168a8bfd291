package models

import "time"

// OddsKey is the five-tuple primary key of CurrentOdds (§3 invariants).
type OddsKey struct {
	MatchID    int64
	ProviderID int
	BetTypeID  int
	Margin     float64
	Selection  string
}

// CurrentOdds is the latest observation for one (match, provider, bet type,
// margin, selection) key; overwritten in place every cycle (§3).
type CurrentOdds struct {
	OddsKey
	P1, P2, P3 float64
	UpdatedAt  time.Time
}

// OddsHistoryRow is one append-only observation, retained on a rolling
// window (§3, default 7 days).
type OddsHistoryRow struct {
	OddsKey
	P1, P2, P3 float64
	ObservedAt time.Time
}
