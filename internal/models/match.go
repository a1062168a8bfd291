package models

import "time"

// MatchStatus tracks a Match's lifecycle (§3).
type MatchStatus string

const (
	StatusUpcoming MatchStatus = "upcoming"
	StatusLive     MatchStatus = "live"
	StatusFinished MatchStatus = "finished"
	StatusCancelled MatchStatus = "cancelled"
)

// Match is the internal, cross-provider event identity the resolver folds
// every RawMatch into (§3, §4.5).
type Match struct {
	ID              int64
	Team1Raw        string
	Team2Raw        string
	Team1Normalized string
	Team2Normalized string
	Sport           SportID
	LeagueID        *int64
	StartTime       time.Time
	ExternalIDs     map[int]string // provider_id -> provider-local event id
	Status          MatchStatus
}

// LiveAt reports whether t falls inside this match's live window, i.e.
// kickoff has passed but the §4.6 sweeper grace period (start+4h) has not.
func (m Match) LiveAt(t time.Time) bool {
	return !t.Before(m.StartTime) && t.Before(m.StartTime.Add(4*time.Hour))
}
