package models

import "time"

// RawOdds is one priced market already encoded through the CMC (§3). It is
// embedded in a RawMatch and never persisted as-is.
type RawOdds struct {
	BetTypeID int
	Selection string
	Margin    float64
	P1, P2, P3 float64
}

// RawMatch is one provider's view of an event for a single scrape (§3).
// Created per scrape, consumed by the resolver, never persisted directly.
type RawMatch struct {
	ProviderID     int
	HomeTeamRaw    string
	AwayTeamRaw    string
	Sport          SportID
	StartTime      time.Time
	League         string // optional; empty when the provider doesn't expose one
	ExternalEventID string // optional provider-local event id
	Odds           []RawOdds
}
