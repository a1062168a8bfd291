// Package models holds the core entities shared across the ingestion pipeline:
// the static provider/sport/bet-type vocabulary and the per-cycle record
// shapes (RawMatch/RawOdds) and persisted shapes (Match/CurrentOdds/OddsHistory/Arbitrage).
package models

// FetchDriver names the transport an adapter uses to reach its upstream.
type FetchDriver string

const (
	DriverPlainHTTP     FetchDriver = "plain-http"
	DriverBrowserDriven FetchDriver = "browser-driven"
)

// Provider is a static, small-integer-identified upstream sportsbook.
type Provider struct {
	ID      int
	Name    string
	Enabled bool
	Driver  FetchDriver
}

// SportID is one of the five supported sports.
type SportID int

const (
	SportFootball SportID = iota + 1
	SportBasketball
	SportTennis
	SportHockey
	SportTableTennis
)

func (s SportID) String() string {
	switch s {
	case SportFootball:
		return "football"
	case SportBasketball:
		return "basketball"
	case SportTennis:
		return "tennis"
	case SportHockey:
		return "hockey"
	case SportTableTennis:
		return "table_tennis"
	default:
		return "unknown"
	}
}

// MatchWindow is the resolver's time-proximity tolerance for a sport (§4.5).
func (s SportID) MatchWindow() (window int64, tennisLike bool) {
	switch s {
	case SportTennis:
		return 30 * 60, true
	default:
		return 2 * 60 * 60, false
	}
}

// Arity is the number of meaningful price fields a BetType carries.
type Arity int

const (
	Arity1 Arity = 1 // selection-bearing: only P1 meaningful
	Arity2 Arity = 2 // two-outcome
	Arity3 Arity = 3 // three-outcome
)

// BetType is one append-only entry of the closed wager vocabulary (§4.1).
type BetType struct {
	ID    int
	Name  string
	Arity Arity
	// Partition, when non-empty, names the selection-partition group an
	// arity-1 bet type belongs to for arbitrage purposes (§4.7, §9). Bet
	// types with an empty Partition are never combined into arbitrage.
	Partition string
}
