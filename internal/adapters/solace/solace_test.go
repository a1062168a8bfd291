package solace

import (
	"testing"
	"time"

	"github.com/oddsforge/arbiter/internal/models"
)

func TestBuildOdds_MoneylineAndTotal(t *testing.T) {
	events := []event{
		{G: groupMoneyline, T: 1, C: 2.2},
		{G: groupMoneyline, T: 2, C: 3.1},
		{G: groupMoneyline, T: 3, C: 3.6},
		{G: groupTotal, T: 1, P: 2.5, C: 1.88},
		{G: groupTotal, T: 2, P: 2.5, C: 1.92},
	}
	odds := buildOdds(events)
	if len(odds) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(odds), odds)
	}
}

func TestBuildRawMatch_RequiresBothTeamNames(t *testing.T) {
	m := match{O1: "", O2: "Team B", S: time.Now().Add(time.Hour).Unix()}
	if rm := buildRawMatch(m, models.SportFootball); rm != nil {
		t.Fatalf("expected nil for a missing team name, got %+v", rm)
	}
}

func TestBuildRawMatch_UnmappedGroupIgnored(t *testing.T) {
	m := match{
		O1: "A", O2: "B", S: time.Now().Add(time.Hour).Unix(),
		E: []event{{G: 999, T: 1, C: 1.5}},
	}
	if rm := buildRawMatch(m, models.SportFootball); rm != nil {
		t.Fatalf("expected no odds from an unmapped group, got %+v", rm)
	}
}
