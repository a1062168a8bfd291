package meridian

import (
	"testing"
	"time"

	"github.com/oddsforge/arbiter/internal/cmc"
	"github.com/oddsforge/arbiter/internal/models"
)

func TestBuildOdds_ResultAndTotal(t *testing.T) {
	outcomes := []vendorOutcome{
		{TableType: "RESULT", ShortName: "1", Probability: "2.05"},
		{TableType: "RESULT", ShortName: "X", Probability: "3.30"},
		{TableType: "RESULT", ShortName: "2", Probability: "3.90"},
		{TableType: "TOTAL", ShortName: "Б", Param: "2.5", Probability: "1.85"},
		{TableType: "TOTAL", ShortName: "М", Param: "2.5", Probability: "1.97"},
	}
	odds := buildOdds(outcomes)
	if len(odds) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(odds), odds)
	}
	var sawOneXTwo, sawTotal bool
	for _, o := range odds {
		if o.BetTypeID == cmc.BetOneXTwo {
			sawOneXTwo = true
			if o.P1 != 2.05 || o.P2 != 3.30 || o.P3 != 3.90 {
				t.Fatalf("unexpected 1x2 row: %+v", o)
			}
		}
		if o.BetTypeID == cmc.BetTotalOverUnder {
			sawTotal = true
			if o.P1 != 1.85 || o.P2 != 1.97 {
				t.Fatalf("unexpected total row: %+v", o)
			}
		}
	}
	if !sawOneXTwo || !sawTotal {
		t.Fatalf("expected both market types, got %+v", odds)
	}
}

func TestBuildRawMatch_SkipsPastKickoff(t *testing.T) {
	ev := vendorEvent{
		Team1Name: "A", Team2Name: "B",
		StartDateTime: time.Now().Add(-time.Hour).Unix(),
		Outcomes: []vendorOutcome{
			{TableType: "RESULT", ShortName: "1", Probability: "2.0"},
			{TableType: "RESULT", ShortName: "X", Probability: "3.0"},
			{TableType: "RESULT", ShortName: "2", Probability: "4.0"},
		},
	}
	if m := buildRawMatch(ev, "league", models.SportFootball); m != nil {
		t.Fatalf("expected a past match to be skipped, got %+v", m)
	}
}
