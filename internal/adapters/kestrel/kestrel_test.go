package kestrel

import (
	"testing"

	"github.com/oddsforge/arbiter/internal/cmc"
)

func TestBuildOdds_AssemblesOneXTwoFromThreeFactors(t *testing.T) {
	factors := []factor{
		{EventID: 1, Factor: 921, Value: 2.10},
		{EventID: 1, Factor: 922, Value: 3.40},
		{EventID: 1, Factor: 923, Value: 3.80},
	}
	odds := buildOdds(factors)
	if len(odds) != 1 {
		t.Fatalf("expected 1 row, got %d", len(odds))
	}
	if odds[0].BetTypeID != cmc.BetOneXTwo || odds[0].P1 != 2.10 || odds[0].P2 != 3.40 || odds[0].P3 != 3.80 {
		t.Fatalf("unexpected row: %+v", odds[0])
	}
}

func TestBuildOdds_DropsIncompleteOneXTwo(t *testing.T) {
	factors := []factor{
		{EventID: 1, Factor: 921, Value: 2.10},
		{EventID: 1, Factor: 922, Value: 3.40},
	}
	odds := buildOdds(factors)
	if len(odds) != 0 {
		t.Fatalf("expected no row for an incomplete 1X2, got %+v", odds)
	}
}

func TestBuildOdds_PairsTotalsByParam(t *testing.T) {
	factors := []factor{
		{EventID: 1, Factor: 184, Value: 1.90, Param: 2.5},
		{EventID: 1, Factor: 185, Value: 1.95, Param: 2.5},
	}
	odds := buildOdds(factors)
	if len(odds) != 1 || odds[0].BetTypeID != cmc.BetTotalOverUnder {
		t.Fatalf("expected 1 total row, got %+v", odds)
	}
	if odds[0].P1 != 1.90 || odds[0].P2 != 1.95 || odds[0].Margin != 2.5 {
		t.Fatalf("unexpected total row: %+v", odds[0])
	}
}

func TestBuildOdds_IgnoresUnmappedFactorCode(t *testing.T) {
	factors := []factor{{EventID: 1, Factor: 99999, Value: 1.5}}
	if odds := buildOdds(factors); len(odds) != 0 {
		t.Fatalf("expected unmapped factor code to be dropped silently, got %+v", odds)
	}
}
