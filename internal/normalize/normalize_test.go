package normalize

import (
	"testing"

	"github.com/oddsforge/arbiter/internal/models"
)

func TestTeam_Idempotent(t *testing.T) {
	// §8 invariant 3: normalize(normalize(s)) == normalize(s).
	cases := []string{"FC Bayern München", "Crvena Zvezda", "rc hades", "Manchester United"}
	for _, c := range cases {
		once := Team(c)
		twice := Team(once)
		if once != twice {
			t.Errorf("Team(%q) not idempotent: %q vs %q", c, once, twice)
		}
	}
}

func TestTeam_DiacriticAndAffixFold(t *testing.T) {
	if got := Team("FC Bayern München"); got != "bayern münchen" && got != "bayern munchen" {
		t.Errorf("unexpected normalization: %q", got)
	}
	if got, want := Team("FC Porto"), Team("Porto"); got != want {
		t.Errorf("affix stripping mismatch: %q vs %q", got, want)
	}
}

func TestEvent_TennisSurnameBothOrders(t *testing.T) {
	last := Event("Djokovic, Novak", models.SportTennis)
	first := Event("Novak Djokovic", models.SportTennis)
	if last != first {
		t.Errorf("expected order-insensitive surname match, got %q vs %q", last, first)
	}
	if last != "djokovic" {
		t.Errorf("expected surname djokovic, got %q", last)
	}
}
