package resolver

import (
	"context"
	"sort"
	"time"

	"github.com/oddsforge/arbiter/internal/models"
	"github.com/oddsforge/arbiter/internal/normalize"
)

// Weights for the §4.5 step-3 composite score.
const (
	weightTeamSimilarity = 0.50
	weightTimeProximity  = 0.25
	weightLeagueMatch    = 0.15
	weightPriceCoherence = 0.10

	thresholdAutoMerge      = 85.0
	thresholdConditionalLow = 70.0
	conditionalMaxDelta     = 30 * time.Minute
)

// CandidateStore is the read side of the relational store the resolver
// queries for candidate matches; the bulk persister (internal/persister)
// implements it.
type CandidateStore interface {
	CandidatesInWindow(ctx context.Context, sport models.SportID, from, to time.Time) ([]models.Match, error)
	// LatestPrices returns the current prices stored for a candidate match,
	// used for the price-coherence score component. Implementations may
	// return an empty slice; a resolver with no price data simply scores that
	// component as zero contribution.
	LatestPrices(ctx context.Context, matchID int64) ([]models.CurrentOdds, error)
}

// Decision is the resolver's verdict for one RawMatch.
type Decision struct {
	Raw          models.RawMatch
	ExistingID   int64 // 0 when NewMatch is set instead
	NewMatch     *models.Match
	Score        float64
}

// Resolver implements §4.5.
type Resolver struct {
	store CandidateStore
}

func New(store CandidateStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve folds a provider's batch into per-match decisions. Within a single
// batch, matches are resolved in deterministic sport-then-start-time order so
// two providers that agree exactly on inputs always produce the same
// resolution (§4.5 ordering guarantee).
func (r *Resolver) Resolve(ctx context.Context, batch []models.RawMatch) ([]Decision, error) {
	ordered := make([]models.RawMatch, len(batch))
	copy(ordered, batch)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Sport != ordered[j].Sport {
			return ordered[i].Sport < ordered[j].Sport
		}
		return ordered[i].StartTime.Before(ordered[j].StartTime)
	})

	decisions := make([]Decision, 0, len(ordered))
	for _, raw := range ordered {
		d, err := r.resolveOne(ctx, raw)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}

func (r *Resolver) resolveOne(ctx context.Context, raw models.RawMatch) (Decision, error) {
	window, _ := raw.Sport.MatchWindow()
	w := time.Duration(window) * time.Second
	candidates, err := r.store.CandidatesInWindow(ctx, raw.Sport, raw.StartTime.Add(-w), raw.StartTime.Add(w))
	if err != nil {
		return Decision{}, err
	}

	rawHome := normalize.Event(raw.HomeTeamRaw, raw.Sport)
	rawAway := normalize.Event(raw.AwayTeamRaw, raw.Sport)

	var best *models.Match
	var bestScore float64
	var bestDelta time.Duration

	for i := range candidates {
		c := candidates[i]
		delta := raw.StartTime.Sub(c.StartTime)
		score := r.score(rawHome, rawAway, raw, c, delta, w)
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
			bestDelta = delta
		}
	}

	if best != nil && (bestScore >= thresholdAutoMerge ||
		(bestScore >= thresholdConditionalLow && absDuration(bestDelta) <= conditionalMaxDelta)) {
		merged := mergeExternalID(*best, raw)
		return Decision{Raw: raw, ExistingID: best.ID, NewMatch: &merged, Score: bestScore}, nil
	}

	newMatch := &models.Match{
		Team1Raw:        raw.HomeTeamRaw,
		Team2Raw:        raw.AwayTeamRaw,
		Team1Normalized: rawHome,
		Team2Normalized: rawAway,
		Sport:           raw.Sport,
		StartTime:       raw.StartTime,
		ExternalIDs:     map[int]string{raw.ProviderID: raw.ExternalEventID},
		Status:          models.StatusUpcoming,
	}
	if raw.League != "" {
		// LeagueID is left nil: the resolver does not map raw.League to a
		// league dimension id, and the league name is not carried on the
		// Match handed to the persister.
	}
	return Decision{Raw: raw, NewMatch: newMatch, Score: bestScore}, nil
}

func (r *Resolver) score(rawHome, rawAway string, raw models.RawMatch, c models.Match, delta time.Duration, window time.Duration) float64 {
	teamScore := teamPairScore(rawHome, rawAway, c.Team1Normalized, c.Team2Normalized)
	timeScore := timeProximityScore(delta, window)

	leagueScore := 0.0
	if raw.League != "" && c.LeagueID != nil {
		// League identity is compared by the persister's league dimension in
		// the real store; here we treat a non-empty raw league on both sides
		// as a potential match signal of full weight, since the resolver
		// operates purely on RawMatch + candidate Match and does not carry
		// the league name string on Match (only its dimension id).
		leagueScore = 100
	}

	priceScore := r.priceCoherence(raw, c)

	return teamScore*weightTeamSimilarity +
		timeScore*weightTimeProximity +
		leagueScore*weightLeagueMatch +
		priceScore*weightPriceCoherence
}

// priceCoherence scores 100 when any common market's prices are within 20%
// of each other, else 0 (§4.5 step 3).
func (r *Resolver) priceCoherence(raw models.RawMatch, c models.Match) float64 {
	existing, err := r.store.LatestPrices(context.Background(), c.ID)
	if err != nil || len(existing) == 0 {
		return 0
	}
	for _, ro := range raw.Odds {
		for _, ex := range existing {
			if ex.BetTypeID != ro.BetTypeID || ex.Margin != ro.Margin || ex.Selection != ro.Selection {
				continue
			}
			if within20Percent(ro.P1, ex.P1) {
				return 100
			}
		}
	}
	return 0
}

func within20Percent(a, b float64) bool {
	if a <= 0 || b <= 0 {
		return false
	}
	ratio := a / b
	return ratio >= 0.8 && ratio <= 1.2
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// mergeExternalID merges the provider's external id into the match's id map
// on reuse (§4.5 step 5).
func mergeExternalID(existing models.Match, raw models.RawMatch) models.Match {
	merged := existing
	ids := make(map[int]string, len(existing.ExternalIDs)+1)
	for k, v := range existing.ExternalIDs {
		ids[k] = v
	}
	if raw.ExternalEventID != "" {
		ids[raw.ProviderID] = raw.ExternalEventID
	}
	merged.ExternalIDs = ids
	return merged
}
