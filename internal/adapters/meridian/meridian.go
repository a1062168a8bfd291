// Package meridian implements the structured adapter shape (§4.2): each
// event arrives as one nested JSON object carrying its own outcomes array
// inline, grouped by market via a tableType/groupName discriminator rather
// than a flat factor-code join. Mirrors
// internal/parser/parsers/olimp package (models.go's nested
// competition->event->outcome shape, odds_parser.go's tableType/shortName
// grouping), cross-checked against internal/parser/parsers/leon/models.go
// for the sibling provider in the same shape class.
package meridian

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/oddsforge/arbiter/internal/adapters/httputil"
	"github.com/oddsforge/arbiter/internal/cmc"
	"github.com/oddsforge/arbiter/internal/models"
)

type competitionsResponse []struct {
	Payload *struct {
		Competition *struct {
			Name string `json:"name"`
		} `json:"competition"`
		Events []vendorEvent `json:"events"`
	} `json:"payload"`
}

type vendorEvent struct {
	ID            string          `json:"id"`
	Team1Name     string          `json:"team1Name"`
	Team2Name     string          `json:"team2Name"`
	StartDateTime int64           `json:"startDateTime"`
	Outcomes      []vendorOutcome `json:"outcomes"`
}

type vendorOutcome struct {
	TableType   string `json:"tableType"` // RESULT, TOTAL, HANDICAP
	Probability string `json:"probability"`
	Param       string `json:"param"`
	ShortName   string `json:"shortName"` // "1"/"X"/"2", or "Б"/"М" (over/under)
}

// Adapter is the meridian provider integration: plain-http, structured.
type Adapter struct {
	client  *httputil.Client
	baseURL string
	sports  []models.SportID
}

func New(client *httputil.Client, baseURL string, sports []models.SportID) *Adapter {
	return &Adapter{client: client, baseURL: baseURL, sports: sports}
}

func (a *Adapter) BaseURL() string                  { return a.baseURL }
func (a *Adapter) SupportedSports() []models.SportID { return a.sports }

func (a *Adapter) Scrape(ctx context.Context) ([]models.RawMatch, error) {
	body, err := a.client.Get(ctx, a.baseURL+"/competitions-with-events", nil)
	if err != nil {
		return nil, fmt.Errorf("meridian: %w", err)
	}

	var resp competitionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("meridian: decode: %w", err)
	}

	var out []models.RawMatch
	for _, comp := range resp {
		if comp.Payload == nil {
			continue
		}
		league := ""
		if comp.Payload.Competition != nil {
			league = comp.Payload.Competition.Name
		}
		for _, ev := range comp.Payload.Events {
			rm := buildRawMatch(ev, league, firstSport(a.sports))
			if rm != nil {
				out = append(out, *rm)
			}
		}
	}
	return out, nil
}

func firstSport(sports []models.SportID) models.SportID {
	if len(sports) == 0 {
		return models.SportFootball
	}
	return sports[0]
}

func buildRawMatch(ev vendorEvent, league string, sport models.SportID) *models.RawMatch {
	if ev.Team1Name == "" || ev.Team2Name == "" {
		return nil
	}
	start := time.Unix(ev.StartDateTime, 0).UTC()
	if start.Before(time.Now().UTC()) {
		return nil
	}

	odds := buildOdds(ev.Outcomes)
	if len(odds) == 0 {
		return nil
	}

	return &models.RawMatch{
		HomeTeamRaw:     ev.Team1Name,
		AwayTeamRaw:     ev.Team2Name,
		Sport:           sport,
		StartTime:       start,
		League:          league,
		ExternalEventID: ev.ID,
		Odds:            odds,
	}
}

func buildOdds(outcomes []vendorOutcome) []models.RawOdds {
	var oneXTwo models.RawOdds
	oneXTwo.BetTypeID = cmc.BetOneXTwo
	haveOneXTwo := false

	totals := make(map[string]*models.RawOdds)

	for _, o := range outcomes {
		price := parsePrice(o.Probability)
		if price <= 1.0 {
			continue
		}
		switch o.TableType {
		case "RESULT":
			haveOneXTwo = true
			switch o.ShortName {
			case "1", "П1":
				oneXTwo.P1 = price
			case "X", "Х":
				oneXTwo.P2 = price
			case "2", "П2":
				oneXTwo.P3 = price
			}
		case "TOTAL":
			row, ok := totals[o.Param]
			if !ok {
				row = &models.RawOdds{BetTypeID: cmc.BetTotalOverUnder, Margin: parsePrice(o.Param)}
				totals[o.Param] = row
			}
			if isOver(o.ShortName) {
				row.P1 = price
			} else {
				row.P2 = price
			}
		}
	}

	var out []models.RawOdds
	if haveOneXTwo && oneXTwo.P1 > 1.0 && oneXTwo.P2 > 1.0 && oneXTwo.P3 > 1.0 {
		out = append(out, oneXTwo)
	}
	for _, row := range totals {
		if row.P1 > 1.0 && row.P2 > 1.0 {
			out = append(out, *row)
		}
	}
	return out
}

func isOver(shortName string) bool {
	return strings.Contains(shortName, "Б") || strings.EqualFold(shortName, "over")
}

func parsePrice(s string) float64 {
	var f float64
	_, err := fmt.Sscanf(s, "%g", &f)
	if err != nil {
		return 0
	}
	return f
}
