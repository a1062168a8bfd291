// Package kestrel implements the flat-platform adapter shape (§4.2): one
// response carrying a flat "events" array and a flat "factors" (prices)
// array, joined by an event id foreign key rather than nested inline.
// Mirrors internal/parser/parsers/fonbet package
// (http_client.go's query-string request shape, odds_parser.go's
// events+factors join).
package kestrel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oddsforge/arbiter/internal/adapters/httputil"
	"github.com/oddsforge/arbiter/internal/cmc"
	"github.com/oddsforge/arbiter/internal/models"
)

// apiResponse mirrors the flat-platform wire shape: events and their priced
// factors travel as sibling top-level arrays.
type apiResponse struct {
	Events  []event  `json:"events"`
	Factors []factor `json:"factors"`
}

type event struct {
	ID        int64  `json:"id"`
	Kind      int    `json:"kind"` // sport/market-group discriminator
	Team1Name string `json:"team1"`
	Team2Name string `json:"team2"`
	StartTime int64  `json:"startTime"` // unix seconds
	League    string `json:"league"`
}

type factor struct {
	EventID int64   `json:"eventId"`
	Factor  int     `json:"f"` // vendor market/outcome code
	Value   float64 `json:"v"` // decimal odds
	Param   float64 `json:"param,omitempty"`
}

// vendorFactorToBetType maps this vendor's flat factor codes onto the CMC
// vocabulary; a representative subset, extended by operators as new codes
// are observed (§4.1 "unmapped market" policy covers the rest).
var vendorFactorToBetType = map[int]cmc.Key{
	921: {BetTypeID: cmc.BetOneXTwo, Selection: "1"},
	922: {BetTypeID: cmc.BetOneXTwo, Selection: "X"},
	923: {BetTypeID: cmc.BetOneXTwo, Selection: "2"},
	184: {BetTypeID: cmc.BetTotalOverUnder, Selection: "over"},
	185: {BetTypeID: cmc.BetTotalOverUnder, Selection: "under"},
}

// Adapter is the kestrel provider integration: plain-http, flat-platform.
type Adapter struct {
	client  *httputil.Client
	baseURL string
	sports  []models.SportID
	lang    string
	version string
}

// New wires a kestrel adapter against its upstream base URL.
func New(client *httputil.Client, baseURL, lang, version string, sports []models.SportID) *Adapter {
	return &Adapter{client: client, baseURL: baseURL, sports: sports, lang: lang, version: version}
}

func (a *Adapter) BaseURL() string                { return a.baseURL }
func (a *Adapter) SupportedSports() []models.SportID { return a.sports }

// Scrape fetches the flat events+factors document for every supported
// sport and projects it into RawMatch rows through the CMC (§4.2, §4.1).
func (a *Adapter) Scrape(ctx context.Context) ([]models.RawMatch, error) {
	var all []models.RawMatch
	for _, sport := range a.sports {
		matches, err := a.scrapeSport(ctx, sport)
		if err != nil {
			return all, fmt.Errorf("kestrel: sport %s: %w", sport, err)
		}
		all = append(all, matches...)
	}
	return all, nil
}

func (a *Adapter) scrapeSport(ctx context.Context, sport models.SportID) ([]models.RawMatch, error) {
	url := fmt.Sprintf("%s?lang=%s&version=%s&scopeMarket=%d", a.baseURL, a.lang, a.version, int(sport))
	body, err := a.client.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	factorsByEvent := make(map[int64][]factor, len(resp.Factors))
	for _, f := range resp.Factors {
		factorsByEvent[f.EventID] = append(factorsByEvent[f.EventID], f)
	}

	matches := make([]models.RawMatch, 0, len(resp.Events))
	for _, ev := range resp.Events {
		start := time.Unix(ev.StartTime, 0).UTC()
		if start.Before(time.Now().UTC()) {
			continue
		}
		rm := models.RawMatch{
			HomeTeamRaw:     ev.Team1Name,
			AwayTeamRaw:     ev.Team2Name,
			Sport:           sport,
			StartTime:       start,
			League:          ev.League,
			ExternalEventID: fmt.Sprintf("%d", ev.ID),
			Odds:            buildOdds(factorsByEvent[ev.ID]),
		}
		if rm.HomeTeamRaw == "" || rm.AwayTeamRaw == "" || len(rm.Odds) == 0 {
			continue
		}
		matches = append(matches, rm)
	}
	return matches, nil
}

// buildOdds groups this vendor's flat factor codes into canonical rows,
// merging the three 1X2 legs (reported as three separate factor rows here)
// into one arity-3 RawOdds entry.
func buildOdds(factors []factor) []models.RawOdds {
	oneXTwo := models.RawOdds{BetTypeID: cmc.BetOneXTwo}
	haveOneXTwo := false
	totals := make(map[float64]*models.RawOdds) // margin -> {over: P1, under: P2}

	for _, f := range factors {
		key, known := vendorFactorToBetType[f.Factor]
		if !known {
			continue // unmapped vendor code — never an error (§4.1)
		}
		switch key.BetTypeID {
		case cmc.BetOneXTwo:
			haveOneXTwo = true
			switch key.Selection {
			case "1":
				oneXTwo.P1 = f.Value
			case "X":
				oneXTwo.P2 = f.Value
			case "2":
				oneXTwo.P3 = f.Value
			}
		case cmc.BetTotalOverUnder:
			row, ok := totals[f.Param]
			if !ok {
				row = &models.RawOdds{BetTypeID: cmc.BetTotalOverUnder, Margin: f.Param}
				totals[f.Param] = row
			}
			if key.Selection == "under" {
				row.P2 = f.Value
			} else {
				row.P1 = f.Value
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
