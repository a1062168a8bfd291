// Package solace implements the compressed-overview adapter shape (§4.2):
// one dense payload per sport with single-letter field names and numeric
// group/type discriminators in place of named markets, served behind a
// mirror-resolution step that requires running real browser JavaScript.
// Mirrors internal/parser/parsers/xbet1 package
// (models.go's single-letter Match/Event shape, http_client.go's
// chromedp-driven mirror resolution).
package solace

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/oddsforge/arbiter/internal/cmc"
	"github.com/oddsforge/arbiter/internal/models"
)

// overviewResponse is the compressed-overview wire shape: single-letter
// keys, group/type discriminators instead of named markets.
type overviewResponse struct {
	Value []match `json:"Value"`
}

type match struct {
	I  int64   `json:"I"` // match id
	O1 string  `json:"O1"`
	O2 string  `json:"O2"`
	S  int64   `json:"S"` // unix start time
	L  string  `json:"L"` // league
	E  []event `json:"E"`
}

type event struct {
	C float64 `json:"C"` // coefficient
	G int     `json:"G"` // group id: 1=moneyline, 17=total
	T int     `json:"T"` // type id within group: 1/2/3=home/draw/away, 1/2=over/under
	P float64 `json:"P"` // parameter (e.g. total line)
}

const (
	groupMoneyline = 1
	groupTotal     = 17
)

// Adapter is the solace provider integration: browser-driven,
// compressed-overview.
type Adapter struct {
	mirrorURL string
	sports    []models.SportID
	timeout   time.Duration
}

func New(mirrorURL string, sports []models.SportID, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Adapter{mirrorURL: mirrorURL, sports: sports, timeout: timeout}
}

func (a *Adapter) BaseURL() string                  { return a.mirrorURL }
func (a *Adapter) SupportedSports() []models.SportID { return a.sports }

// Scrape drives a real headless browser to resolve the working mirror and
// pull the overview JSON, because the upstream gates the underlying API
// behind a JavaScript redirect chain a plain HTTP client cannot follow
// (§4.2 "browser-driven channel").
func (a *Adapter) Scrape(ctx context.Context) ([]models.RawMatch, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var body string
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(a.mirrorURL),
		chromedp.WaitReady("body"),
		chromedp.Text("body", &body, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("solace: browser fetch: %w", err)
	}

	var resp overviewResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("solace: decode overview: %w", err)
	}

	sport := models.SportFootball
	if len(a.sports) > 0 {
		sport = a.sports[0]
	}

	out := make([]models.RawMatch, 0, len(resp.Value))
	for _, m := range resp.Value {
		rm := buildRawMatch(m, sport)
		if rm != nil {
			out = append(out, *rm)
		}
	}
	return out, nil
}

func buildRawMatch(m match, sport models.SportID) *models.RawMatch {
	if m.O1 == "" || m.O2 == "" {
		return nil
	}
	start := time.Unix(m.S, 0).UTC()
	if start.Before(time.Now().UTC()) {
		return nil
	}
	odds := buildOdds(m.E)
	if len(odds) == 0 {
		return nil
	}
	return &models.RawMatch{
		HomeTeamRaw:     m.O1,
		AwayTeamRaw:     m.O2,
		Sport:           sport,
		StartTime:       start,
		League:          m.L,
		ExternalEventID: fmt.Sprintf("%d", m.I),
		Odds:            odds,
	}
}

func buildOdds(events []event) []models.RawOdds {
	var oneXTwo models.RawOdds
	oneXTwo.BetTypeID = cmc.BetOneXTwo
	haveOneXTwo := false
	totals := make(map[float64]*models.RawOdds)

	for _, e := range events {
		if e.C <= 1.0 {
			continue
		}
		switch e.G {
		case groupMoneyline:
			haveOneXTwo = true
			switch e.T {
			case 1:
				oneXTwo.P1 = e.C
			case 2:
				oneXTwo.P2 = e.C
			case 3:
				oneXTwo.P3 = e.C
			}
		case groupTotal:
			row, ok := totals[e.P]
			if !ok {
				row = &models.RawOdds{BetTypeID: cmc.BetTotalOverUnder, Margin: e.P}
				totals[e.P] = row
			}
			if e.T == 1 {
				row.P1 = e.C // over
			} else {
				row.P2 = e.C // under
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
