package meridian

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/oddsforge/arbiter/internal/cmc"
	"github.com/oddsforge/arbiter/internal/models"
)

// tickerMessage is one in-play price push frame; the structured vendor
// family also exposes a websocket channel for live markets, separate from
// the prematch polling endpoint Scrape hits (§4.2 "browser-driven channel"
// sibling note — this one needs no browser, just a raw websocket client).
type tickerMessage struct {
	EventID string  `json:"eventId"`
	Market  string  `json:"market"` // "1x2" or "total"
	Side    string  `json:"side"`   // "1"/"x"/"2" or "over"/"under"
	Price   float64 `json:"price"`
	Param   float64 `json:"param,omitempty"`
}

// LiveTicker streams in-play price updates for one sport over a raw
// websocket connection (§4.2). Unlike Scrape's request/response polling,
// this runs for the lifetime of ctx, pushing each decoded update onto out.
func LiveTicker(ctx context.Context, wsURL string, out chan<- models.RawOdds) error {
	conn, _, _, err := ws.Dial(ctx, wsURL)
	if err != nil {
		return fmt.Errorf("meridian: live ticker dial: %w", err)
	}
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		data, err := wsutil.ReadServerText(conn)
		if err != nil {
			return fmt.Errorf("meridian: live ticker read: %w", err)
		}

		var msg tickerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("meridian: live ticker: undecodable frame", "error", err)
			continue
		}

		row, ok := decodeTickerMessage(msg)
		if !ok {
			continue
		}
		select {
		case out <- row:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func decodeTickerMessage(msg tickerMessage) (models.RawOdds, bool) {
	if msg.Price <= 1.0 {
		return models.RawOdds{}, false
	}
	switch msg.Market {
	case "1x2":
		// A single-leg live push only carries one outcome's price: the
		// returned row holds it in P1 with the side in Selection, and
		// carries no event id, so it is not a complete arity-3 RawOdds.
		return models.RawOdds{BetTypeID: cmc.BetOneXTwo, Selection: msg.Side, P1: msg.Price}, true
	case "total":
		return models.RawOdds{BetTypeID: cmc.BetTotalOverUnder, Selection: msg.Side, Margin: msg.Param, P1: msg.Price}, true
	default:
		return models.RawOdds{}, false
	}
}
