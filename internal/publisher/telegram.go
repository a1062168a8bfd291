package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/oddsforge/arbiter/internal/cmc"
	"github.com/oddsforge/arbiter/internal/models"
)

// telegramSendInterval rate-limits outgoing messages to stay under
// Telegram's per-chat flood limit, matching the prior
// telegramSendInterval in calculator/telegram_notifier.go.
const telegramSendInterval = 2 * time.Second

// TelegramSubscriber renders Arbitrage and LineMovement events as Telegram
// messages, demonstrating the publisher's external-push-collaborator shape
// (§4.8, §9). Mirrors calculator.TelegramNotifier.
type TelegramSubscriber struct {
	bot    *tgbotapi.BotAPI
	chatID int64

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegramSubscriber dials Telegram and verifies the bot token, returning
// nil (with a logged reason) on failure so a missing/misconfigured token
// degrades to "no Telegram alerts" rather than crashing the pipeline.
func NewTelegramSubscriber(token string, chatID int64) *TelegramSubscriber {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		slog.Error("publisher: telegram bot init failed", "error", err)
		return nil
	}
	if _, err := bot.GetMe(); err != nil {
		slog.Error("publisher: telegram auth check failed", "error", err)
		return nil
	}
	return &TelegramSubscriber{bot: bot, chatID: chatID}
}

// Run drains events from ch until it is closed or ctx is cancelled,
// rendering each one as a Telegram message.
func (t *TelegramSubscriber) Run(ctx context.Context, ch <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := t.send(ctx, ev); err != nil {
				slog.Warn("publisher: telegram send failed", "kind", ev.Kind, "error", err)
			}
		}
	}
}

func (t *TelegramSubscriber) send(ctx context.Context, ev Event) error {
	var text string
	switch ev.Kind {
	case KindArbitrage:
		a, ok := ev.Payload.(models.Arbitrage)
		if !ok {
			return fmt.Errorf("unexpected arbitrage payload type %T", ev.Payload)
		}
		text = formatArbitrageAlert(a)
	case KindLineMovement:
		m, ok := ev.Payload.(models.LineMovement)
		if !ok {
			return fmt.Errorf("unexpected movement payload type %T", ev.Payload)
		}
		text = formatMovementAlert(m)
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.waitSendInterval(ctx); err != nil {
		return err
	}
	t.lastSend = time.Now()
	_, err := t.bot.Send(msg)
	return err
}

// waitSendInterval blocks (holding mu) until telegramSendInterval has
// elapsed since the last send.
func (t *TelegramSubscriber) waitSendInterval(ctx context.Context) error {
	for {
		elapsed := time.Since(t.lastSend)
		if elapsed >= telegramSendInterval {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(telegramSendInterval - elapsed):
		}
	}
}

func formatArbitrageAlert(a models.Arbitrage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Arbitrage: %.2f%% profit*\n\n", a.ProfitPercent)
	fmt.Fprintf(&b, "Market: %s\n", escapeMarkdown(cmc.Decode(cmc.Key{BetTypeID: a.BetTypeID, Margin: a.Margin})))
	for _, leg := range a.BestLegs {
		fmt.Fprintf(&b, "Outcome %d: *%.2f* (provider %d)\n", leg.OutcomeIndex, leg.Price, leg.ProviderID)
	}
	fmt.Fprintf(&b, "Expires: %s\n", a.ExpiresAt.Format("2006-01-02 15:04 UTC"))
	return b.String()
}

func formatMovementAlert(m models.LineMovement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Line movement (%+.1f%%)*\n\n", m.ChangePercent)
	fmt.Fprintf(&b, "Market: %s\n", escapeMarkdown(cmc.Decode(cmc.Key{BetTypeID: m.BetTypeID, Selection: m.Selection, Margin: m.Margin})))
	fmt.Fprintf(&b, "Provider %d: *%.2f* → *%.2f*\n", m.ProviderID, m.PreviousPrice, m.CurrentPrice)
	return b.String()
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)",
		"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
		"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}
