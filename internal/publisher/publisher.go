// Package publisher fans detected events (arbitrage opportunities, line
// movements) out to subscribers, with a Redis Pub/Sub backbone so a
// consumer need not live in the same process as the detector, and bounded
// per-subscriber buffers so one slow subscriber can never stall detection
// (§4.8). Mirrors internal/pkg/storage/redis.go for the
// go-redis/v9 connection idiom, generalized from its TTL key-value cache use
// to Pub/Sub; the Telegram leg is grounded on
// internal/calculator/calculator/telegram_notifier.go.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Kind names the class of event flowing through the bus.
type Kind string

const (
	KindArbitrage    Kind = "arbitrage"
	KindLineMovement Kind = "line_movement"
)

// Event is one published occurrence. Payload is already JSON-marshalable
// (models.Arbitrage or models.LineMovement); Publisher never interprets it.
type Event struct {
	Kind      Kind        `json:"kind"`
	MatchID   int64       `json:"match_id"`
	Payload   interface{} `json:"payload"`
	OccuredAt time.Time   `json:"occurred_at"`
}

// DefaultBufferSize is the per-subscriber channel depth before drop-oldest
// back-pressure kicks in (§4.8).
const DefaultBufferSize = 256

type subscriber struct {
	name    string
	ch      chan Event
	dropped uint64
}

// Publisher is the fan-out hub. One instance is shared by every detector in
// the pipeline (§5).
type Publisher struct {
	redis   *redis.Client
	channel string

	subs map[string]*subscriber
}

// New wires the Redis client used as the cross-process backbone; channel is
// the Redis Pub/Sub channel name events are published to (e.g. "arbiter:events").
func New(redisClient *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = "arbiter:events"
	}
	return &Publisher{redis: redisClient, channel: channel, subs: make(map[string]*subscriber)}
}

// Subscribe registers an in-process subscriber with its own bounded buffer.
// Callers read from the returned channel; DroppedCount reports back-pressure
// drops for telemetry.
func (p *Publisher) Subscribe(name string, bufferSize int) <-chan Event {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	sub := &subscriber{name: name, ch: make(chan Event, bufferSize)}
	p.subs[name] = sub
	return sub.ch
}

// DroppedCount returns how many events have been dropped for a subscriber
// under back-pressure, or 0 if the name is unknown.
func (p *Publisher) DroppedCount(name string) uint64 {
	if s, ok := p.subs[name]; ok {
		return s.dropped
	}
	return 0
}

// Publish pushes ev to Redis for cross-process consumers and fans it out to
// every in-process subscriber. A full subscriber buffer drops its oldest
// queued event rather than blocking the detector that called Publish
// (§4.8: back-pressure must never propagate upstream).
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("publisher: marshal event: %w", err)
	}
	if p.redis != nil {
		if err := p.redis.Publish(ctx, p.channel, data).Err(); err != nil {
			slog.Warn("publisher: redis publish failed", "channel", p.channel, "error", err)
		}
	}

	for _, sub := range p.subs {
		select {
		case sub.ch <- ev:
		default:
			// Drop the oldest queued event to make room, never the newest.
			select {
			case <-sub.ch:
				sub.dropped++
			default:
			}
			select {
			case sub.ch <- ev:
			default:
			}
		}
	}
	return nil
}

// Close drains nothing but closes every subscriber channel so readers can
// exit their range loops cleanly on shutdown.
func (p *Publisher) Close() {
	for _, sub := range p.subs {
		close(sub.ch)
	}
}
