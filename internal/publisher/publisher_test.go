package publisher

import (
	"context"
	"testing"
	"time"
)

func TestPublisher_FanOutToMultipleSubscribers(t *testing.T) {
	p := New(nil, "")
	a := p.Subscribe("a", 4)
	b := p.Subscribe("b", 4)

	ev := Event{Kind: KindArbitrage, MatchID: 1, OccuredAt: time.Now()}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-a:
		if got.MatchID != 1 {
			t.Fatalf("unexpected event on a: %+v", got)
		}
	default:
		t.Fatal("expected event delivered to subscriber a")
	}
	select {
	case got := <-b:
		if got.MatchID != 1 {
			t.Fatalf("unexpected event on b: %+v", got)
		}
	default:
		t.Fatal("expected event delivered to subscriber b")
	}
}

func TestPublisher_DropsOldestUnderBackPressure(t *testing.T) {
	p := New(nil, "")
	ch := p.Subscribe("slow", 2)

	for i := int64(1); i <= 3; i++ {
		if err := p.Publish(context.Background(), Event{Kind: KindArbitrage, MatchID: i}); err != nil {
			t.Fatal(err)
		}
	}

	if p.DroppedCount("slow") != 1 {
		t.Fatalf("expected 1 dropped event, got %d", p.DroppedCount("slow"))
	}

	first := <-ch
	second := <-ch
	if first.MatchID != 2 || second.MatchID != 3 {
		t.Fatalf("expected the oldest event (match 1) to have been dropped, got %d then %d", first.MatchID, second.MatchID)
	}
}

func TestPublisher_CloseClosesSubscriberChannels(t *testing.T) {
	p := New(nil, "")
	ch := p.Subscribe("s", 1)
	p.Close()
	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after Close")
	}
}
