package bus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zeusync/shatter/internal/core/world"
)

type testObserver struct {
	mu             sync.Mutex
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_, _ string, _ Event) {
	o.mu.Lock()
	o.publishCount++
	o.mu.Unlock()
}

func (o *testObserver) OnDelivered(_, _ string, handlers int, err error, _ time.Duration) {
	o.mu.Lock()
	o.deliveredCount += handlers
	o.lastErr = err
	o.mu.Unlock()
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got Event
	_, err := b.Subscribe("s1", "test.event", func(e Event) error {
		got = e
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish("s1", NewEvent("test.event", "tester", 123)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got == nil || got.Data() != 123 || got.Source() != "tester" {
		t.Fatalf("handler got %#v", got)
	}
}

func TestSubscribeRejectsNilHandler(t *testing.T) {
	b := New()
	if _, err := b.Subscribe("s1", "x", nil); !errors.Is(err, ErrNilHandler) {
		t.Fatalf("expected ErrNilHandler, got %v", err)
	}
}

func TestTopicsIsolation(t *testing.T) {
	b := New()
	count1, count2 := 0, 0
	_, _ = b.Subscribe("t1", "ev", func(e Event) error { count1++; return nil })
	_, _ = b.Subscribe("t2", "ev", func(e Event) error { count2++; return nil })
	_ = b.Publish("t1", NewEvent("ev", "src", nil))
	if count1 != 1 || count2 != 0 {
		t.Fatalf("topic isolation failed: %d %d", count1, count2)
	}
}

func TestAnyEventSubscription(t *testing.T) {
	b := New()
	var types []string
	_, _ = b.Subscribe("t", AnyEvent, func(e Event) error {
		types = append(types, e.Type())
		return nil
	})
	_ = b.PublishBatch("t", NewEvent("a", "src", nil), NewEvent("b", "src", nil))
	if len(types) != 2 || types[0] != "a" || types[1] != "b" {
		t.Fatalf("unexpected deliveries: %v", types)
	}
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	errA, errB := errors.New("a"), errors.New("b")
	_, _ = b.Subscribe("t", "ev", func(Event) error { return errA })
	_, _ = b.Subscribe("t", AnyEvent, func(Event) error { return errB })

	err := b.Publish("t", NewEvent("ev", "src", nil))
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected both errors, got %v", err)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub, _ := b.Subscribe("t", "ev", func(Event) error { count++; return nil })
	_ = b.Publish("t", NewEvent("ev", "src", nil))
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	_ = sub.Cancel()
	_ = b.Publish("t", NewEvent("ev", "src", nil))
	if count != 1 || sub.IsActive() {
		t.Fatalf("count=%d active=%v", count, sub.IsActive())
	}
	if err := b.Unsubscribe(nil); err != nil {
		t.Fatalf("nil unsubscribe: %v", err)
	}
}

func TestRemoveTopic(t *testing.T) {
	b := New()
	_ = b.CreateTopic("keep")
	sub1, _ := b.Subscribe("gone", "a", func(Event) error { return nil })
	sub2, _ := b.Subscribe("gone", AnyEvent, func(Event) error { return nil })

	if n := b.RemoveTopic("gone"); n != 2 {
		t.Fatalf("expected 2 cancelled subscriptions, got %d", n)
	}
	if sub1.IsActive() || sub2.IsActive() {
		t.Fatal("subscriptions still active")
	}
	if n := b.RemoveTopic("gone"); n != 0 {
		t.Fatalf("second removal cancelled %d", n)
	}
	topics := b.Topics()
	if len(topics) != 1 || topics[0].Name != "keep" {
		t.Fatalf("unexpected topics: %#v", topics)
	}
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("t", "e", func(e Event) error { return nil })
	_ = b.Publish("t", NewEvent("e", "s", nil))
	if m := b.Metrics(); m.Published != 0 || m.DeliveredHandlers != 0 {
		t.Fatalf("metrics should be zero without observers: %+v", m)
	}

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish("t", NewEvent("e", "s", nil))
	m := b.Metrics()
	if m.Published != 1 || m.DeliveredHandlers != 1 || m.SubscribersActive != 1 || m.Topics != 1 {
		t.Fatalf("metrics should update with observer: %+v", m)
	}
	if obs.publishCount != 1 || obs.deliveredCount != 1 {
		t.Fatalf("observer not called: %+v", obs)
	}

	b.RemoveObserver(obs)
	_ = b.Publish("t", NewEvent("e", "s", nil))
	if obs.publishCount != 1 {
		t.Fatal("removed observer still notified")
	}
}

func TestConcurrentPublish(t *testing.T) {
	b := New()
	var mu sync.Mutex
	count := 0
	_, _ = b.Subscribe("t", "ev", func(Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = b.Publish("t", NewEvent("ev", "src", j))
			}
		}()
	}
	wg.Wait()
	if count != 800 {
		t.Fatalf("expected 800 deliveries, got %d", count)
	}
}

func TestWorldListenerPublishes(t *testing.T) {
	b := New()
	var got []Event
	_, _ = b.Subscribe("session", AnyEvent, func(e Event) error {
		got = append(got, e)
		return nil
	})

	l := NewWorldListener(b, "session", nil)
	l.DragStarted("title")
	l.PiecePinned("title")
	l.PieceSnapped("title")
	l.PositionsUpdated(world.Snapshot{"title": {X: 1, Y: 2}})

	want := []string{EventDragStart, EventPinned, EventSnapped, EventPositions}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i, e := range got {
		if e.Type() != want[i] || e.Source() != "session" {
			t.Fatalf("event %d: %s from %s", i, e.Type(), e.Source())
		}
	}
	if p, ok := got[0].Data().(PieceEvent); !ok || p.Piece != "title" {
		t.Fatalf("unexpected payload %#v", got[0].Data())
	}
	if s, ok := got[3].Data().(world.Snapshot); !ok || s["title"].Y != 2 {
		t.Fatalf("unexpected payload %#v", got[3].Data())
	}
}
