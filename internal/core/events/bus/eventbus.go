package bus

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AnyEvent subscribes to every event type of a topic.
const AnyEvent = "*"

var ErrNilHandler = errors.New("bus: nil handler")

type simpleEvent struct {
	typ    string
	source string
	ts     time.Time
	data   any
}

func (e simpleEvent) Type() string         { return e.typ }
func (e simpleEvent) Source() string       { return e.source }
func (e simpleEvent) Timestamp() time.Time { return e.ts }
func (e simpleEvent) Data() any            { return e.data }

// NewEvent creates an Event stamped with the current time.
func NewEvent(typ, source string, data any) Event {
	return simpleEvent{typ: typ, source: source, ts: time.Now(), data: data}
}

type subscription struct {
	id        string
	topic     string
	eventType string
	handler   EventHandler

	mu     sync.Mutex
	active bool
	cancel func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) Topic() string     { return s.topic }
func (s *subscription) EventType() string { return s.eventType }

func (s *subscription) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *subscription) Cancel() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

func (s *subscription) deactivate() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// inMemoryBus keeps handlers as topic -> eventType -> subID -> subscription.
type inMemoryBus struct {
	mu        sync.RWMutex
	handlers  map[string]map[string]map[string]*subscription
	metrics   Metrics
	observers map[Observer]struct{}
}

func New() EventBus {
	return &inMemoryBus{
		handlers:  make(map[string]map[string]map[string]*subscription),
		observers: make(map[Observer]struct{}),
	}
}

func (b *inMemoryBus) Publish(topic string, event Event) error {
	return b.deliver(topic, event)
}

func (b *inMemoryBus) PublishBatch(topic string, events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.deliver(topic, e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *inMemoryBus) Subscribe(topic, eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureTopicLocked(topic)
	if b.handlers[topic][eventType] == nil {
		b.handlers[topic][eventType] = make(map[string]*subscription)
	}
	id := uuid.NewString()
	s := &subscription{id: id, topic: topic, eventType: eventType, handler: handler, active: true}
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if mm, ok := b.handlers[topic][eventType]; ok {
			delete(mm, id)
		}
	}
	b.handlers[topic][eventType][id] = s
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) CreateTopic(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureTopicLocked(name)
	return nil
}

func (b *inMemoryBus) RemoveTopic(name string) int {
	b.mu.Lock()
	types, ok := b.handlers[name]
	delete(b.handlers, name)
	b.mu.Unlock()
	if !ok {
		return 0
	}

	n := 0
	for _, subs := range types {
		for _, s := range subs {
			s.deactivate()
			n++
		}
	}
	return n
}

func (b *inMemoryBus) Topics() []TopicInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]TopicInfo, 0, len(b.handlers))
	for name, hm := range b.handlers {
		info := TopicInfo{Name: name, EventTypes: len(hm)}
		for _, m := range hm {
			info.Subs += len(m)
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (b *inMemoryBus) AddObserver(obs Observer) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs Observer) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) Metrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

// ensureTopicLocked creates the topic's handler map. Callers hold b.mu.
func (b *inMemoryBus) ensureTopicLocked(topic string) {
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[string]map[string]*subscription)
	}
}

func (b *inMemoryBus) deliver(topic string, event Event) error {
	start := time.Now()
	etype := event.Type()

	b.mu.RLock()
	var subs []*subscription
	if inner := b.handlers[topic]; inner != nil {
		subs = make([]*subscription, 0, len(inner[etype])+len(inner[AnyEvent]))
		for _, s := range inner[etype] {
			subs = append(subs, s)
		}
		if etype != AnyEvent {
			for _, s := range inner[AnyEvent] {
				subs = append(subs, s)
			}
		}
	}
	observers := make([]Observer, 0, len(b.observers))
	for obs := range b.observers {
		observers = append(observers, obs)
	}
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnPublish(topic, etype, event)
	}

	var all error
	delivered := 0
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	if len(observers) > 0 {
		dur := time.Since(start)
		for _, obs := range observers {
			obs.OnDelivered(topic, etype, delivered, all, dur)
		}
		b.mu.Lock()
		b.metrics.Published++
		b.metrics.DeliveredHandlers += uint64(delivered)
		if all != nil {
			b.metrics.Errors++
		}
		b.metrics.Topics = uint64(len(b.handlers))
		var active uint64
		for _, et := range b.handlers {
			for _, m := range et {
				active += uint64(len(m))
			}
		}
		b.metrics.SubscribersActive = active
		b.mu.Unlock()
	}
	return all
}
