package bus

import "time"

// EventBus is a thread-safe, in-process pub/sub bus scoped by topic.
//
// Key characteristics:
//   - Topics isolate publishers from each other; a game session publishes to
//     its own topic and only that session's subscribers hear it.
//   - Type-based fan-out inside a topic; AnyEvent subscribes to every type.
//   - Synchronous delivery: Publish calls handlers in the caller goroutine.
//   - Error aggregation: handler errors are joined and returned from Publish.
//   - Optional observability: metrics are collected only while observers are
//     registered.
//
// Handlers must be quick. Publishers hold locks of their own while
// publishing, so a slow handler stalls the game loop.
type EventBus interface {
	// Publish delivers the event synchronously to the topic's subscribers of
	// event.Type() and to its AnyEvent subscribers.
	Publish(topic string, event Event) error
	// PublishBatch publishes events in order and joins their errors.
	PublishBatch(topic string, events ...Event) error

	// Subscribe registers a handler for eventType within topic. The topic is
	// created when missing.
	Subscribe(topic, eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. A nil Subscription is ignored.
	Unsubscribe(Subscription) error

	// CreateTopic declares a topic. Repeat declarations are no-ops.
	CreateTopic(name string) error
	// RemoveTopic cancels every subscription of the topic and forgets it.
	// It returns the number of subscriptions cancelled.
	RemoveTopic(name string) int
	// Topics returns a snapshot of known topics.
	Topics() []TopicInfo

	AddObserver(obs Observer)
	RemoveObserver(obs Observer)
	// Metrics returns the counters accumulated while observers were registered.
	Metrics() Metrics
}

// Event is an immutable message transported by the bus.
type Event interface {
	Type() string
	// Source identifies the publisher, usually a session id.
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked per delivered event. Returned errors are joined
	// and handed back to the publisher.
	EventHandler func(event Event) error
)

// Subscription represents a registered handler bound to a topic and event type.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// Observer is notified about deliveries. Observers must return quickly.
type Observer interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error, duration time.Duration)
}

type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
	Topics            uint64
}

type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}
