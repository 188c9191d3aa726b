package round

import (
	"sync"
	"time"
)

// EventType identifies what changed in the engine.
type EventType string

const (
	EventTypeRoundStarted      EventType = "round_started"
	EventTypeRoundSettled      EventType = "round_settled"
	EventTypeCommentaryUpdated EventType = "commentary_updated"
	EventTypeSessionReset      EventType = "session_reset"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event carries the engine state as it was right after a change.
type Event struct {
	Type      EventType
	Snapshot  Snapshot
	Timestamp time.Time
}

// Subscriber receives engine events. OnEvent is called in the order the
// changes happened. It may call Engine.Snapshot but must not call
// SubmitChoice or ResetSession synchronously.
type Subscriber interface {
	OnEvent(event Event)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(event Event)

// OnEvent calls f.
func (f SubscriberFunc) OnEvent(event Event) { f(event) }

// eventBus fans events out to subscribers. Safe for concurrent use.
type eventBus struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[int]Subscriber
}

func newEventBus() *eventBus {
	return &eventBus{subscribers: make(map[int]Subscriber)}
}

func (bus *eventBus) subscribe(s Subscriber) func() {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	id := bus.nextID
	bus.nextID++
	bus.subscribers[id] = s

	return func() {
		bus.mu.Lock()
		defer bus.mu.Unlock()
		delete(bus.subscribers, id)
	}
}

func (bus *eventBus) publish(event Event) {
	bus.mu.RLock()
	subs := make([]Subscriber, 0, len(bus.subscribers))
	for _, s := range bus.subscribers {
		subs = append(subs, s)
	}
	bus.mu.RUnlock()

	for _, s := range subs {
		s.OnEvent(event)
	}
}
