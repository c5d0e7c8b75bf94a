package agent

import (
	"sync"
	"time"
)

// EventType names an agent event.
type EventType string

const (
	EventStateChanged         EventType = "state_changed"
	EventCommandApplied       EventType = "command_applied"
	EventStatsRefreshed       EventType = "stats_refreshed"
	EventRecommendationsReady EventType = "recommendations_ready"
	EventPersistenceFailed    EventType = "persistence_failed"
	EventPersisted            EventType = "persisted"
)

// Event is published to subscribers after the fact. Subscribers must not
// rely on delivery: a slow subscriber misses events.
type Event struct {
	Type   EventType `json:"type"`
	UserID string    `json:"user_id,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// EventBus is a non-blocking fan-out of agent events.
type EventBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[int]chan Event)}
}

// Subscribe returns a channel of events and a function that removes the
// subscription and closes the channel.
func (b *EventBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber with buffer space.
func (b *EventBus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
