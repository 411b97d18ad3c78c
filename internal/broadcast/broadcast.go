package broadcast

import (
	"fmt"
	"sync"
	"time"
)

// Event is the wire envelope fanned out to presentation consumers.
// Timestamp is epoch milliseconds.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp int64       `json:"timestamp"`
}

// Event types published by the order pipeline.
const (
	EventOrderNew        = "order:new"
	EventOrderUpdated    = "order:updated"
	EventOrderItemStatus = "order:item_status"
)

// Topic helpers. The broadcaster itself treats topics as opaque strings;
// these just keep the naming in one place for callers.
func BranchTopic(branchID int64) string {
	return fmt.Sprintf("branch:%d", branchID)
}

func KitchenTopic(branchID int64) string {
	return fmt.Sprintf("branch:%d:kitchen", branchID)
}

func SessionTopic(sessionID int64) string {
	return fmt.Sprintf("session:%d", sessionID)
}

// NewEvent stamps an envelope with the current time.
func NewEvent(eventType string, payload interface{}) Event {
	return Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Broadcaster fans events out to whoever currently subscribes to a topic.
// Delivery is fire-and-forget: no persistence, no replay, and a subscriber
// whose buffer is full misses the event rather than blocking the publisher.
type Broadcaster interface {
	Publish(topic string, ev Event)
	Subscribe(topic string) (<-chan Event, func())
}

const defaultSubscriberBuffer = 16

type memoryBroadcaster struct {
	mu     sync.RWMutex
	topics map[string]map[int64]chan Event
	nextID int64
	buffer int
}

// New returns an in-process Broadcaster.
func New() Broadcaster {
	return &memoryBroadcaster{
		topics: make(map[string]map[int64]chan Event),
		buffer: defaultSubscriberBuffer,
	}
}

func (b *memoryBroadcaster) Publish(topic string, ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.topics[topic] {
		select {
		case ch <- ev:
		default:
			// Slow subscriber; drop rather than block the pipeline.
		}
	}
}

func (b *memoryBroadcaster) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[int64]chan Event)
		b.topics[topic] = subs
	}
	subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if subs, ok := b.topics[topic]; ok {
			if _, ok := subs[id]; ok {
				delete(subs, id)
				close(ch)
			}
			if len(subs) == 0 {
				delete(b.topics, topic)
			}
		}
	}
	return ch, cancel
}
