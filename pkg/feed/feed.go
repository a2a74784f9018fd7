package feed

import "sync"

// Topic identifies a collection whose changes can be observed.
type Topic string

const (
	TopicCatalog Topic = "catalog"
	TopicOrders  Topic = "orders"
	TopicQueue   Topic = "queue"
)

// Hub fans change signals out to in-process subscribers. A signal carries
// no payload: consumers re-read their store and recompute from the full
// current snapshot, which keeps them immune to missed or reordered deltas.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[Topic]map[int]chan struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[Topic]map[int]chan struct{}),
	}
}

// Subscribe registers interest in a topic. The returned channel receives a
// signal after every published change; signals are coalesced while the
// subscriber is busy. The cancel func removes the subscription and closes
// the channel.
func (h *Hub) Subscribe(topic Topic) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan struct{}, 1)
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int]chan struct{})
	}
	h.subs[topic][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[topic][id]; ok {
			delete(h.subs[topic], id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish signals every subscriber of the topic. Never blocks: a subscriber
// with a pending signal simply keeps the one it has.
func (h *Hub) Publish(topic Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
