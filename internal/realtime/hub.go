package realtime

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 64

// Hub fans changes out to subscribers. Publish never blocks: a subscriber
// whose queue is full misses the change and the drop is counted.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*Subscription]struct{}
	buffer  int
	dropped atomic.Uint64
	onDrop  func()
}

type Subscription struct {
	ch     chan Change
	filter func(Change) bool
	once   sync.Once
}

// C delivers the subscriber's changes. It is closed by Unsubscribe.
func (s *Subscription) C() <-chan Change {
	return s.ch
}

// NewHub creates a hub. onDrop, when set, is called for every dropped change.
func NewHub(buffer int, onDrop func()) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		onDrop: onDrop,
	}
}

// Subscribe registers a subscriber. A nil filter accepts everything.
func (h *Hub) Subscribe(filter func(Change) bool) *Subscription {
	sub := &Subscription{
		ch:     make(chan Change, h.buffer),
		filter: filter,
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	sub.once.Do(func() { close(sub.ch) })
}

func (h *Hub) Publish(c Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if sub.filter != nil && !sub.filter(c) {
			continue
		}
		select {
		case sub.ch <- c:
		default:
			h.dropped.Add(1)
			if h.onDrop != nil {
				h.onDrop()
			}
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped because a queue was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}
