package notify

import (
	"sync"
)

// Listener receives every published value synchronously.
type Listener[T any] func(T)

// Broadcaster is the legacy notification model: a mutable listener list
// called in turn, synchronously, on every state change. It has no demand
// control, no error channel, and no completion: a strict subset of the
// reactive model. New code should prefer AsPublisher, which wraps a
// Broadcaster with the full Subscription protocol.
type Broadcaster[T any] struct {
	mu        sync.RWMutex
	listeners map[int]Listener[T]
	nextID    int
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{listeners: make(map[int]Listener[T])}
}

// Listen registers l and returns a removal function. Removal is idempotent.
func (b *Broadcaster[T]) Listen(l Listener[T]) (remove func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Publish calls every registered listener with v on the calling goroutine.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.RLock()
	snapshot := make([]Listener[T], 0, len(b.listeners))
	for _, l := range b.listeners {
		snapshot = append(snapshot, l)
	}
	b.mu.RUnlock()

	for _, l := range snapshot {
		l(v)
	}
}

// Len returns the number of registered listeners.
func (b *Broadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
