package notify

import (
	"sync"
	"sync/atomic"

	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/streams"
)

// AsPublisher wraps a Broadcaster as a backpressured Publisher.
//
// The legacy model has no demand concept, so a drop policy must be chosen:
// with outstanding demand a trigger emits immediately and synchronously on
// the publishing goroutine, and with zero demand the newest value
// overwrites the previously stashed undelivered one (latest-value-wins).
//
// The adapter never emits an error signal (the legacy model has no error
// channel) and never completes on its own; cancellation is the only way
// to end an activation. A cancelled activation removes its listener.
func AsPublisher[T any](b *Broadcaster[T]) streams.Publisher[T] {
	return streams.NewPublisher(func(s streams.Subscriber[T]) {
		a := &legacyActivation[T]{downstream: s}
		s.OnSubscribe(a)
		if a.cancelled.Load() {
			// cancelled inside OnSubscribe; never attach
			return
		}
		a.attach(b.Listen(a.receive))
	})
}

// legacyActivation is one subscription to a wrapped broadcaster. The stash
// slot holds at most the single newest undelivered value; delivery runs in
// the serialized drain loop shared by Request and receive.
type legacyActivation[T any] struct {
	downstream streams.Subscriber[T]

	mu     sync.Mutex
	stash  *T
	demand int64 // saturates at unbounded
	remove func()

	cancelled atomic.Bool
	wip       atomic.Int64
}

const legacyUnbounded = int64(^uint64(0) >> 1)

func (a *legacyActivation[T]) attach(remove func()) {
	a.mu.Lock()
	a.remove = remove
	cancelled := a.cancelled.Load()
	a.mu.Unlock()
	if cancelled {
		remove()
	}
}

// receive is the listener registered on the broadcaster.
func (a *legacyActivation[T]) receive(v T) {
	if a.cancelled.Load() {
		return
	}
	a.mu.Lock()
	a.stash = &v
	a.mu.Unlock()
	a.drain()
}

func (a *legacyActivation[T]) Request(n uint64) {
	if a.cancelled.Load() {
		return
	}
	if n == 0 {
		// the legacy model carries no error channel, so a zero request is
		// logged instead of surfaced as an error signal
		logger.Get(logger.SubsystemNotify).Warn("ignoring request of zero items")
		return
	}
	a.mu.Lock()
	if a.demand != legacyUnbounded {
		inc := int64(n)
		if n >= uint64(legacyUnbounded) || a.demand+inc < a.demand {
			a.demand = legacyUnbounded
		} else {
			a.demand += inc
		}
	}
	a.mu.Unlock()
	a.drain()
}

func (a *legacyActivation[T]) Cancel() {
	if !a.cancelled.CompareAndSwap(false, true) {
		return
	}
	a.mu.Lock()
	remove := a.remove
	a.stash = nil
	a.mu.Unlock()
	if remove != nil {
		remove()
	}
}

func (a *legacyActivation[T]) drain() {
	if a.wip.Add(1) != 1 {
		return
	}
	missed := int64(1)
	for {
		a.drainLoop()
		missed = a.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}

func (a *legacyActivation[T]) drainLoop() {
	for {
		if a.cancelled.Load() {
			return
		}
		a.mu.Lock()
		if a.stash == nil || a.demand <= 0 {
			a.mu.Unlock()
			return
		}
		v := *a.stash
		a.stash = nil
		if a.demand != legacyUnbounded {
			a.demand--
		}
		a.mu.Unlock()
		a.downstream.OnNext(v)
	}
}
