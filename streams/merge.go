package streams

import (
	"sync"
	"sync/atomic"

	skerrors "github.com/kbukum/streamkit/errors"
)

// Merge subscribes to all sources concurrently and multiplexes their items
// in arrival order (non-deterministic interleaving). It completes only when
// every source has completed and terminates with the first error from any
// source, cancelling the remaining sources before the error signal is
// delivered downstream.
//
// Each inner subscription keeps a small prefetch window in flight and
// replenishes it one-for-one as downstream demand is consumed, so the total
// buffered backlog stays bounded by sources x prefetch.
func Merge[T any](sources ...Publisher[T]) Publisher[T] {
	return NewPublisher(func(s Subscriber[T]) {
		coord := &mergeCoordinator[T]{
			downstream: s,
			prefetch:   CurrentTunables().MergePrefetch,
		}
		coord.active.Store(int32(len(sources)))
		coord.inners = make([]*mergeInner[T], len(sources))
		for i := range sources {
			coord.inners[i] = &mergeInner[T]{coord: coord}
		}

		s.OnSubscribe(coord)

		if len(sources) == 0 {
			if coord.life.complete() {
				s.OnComplete()
			}
			return
		}
		for i, src := range sources {
			src.Subscribe(coord.inners[i])
		}
	})
}

// mergeCoordinator is the downstream-facing Subscription and the dispatcher
// core shared by all inner subscribers. All downstream signal delivery runs
// inside the serialized drain loop.
type mergeCoordinator[T any] struct {
	downstream Subscriber[T]
	prefetch   int

	demand demand
	life   lifecycle
	wip    atomic.Int64

	mu    sync.Mutex
	queue []pendingItem[T]

	firstErr atomic.Pointer[error]
	active   atomic.Int32
	inners   []*mergeInner[T]
}

type pendingItem[T any] struct {
	val  T
	from *mergeInner[T]
}

func (c *mergeCoordinator[T]) Request(n uint64) {
	if !c.life.isActive() {
		return
	}
	if n == 0 {
		err := error(skerrors.ProtocolViolation("request of zero items"))
		c.firstErr.CompareAndSwap(nil, &err)
		c.drain()
		return
	}
	c.demand.add(n)
	c.drain()
}

func (c *mergeCoordinator[T]) Cancel() {
	if c.life.cancel() {
		c.cancelInners(nil)
	}
}

// cancelInners cancels every inner subscription except the one that caused
// the termination.
func (c *mergeCoordinator[T]) cancelInners(except *mergeInner[T]) {
	for _, in := range c.inners {
		if in != except {
			in.cancel()
		}
	}
}

func (c *mergeCoordinator[T]) drain() {
	if c.wip.Add(1) != 1 {
		return
	}
	missed := int64(1)
	for {
		c.drainLoop()
		missed = c.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}

func (c *mergeCoordinator[T]) drainLoop() {
	for {
		if !c.life.isActive() {
			return
		}
		if perr := c.firstErr.Load(); perr != nil {
			if c.life.fail() {
				c.cancelInners(nil)
				c.downstream.OnError(*perr)
			}
			return
		}

		// demand is only consumed inside this serialized loop, so checking
		// it after locking the queue is race-free.
		c.mu.Lock()
		hasItem := len(c.queue) > 0
		if hasItem && c.demand.tryDec() {
			item := c.queue[0]
			c.queue = c.queue[1:]
			c.mu.Unlock()
			c.downstream.OnNext(item.val)
			item.from.request(1)
			continue
		}
		c.mu.Unlock()

		if !hasItem && c.active.Load() == 0 {
			if c.life.complete() {
				c.downstream.OnComplete()
			}
			return
		}
		// waiting on demand or on upstream arrivals
		return
	}
}

// inner callbacks

func (c *mergeCoordinator[T]) innerNext(in *mergeInner[T], v T) {
	if !c.life.isActive() {
		return
	}
	c.mu.Lock()
	c.queue = append(c.queue, pendingItem[T]{val: v, from: in})
	c.mu.Unlock()
	c.drain()
}

func (c *mergeCoordinator[T]) innerError(in *mergeInner[T], err error) {
	c.firstErr.CompareAndSwap(nil, &err)
	c.drain()
}

func (c *mergeCoordinator[T]) innerComplete() {
	c.active.Add(-1)
	c.drain()
}

// mergeInner subscribes to one source on behalf of the coordinator.
type mergeInner[T any] struct {
	coord      *mergeCoordinator[T]
	sub        atomic.Pointer[subscriptionBox]
	terminated atomic.Bool
}

// subscriptionBox lets the inner store its Subscription atomically; the
// source may deliver OnSubscribe on an arbitrary goroutine.
type subscriptionBox struct {
	s Subscription
}

func (in *mergeInner[T]) OnSubscribe(s Subscription) {
	in.sub.Store(&subscriptionBox{s: s})
	if in.terminated.Load() || !in.coord.life.isActive() {
		s.Cancel()
		return
	}
	n := in.coord.prefetch
	if n <= 0 {
		n = 1
	}
	s.Request(uint64(n))
}

func (in *mergeInner[T]) OnNext(v T) {
	if in.terminated.Load() {
		return
	}
	in.coord.innerNext(in, v)
}

func (in *mergeInner[T]) OnError(err error) {
	if in.terminated.CompareAndSwap(false, true) {
		in.coord.innerError(in, err)
	}
}

func (in *mergeInner[T]) OnComplete() {
	if in.terminated.CompareAndSwap(false, true) {
		in.coord.innerComplete()
	}
}

func (in *mergeInner[T]) request(n uint64) {
	if in.terminated.Load() {
		return
	}
	if box := in.sub.Load(); box != nil {
		box.s.Request(n)
	}
}

func (in *mergeInner[T]) cancel() {
	if in.terminated.CompareAndSwap(false, true) {
		if box := in.sub.Load(); box != nil {
			box.s.Cancel()
		}
	}
}
