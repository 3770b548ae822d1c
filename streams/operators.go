package streams

import (
	"sync/atomic"

	skerrors "github.com/kbukum/streamkit/errors"
)

// Operators wrap an upstream publisher with an intercepting subscriber.
// No work happens until the resulting publisher is subscribed; demand and
// cancellation pass through to the upstream unless the operator's semantics
// require remapping.

// Map transforms each item with fn. Demand passes through 1:1. An error or
// panic inside fn cancels the upstream and terminates the downstream with
// an error signal; it never escapes as an uncaught fault.
func Map[I, O any](p Publisher[I], fn func(I) (O, error)) Publisher[O] {
	return NewPublisher(func(s Subscriber[O]) {
		p.Subscribe(&mapSubscriber[I, O]{downstream: s, fn: fn})
	})
}

type mapSubscriber[I, O any] struct {
	downstream Subscriber[O]
	fn         func(I) (O, error)
	upstream   Subscription
	terminated atomic.Bool
}

func (m *mapSubscriber[I, O]) OnSubscribe(s Subscription) {
	m.upstream = s
	m.downstream.OnSubscribe(s)
}

func (m *mapSubscriber[I, O]) OnNext(v I) {
	if m.terminated.Load() {
		return
	}
	out, err := applyTransform("map", func() (O, error) { return m.fn(v) })
	if err != nil {
		m.failDownstream(err)
		return
	}
	m.downstream.OnNext(out)
}

func (m *mapSubscriber[I, O]) OnError(err error) {
	if m.terminated.CompareAndSwap(false, true) {
		m.downstream.OnError(err)
	}
}

func (m *mapSubscriber[I, O]) OnComplete() {
	if m.terminated.CompareAndSwap(false, true) {
		m.downstream.OnComplete()
	}
}

func (m *mapSubscriber[I, O]) failDownstream(err error) {
	if m.terminated.CompareAndSwap(false, true) {
		m.upstream.Cancel()
		m.downstream.OnError(err)
	}
}

// Filter keeps only items that satisfy pred. A rejected item transparently
// requests one more upstream item so downstream demand is never stranded
// while the upstream still has items. A panic inside pred terminates the
// stream with an error signal.
func Filter[T any](p Publisher[T], pred func(T) bool) Publisher[T] {
	return NewPublisher(func(s Subscriber[T]) {
		p.Subscribe(&filterSubscriber[T]{downstream: s, pred: pred})
	})
}

type filterSubscriber[T any] struct {
	downstream Subscriber[T]
	pred       func(T) bool
	upstream   Subscription
	terminated atomic.Bool
}

func (f *filterSubscriber[T]) OnSubscribe(s Subscription) {
	f.upstream = s
	f.downstream.OnSubscribe(s)
}

func (f *filterSubscriber[T]) OnNext(v T) {
	if f.terminated.Load() {
		return
	}
	keep, err := applyTransform("filter", func() (bool, error) { return f.pred(v), nil })
	if err != nil {
		if f.terminated.CompareAndSwap(false, true) {
			f.upstream.Cancel()
			f.downstream.OnError(err)
		}
		return
	}
	if keep {
		f.downstream.OnNext(v)
		return
	}
	// rejected: the consumed unit of demand is re-requested upstream
	f.upstream.Request(1)
}

func (f *filterSubscriber[T]) OnError(err error) {
	if f.terminated.CompareAndSwap(false, true) {
		f.downstream.OnError(err)
	}
}

func (f *filterSubscriber[T]) OnComplete() {
	if f.terminated.CompareAndSwap(false, true) {
		f.downstream.OnComplete()
	}
}

// Take passes through the first n items, then cancels the upstream and
// completes. Take(p, 0) completes immediately on activation.
func Take[T any](p Publisher[T], n uint64) Publisher[T] {
	return NewPublisher(func(s Subscriber[T]) {
		if n == 0 {
			s.OnSubscribe(nopSubscription{})
			s.OnComplete()
			return
		}
		p.Subscribe(&takeSubscriber[T]{downstream: s, limit: int64(n), remaining: int64(n)})
	})
}

type takeSubscriber[T any] struct {
	downstream Subscriber[T]
	limit      int64
	remaining  int64
	upstream   Subscription
	requested  atomic.Int64
	terminated atomic.Bool
}

func (t *takeSubscriber[T]) OnSubscribe(s Subscription) {
	t.upstream = s
	t.downstream.OnSubscribe(&cappedSubscription[T]{take: t})
}

func (t *takeSubscriber[T]) OnNext(v T) {
	if t.terminated.Load() {
		return
	}
	t.remaining--
	t.downstream.OnNext(v)
	if t.remaining == 0 && t.terminated.CompareAndSwap(false, true) {
		t.upstream.Cancel()
		t.downstream.OnComplete()
	}
}

func (t *takeSubscriber[T]) OnError(err error) {
	if t.terminated.CompareAndSwap(false, true) {
		t.downstream.OnError(err)
	}
}

func (t *takeSubscriber[T]) OnComplete() {
	if t.terminated.CompareAndSwap(false, true) {
		t.downstream.OnComplete()
	}
}

// cappedSubscription forwards at most the remaining take count upstream so
// the source never produces items the operator would discard.
type cappedSubscription[T any] struct {
	take *takeSubscriber[T]
}

func (c *cappedSubscription[T]) Request(n uint64) {
	if n == 0 {
		c.take.upstream.Request(0)
		return
	}
	limit := c.take.limit
	already := c.take.requested.Load()
	for {
		if already >= limit {
			return
		}
		grant := limit - already
		if n < uint64(grant) {
			grant = int64(n)
		}
		if c.take.requested.CompareAndSwap(already, already+grant) {
			c.take.upstream.Request(uint64(grant))
			return
		}
		already = c.take.requested.Load()
	}
}

func (c *cappedSubscription[T]) Cancel() {
	c.take.terminated.Store(true)
	c.take.upstream.Cancel()
}

// Skip drops the first n items, re-requesting one upstream item per dropped
// item so downstream demand is preserved.
func Skip[T any](p Publisher[T], n uint64) Publisher[T] {
	return NewPublisher(func(s Subscriber[T]) {
		p.Subscribe(&skipSubscriber[T]{downstream: s, toSkip: int64(n)})
	})
}

type skipSubscriber[T any] struct {
	downstream Subscriber[T]
	toSkip     int64
	upstream   Subscription
	terminated atomic.Bool
}

func (sk *skipSubscriber[T]) OnSubscribe(s Subscription) {
	sk.upstream = s
	sk.downstream.OnSubscribe(s)
}

func (sk *skipSubscriber[T]) OnNext(v T) {
	if sk.terminated.Load() {
		return
	}
	if sk.toSkip > 0 {
		sk.toSkip--
		sk.upstream.Request(1)
		return
	}
	sk.downstream.OnNext(v)
}

func (sk *skipSubscriber[T]) OnError(err error) {
	if sk.terminated.CompareAndSwap(false, true) {
		sk.downstream.OnError(err)
	}
}

func (sk *skipSubscriber[T]) OnComplete() {
	if sk.terminated.CompareAndSwap(false, true) {
		sk.downstream.OnComplete()
	}
}

// Tap calls fn as a side-effect for each item, then passes the item through
// unchanged. Use for logging, metrics, or mid-stream publishing. A panic
// inside fn terminates the stream with an error signal.
func Tap[T any](p Publisher[T], fn func(T)) Publisher[T] {
	return Map(p, func(v T) (T, error) {
		fn(v)
		return v, nil
	})
}

// applyTransform runs a user-supplied transform, converting a panic into a
// transform-failure error so it never crosses an operator boundary.
func applyTransform[O any](stage string, fn func() (O, error)) (out O, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = skerrors.TransformFailure(stage, r)
		}
	}()
	out, err = fn()
	if err != nil {
		err = skerrors.TransformFailure(stage, nil).WithCause(err)
	}
	return out, err
}
