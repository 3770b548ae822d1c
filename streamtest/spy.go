package streamtest

import (
	"sync/atomic"

	"github.com/kbukum/streamkit/streams"
)

// CancelSpy wraps a publisher and counts Cancel calls on the subscriptions
// it hands out, so tests can assert that operators cancel their upstreams.
type CancelSpy[T any] struct {
	upstream streams.Publisher[T]
	cancels  atomic.Int64
}

// NewCancelSpy wraps p.
func NewCancelSpy[T any](p streams.Publisher[T]) *CancelSpy[T] {
	return &CancelSpy[T]{upstream: p}
}

func (c *CancelSpy[T]) Subscribe(s streams.Subscriber[T]) {
	c.upstream.Subscribe(&spySubscriber[T]{spy: c, downstream: s})
}

// Cancels returns the number of Cancel calls observed across all
// subscriptions of this publisher.
func (c *CancelSpy[T]) Cancels() int {
	return int(c.cancels.Load())
}

type spySubscriber[T any] struct {
	spy        *CancelSpy[T]
	downstream streams.Subscriber[T]
}

func (s *spySubscriber[T]) OnSubscribe(sub streams.Subscription) {
	s.downstream.OnSubscribe(&spySubscription[T]{spy: s.spy, inner: sub})
}

func (s *spySubscriber[T]) OnNext(v T)        { s.downstream.OnNext(v) }
func (s *spySubscriber[T]) OnError(err error) { s.downstream.OnError(err) }
func (s *spySubscriber[T]) OnComplete()       { s.downstream.OnComplete() }

type spySubscription[T any] struct {
	spy   *CancelSpy[T]
	inner streams.Subscription
}

func (s *spySubscription[T]) Request(n uint64) { s.inner.Request(n) }

func (s *spySubscription[T]) Cancel() {
	s.spy.cancels.Add(1)
	s.inner.Cancel()
}
