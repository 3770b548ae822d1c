package streams

import (
	"sync/atomic"

	"github.com/kbukum/streamkit/scheduler"
)

// ObserveOn relocates downstream signal delivery onto s. Per-subscription
// ordering is preserved even though delivery becomes asynchronous: every
// signal of one activation funnels through one SerialQueue, so a concurrent
// pool never reorders or parallelizes them. Demand and cancellation still
// propagate upstream on the caller's goroutine.
func ObserveOn[T any](p Publisher[T], s scheduler.Scheduler) Publisher[T] {
	return NewPublisher(func(down Subscriber[T]) {
		p.Subscribe(&observeOnSubscriber[T]{
			downstream: down,
			queue:      scheduler.NewSerialQueue(s, "observe-on"),
		})
	})
}

type observeOnSubscriber[T any] struct {
	downstream Subscriber[T]
	queue      *scheduler.SerialQueue
	upstream   Subscription
	cancelled  atomic.Bool
	terminated atomic.Bool
}

func (o *observeOnSubscriber[T]) OnSubscribe(s Subscription) {
	o.upstream = s
	o.downstream.OnSubscribe(&observeOnSubscription[T]{o: o})
}

func (o *observeOnSubscriber[T]) OnNext(v T) {
	if o.terminated.Load() || o.cancelled.Load() {
		return
	}
	o.queue.Enqueue(func() {
		if !o.cancelled.Load() {
			o.downstream.OnNext(v)
		}
	})
}

func (o *observeOnSubscriber[T]) OnError(err error) {
	if !o.terminated.CompareAndSwap(false, true) {
		return
	}
	o.queue.Enqueue(func() {
		if !o.cancelled.Load() {
			o.downstream.OnError(err)
		}
	})
}

func (o *observeOnSubscriber[T]) OnComplete() {
	if !o.terminated.CompareAndSwap(false, true) {
		return
	}
	o.queue.Enqueue(func() {
		if !o.cancelled.Load() {
			o.downstream.OnComplete()
		}
	})
}

// observeOnSubscription keeps control flow on the consumer's goroutine
// while delivery happens on the scheduler.
type observeOnSubscription[T any] struct {
	o *observeOnSubscriber[T]
}

func (s *observeOnSubscription[T]) Request(n uint64) {
	s.o.upstream.Request(n)
}

func (s *observeOnSubscription[T]) Cancel() {
	if s.o.cancelled.CompareAndSwap(false, true) {
		s.o.upstream.Cancel()
		s.o.queue.Dispose()
	}
}
