package observability

import (
	"context"
	"sync/atomic"

	"github.com/kbukum/streamkit/streams"
)

// Instrument wraps a publisher so that every activation reports its signal
// traffic to the given StreamMetrics under the stream name. Demand flows
// through untouched.
func Instrument[T any](source streams.Publisher[T], metrics *StreamMetrics, stream string) streams.Publisher[T] {
	return streams.NewPublisher(func(downstream streams.Subscriber[T]) {
		source.Subscribe(&meteredSubscriber[T]{
			downstream: downstream,
			metrics:    metrics,
			stream:     stream,
		})
	})
}

type meteredSubscriber[T any] struct {
	downstream streams.Subscriber[T]
	metrics    *StreamMetrics
	stream     string
	settled    atomic.Bool
}

func (s *meteredSubscriber[T]) OnSubscribe(sub streams.Subscription) {
	s.metrics.RecordSubscribe(context.Background(), s.stream)
	s.downstream.OnSubscribe(&meteredSubscription[T]{parent: s, upstream: sub})
}

func (s *meteredSubscriber[T]) OnNext(item T) {
	s.metrics.RecordItem(context.Background(), s.stream)
	s.downstream.OnNext(item)
}

func (s *meteredSubscriber[T]) OnError(err error) {
	if s.settled.CompareAndSwap(false, true) {
		s.metrics.RecordError(context.Background(), s.stream)
	}
	s.downstream.OnError(err)
}

func (s *meteredSubscriber[T]) OnComplete() {
	if s.settled.CompareAndSwap(false, true) {
		s.metrics.RecordComplete(context.Background(), s.stream)
	}
	s.downstream.OnComplete()
}

type meteredSubscription[T any] struct {
	parent   *meteredSubscriber[T]
	upstream streams.Subscription
}

func (s *meteredSubscription[T]) Request(n uint64) {
	s.upstream.Request(n)
}

func (s *meteredSubscription[T]) Cancel() {
	if s.parent.settled.CompareAndSwap(false, true) {
		s.parent.metrics.RecordCancel(context.Background(), s.parent.stream)
	}
	s.upstream.Cancel()
}
