package streams

import (
	"sync/atomic"
)

// Buffer groups items into windows of up to size elements, remapping demand:
// one downstream request becomes one window, which requests size items
// upstream. The final partial window is flushed on completion. A
// non-positive size falls back to the configured DefaultBufferSize.
func Buffer[T any](p Publisher[T], size int) Publisher[[]T] {
	if size <= 0 {
		size = CurrentTunables().DefaultBufferSize
	}
	return NewPublisher(func(s Subscriber[[]T]) {
		p.Subscribe(&bufferSubscriber[T]{downstream: s, size: size})
	})
}

type bufferSubscriber[T any] struct {
	downstream Subscriber[[]T]
	size       int
	window     []T
	upstream   Subscription
	terminated atomic.Bool
}

func (b *bufferSubscriber[T]) OnSubscribe(s Subscription) {
	b.upstream = s
	b.downstream.OnSubscribe(&windowSubscription[T]{buf: b})
}

func (b *bufferSubscriber[T]) OnNext(v T) {
	if b.terminated.Load() {
		return
	}
	b.window = append(b.window, v)
	if len(b.window) == b.size {
		w := b.window
		b.window = nil
		b.downstream.OnNext(w)
	}
}

func (b *bufferSubscriber[T]) OnError(err error) {
	if b.terminated.CompareAndSwap(false, true) {
		b.window = nil
		b.downstream.OnError(err)
	}
}

func (b *bufferSubscriber[T]) OnComplete() {
	if b.terminated.CompareAndSwap(false, true) {
		if len(b.window) > 0 {
			w := b.window
			b.window = nil
			b.downstream.OnNext(w)
		}
		b.downstream.OnComplete()
	}
}

// windowSubscription converts "n windows requested" into "n*size items
// requested" upstream, saturating on overflow.
type windowSubscription[T any] struct {
	buf *bufferSubscriber[T]
}

func (w *windowSubscription[T]) Request(n uint64) {
	if n == 0 {
		w.buf.upstream.Request(0)
		return
	}
	size := uint64(w.buf.size)
	items := n * size
	if n != items/size {
		// overflow: request unbounded
		items = Unbounded
	}
	w.buf.upstream.Request(items)
}

func (w *windowSubscription[T]) Cancel() {
	w.buf.terminated.Store(true)
	w.buf.upstream.Cancel()
}
