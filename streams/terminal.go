package streams

import (
	"context"
	"sync"
	"sync/atomic"
)

// Terminals subscribe to a publisher and pull it to completion. They are
// the only functions in this package that consume a stream; everything
// else stays lazy.

// Runnable is a fully-configured stream ready to execute.
type Runnable struct {
	run func(ctx context.Context) error
}

// Run executes the stream until a terminal signal or context cancellation.
func (r *Runnable) Run(ctx context.Context) error {
	return r.run(ctx)
}

// Drain creates a Runnable that requests unbounded demand and feeds every
// item to sink. A sink error cancels the subscription and is returned.
func Drain[T any](p Publisher[T], sink func(T) error) *Runnable {
	return &Runnable{
		run: func(ctx context.Context) error {
			var (
				mu      sync.Mutex
				sinkErr error
			)
			term := newTerminalSubscriber[T](func(v T, sub Subscription) {
				if err := sink(v); err != nil {
					mu.Lock()
					sinkErr = err
					mu.Unlock()
					sub.Cancel()
				}
			})
			// emission runs on its own goroutine so a blocking source
			// cannot pin Run past context cancellation
			go p.Subscribe(term)

			select {
			case <-term.done:
			case <-ctx.Done():
				term.cancel()
				return ctx.Err()
			}
			mu.Lock()
			defer mu.Unlock()
			if sinkErr != nil {
				return sinkErr
			}
			return term.err
		},
	}
}

// Each pulls all items and calls fn for each. Convenience wrapper around Drain.
func Each[T any](ctx context.Context, p Publisher[T], fn func(T) error) error {
	return Drain(p, fn).Run(ctx)
}

// Collect runs the stream with unbounded demand and returns all items.
// It returns the items received so far alongside any terminal error.
func Collect[T any](ctx context.Context, p Publisher[T]) ([]T, error) {
	var (
		mu    sync.Mutex
		items []T
	)
	err := Each(ctx, p, func(v T) error {
		mu.Lock()
		items = append(items, v)
		mu.Unlock()
		return nil
	})
	return items, err
}

// terminalSubscriber drives a subscription to its end. When the sink
// cancels, done is closed as well because no further signals will arrive.
// The subscription is stored atomically because OnSubscribe arrives on the
// emission goroutine while cancel may come from the Run caller.
type terminalSubscriber[T any] struct {
	onItem    func(T, Subscription)
	sub       atomic.Pointer[subscriptionBox]
	cancelled atomic.Bool
	err       error
	done      chan struct{}
	closeOnce sync.Once
}

func newTerminalSubscriber[T any](onItem func(T, Subscription)) *terminalSubscriber[T] {
	return &terminalSubscriber[T]{onItem: onItem, done: make(chan struct{})}
}

// OnSubscribe may arrive after cancel when the source is slow to activate.
// The flag is checked after the store so that a concurrent cancel either
// sees the stored subscription or this path sees the flag; both sides
// cancelling is harmless since Cancel is idempotent.
func (t *terminalSubscriber[T]) OnSubscribe(s Subscription) {
	t.sub.Store(&subscriptionBox{s: s})
	if t.cancelled.Load() {
		s.Cancel()
		return
	}
	s.Request(Unbounded)
}

func (t *terminalSubscriber[T]) OnNext(v T) {
	t.onItem(v, &terminalControl[T]{t})
}

func (t *terminalSubscriber[T]) OnError(err error) {
	t.err = err
	t.closeOnce.Do(func() { close(t.done) })
}

func (t *terminalSubscriber[T]) OnComplete() {
	t.closeOnce.Do(func() { close(t.done) })
}

func (t *terminalSubscriber[T]) cancel() {
	t.cancelled.Store(true)
	if box := t.sub.Load(); box != nil {
		box.s.Cancel()
	}
	t.closeOnce.Do(func() { close(t.done) })
}

// terminalControl exposes cancellation to the sink callback; a cancel from
// the sink also releases the waiting Run call.
type terminalControl[T any] struct {
	t *terminalSubscriber[T]
}

func (c *terminalControl[T]) Request(n uint64) {
	if box := c.t.sub.Load(); box != nil {
		box.s.Request(n)
	}
}

func (c *terminalControl[T]) Cancel() {
	c.t.cancel()
}
