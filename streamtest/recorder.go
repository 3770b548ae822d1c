package streamtest

import (
	"sync"
	"time"

	"github.com/kbukum/streamkit/streams"
)

// Recorder is a Subscriber that records every signal it receives, for
// asserting stream behavior in tests. The zero demand Recorder requests
// nothing at OnSubscribe; use NewAutoRecorder or Request to grant demand.
type Recorder[T any] struct {
	autoRequest uint64

	mu       sync.Mutex
	sub      streams.Subscription
	signals  []streams.Signal[T]
	items    []T
	errs     []error
	complete int

	terminal chan struct{}
	termOnce sync.Once
}

// NewRecorder creates a Recorder that grants no initial demand.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{terminal: make(chan struct{})}
}

// NewAutoRecorder creates a Recorder that requests n at OnSubscribe.
// Use streams.Unbounded to consume everything.
func NewAutoRecorder[T any](n uint64) *Recorder[T] {
	return &Recorder[T]{autoRequest: n, terminal: make(chan struct{})}
}

func (r *Recorder[T]) OnSubscribe(s streams.Subscription) {
	r.mu.Lock()
	r.sub = s
	r.mu.Unlock()
	if r.autoRequest > 0 {
		s.Request(r.autoRequest)
	}
}

func (r *Recorder[T]) OnNext(v T) {
	r.mu.Lock()
	r.items = append(r.items, v)
	r.signals = append(r.signals, streams.ItemSignal(v))
	r.mu.Unlock()
}

func (r *Recorder[T]) OnError(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.signals = append(r.signals, streams.ErrorSignal[T](err))
	r.mu.Unlock()
	r.termOnce.Do(func() { close(r.terminal) })
}

func (r *Recorder[T]) OnComplete() {
	r.mu.Lock()
	r.complete++
	r.signals = append(r.signals, streams.CompleteSignal[T]())
	r.mu.Unlock()
	r.termOnce.Do(func() { close(r.terminal) })
}

// Request grants n more demand on the recorded subscription.
func (r *Recorder[T]) Request(n uint64) {
	r.mu.Lock()
	s := r.sub
	r.mu.Unlock()
	if s != nil {
		s.Request(n)
	}
}

// Cancel cancels the recorded subscription.
func (r *Recorder[T]) Cancel() {
	r.mu.Lock()
	s := r.sub
	r.mu.Unlock()
	if s != nil {
		s.Cancel()
	}
}

// Subscribed reports whether OnSubscribe has been delivered.
func (r *Recorder[T]) Subscribed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sub != nil
}

// Items returns a copy of the recorded items.
func (r *Recorder[T]) Items() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// Errors returns a copy of the recorded errors.
func (r *Recorder[T]) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

// Completions returns the number of OnComplete calls observed.
func (r *Recorder[T]) Completions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.complete
}

// Signals returns a copy of all recorded signals in arrival order.
func (r *Recorder[T]) Signals() []streams.Signal[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]streams.Signal[T], len(r.signals))
	copy(out, r.signals)
	return out
}

// AwaitTerminal blocks until a terminal signal arrives or timeout elapses.
// It reports whether a terminal signal was observed.
func (r *Recorder[T]) AwaitTerminal(timeout time.Duration) bool {
	select {
	case <-r.terminal:
		return true
	case <-time.After(timeout):
		return false
	}
}

// AwaitItems polls until at least n items have been recorded or timeout
// elapses. It reports whether the count was reached.
func (r *Recorder[T]) AwaitItems(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		r.mu.Lock()
		count := len(r.items)
		r.mu.Unlock()
		if count >= n {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}

// SignalCount returns the total number of signals recorded so far.
func (r *Recorder[T]) SignalCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.signals)
}
