package streams

import (
	"sync/atomic"

	skerrors "github.com/kbukum/streamkit/errors"
)

// Generator is the pull contract behind every built-in source: it returns
// the next value, ok=false when exhausted, or an error to terminate the
// stream. A Generator is created fresh per activation and is only ever
// called from the activation's serialized emission loop.
type Generator[T any] func() (T, bool, error)

// FromFunc creates a publisher that pulls values from a generator factory.
// The factory runs once per Subscribe call so every activation gets
// independent state.
func FromFunc[T any](factory func() Generator[T]) Publisher[T] {
	return NewPublisher(func(s Subscriber[T]) {
		activate(s, factory())
	})
}

// FromSlice creates a publisher that emits the elements of items in order
// and then completes. Because the length is known up front, completion is
// delivered together with the last item instead of waiting for more demand.
func FromSlice[T any](items []T) Publisher[T] {
	return NewPublisher(func(s Subscriber[T]) {
		activateFinite(s, len(items), func(i int) T { return items[i] })
	})
}

// Just creates a publisher of the given items.
func Just[T any](items ...T) Publisher[T] {
	return FromSlice(items)
}

// Range creates a publisher emitting count consecutive integers from start.
func Range(start, count int) Publisher[int] {
	if count < 0 {
		count = 0
	}
	return NewPublisher(func(s Subscriber[int]) {
		activateFinite(s, count, func(i int) int { return start + i })
	})
}

// FromChannel creates a publisher that emits values received from ch and
// completes when ch is closed. Satisfying granted demand blocks on an empty
// channel; this is the one source with explicitly blocking semantics.
func FromChannel[T any](ch <-chan T) Publisher[T] {
	return FromFunc(func() Generator[T] {
		return func() (T, bool, error) {
			v, open := <-ch
			if !open {
				var zero T
				return zero, false, nil
			}
			return v, true, nil
		}
	})
}

// Empty creates a publisher that completes without emitting.
func Empty[T any]() Publisher[T] {
	return FromSlice[T](nil)
}

// Failed creates a publisher that delivers err immediately after activation.
func Failed[T any](err error) Publisher[T] {
	return NewPublisher(func(s Subscriber[T]) {
		s.OnSubscribe(nopSubscription{})
		s.OnError(err)
	})
}

// activate wires a subscriber to a generator-backed subscription and
// delivers OnSubscribe before any item can flow.
func activate[T any](s Subscriber[T], next Generator[T]) {
	sub := &coreSubscription[T]{downstream: s, next: next}
	s.OnSubscribe(sub)
}

// activateFinite wires a subscriber to an indexed source of known length.
// An empty source completes right after OnSubscribe without waiting for
// demand.
func activateFinite[T any](s Subscriber[T], n int, at func(int) T) {
	sub := &finiteSubscription[T]{downstream: s, n: n, at: at}
	s.OnSubscribe(sub)
	if n == 0 {
		sub.drain()
	}
}

// finiteSubscription serves sources whose length is known at activation.
// Unlike the generator path, it detects exhaustion without consuming demand,
// so completion rides out with the final item.
type finiteSubscription[T any] struct {
	downstream Subscriber[T]
	at         func(int) T
	n          int
	index      int
	demand     demand
	life       lifecycle
	wip        atomic.Int64
	violation  atomic.Pointer[error]
}

func (s *finiteSubscription[T]) Request(n uint64) {
	if !s.life.isActive() {
		return
	}
	if n == 0 {
		err := error(skerrors.ProtocolViolation("request of zero items"))
		s.violation.CompareAndSwap(nil, &err)
		s.drain()
		return
	}
	s.demand.add(n)
	s.drain()
}

func (s *finiteSubscription[T]) Cancel() {
	s.life.cancel()
}

func (s *finiteSubscription[T]) drain() {
	if s.wip.Add(1) != 1 {
		return
	}
	missed := int64(1)
	for {
		s.drainLoop()
		missed = s.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}

func (s *finiteSubscription[T]) drainLoop() {
	for {
		if !s.life.isActive() {
			return
		}
		if perr := s.violation.Load(); perr != nil {
			if s.life.fail() {
				s.downstream.OnError(*perr)
			}
			return
		}
		if s.index >= s.n {
			if s.life.complete() {
				s.downstream.OnComplete()
			}
			return
		}
		if !s.demand.tryDec() {
			return
		}
		v := s.at(s.index)
		s.index++
		s.downstream.OnNext(v)
	}
}

// coreSubscription enforces the demand protocol for pull-based sources.
// Emission is serialized through a work-in-progress counter so Request may
// be called from any goroutine, including reentrantly from OnNext.
type coreSubscription[T any] struct {
	downstream Subscriber[T]
	next       Generator[T]
	demand     demand
	life       lifecycle
	wip        atomic.Int64
	violation  atomic.Pointer[error]
}

func (s *coreSubscription[T]) Request(n uint64) {
	if !s.life.isActive() {
		return
	}
	if n == 0 {
		err := error(skerrors.ProtocolViolation("request of zero items"))
		s.violation.CompareAndSwap(nil, &err)
		s.drain()
		return
	}
	s.demand.add(n)
	s.drain()
}

func (s *coreSubscription[T]) Cancel() {
	s.life.cancel()
}

// drain runs the emission loop exactly once at a time. Late arrivals bump
// the wip counter and are picked up by the in-flight loop.
func (s *coreSubscription[T]) drain() {
	if s.wip.Add(1) != 1 {
		return
	}
	missed := int64(1)
	for {
		s.drainLoop()
		missed = s.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}

func (s *coreSubscription[T]) drainLoop() {
	for {
		if !s.life.isActive() {
			return
		}
		if perr := s.violation.Load(); perr != nil {
			if s.life.fail() {
				s.downstream.OnError(*perr)
			}
			return
		}
		if !s.demand.tryDec() {
			return
		}
		v, ok, err := s.next()
		if !s.life.isActive() {
			// cancelled while producing; drop the in-flight value
			return
		}
		if err != nil {
			if s.life.fail() {
				s.downstream.OnError(err)
			}
			return
		}
		if !ok {
			if s.life.complete() {
				s.downstream.OnComplete()
			}
			return
		}
		s.downstream.OnNext(v)
	}
}
