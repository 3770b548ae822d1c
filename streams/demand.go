package streams

import (
	"math"
	"sync/atomic"
)

// unboundedDemand is the internal saturation point of the demand counter.
// Once reached, items no longer decrement it.
const unboundedDemand = math.MaxInt64

// demand is the outstanding-demand counter shared between the consumer side
// (Request) and the producer side (tryDec) of a Subscription. All updates
// are CAS-based since the two sides may run on different goroutines.
type demand struct {
	n atomic.Int64
}

// add increases outstanding demand by n, saturating at unboundedDemand.
func (d *demand) add(n uint64) {
	inc := int64(unboundedDemand)
	if n < uint64(unboundedDemand) {
		inc = int64(n)
	}
	for {
		cur := d.n.Load()
		if cur == unboundedDemand {
			return
		}
		next := cur + inc
		if next < cur {
			// overflow: saturate
			next = unboundedDemand
		}
		if d.n.CompareAndSwap(cur, next) {
			return
		}
	}
}

// tryDec consumes one unit of demand. It reports false when no demand is
// outstanding. Unbounded demand is never decremented.
func (d *demand) tryDec() bool {
	for {
		cur := d.n.Load()
		if cur == unboundedDemand {
			return true
		}
		if cur <= 0 {
			return false
		}
		if d.n.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

// get returns the current outstanding demand.
func (d *demand) get() int64 {
	return d.n.Load()
}

// Activation lifecycle states. Active is the zero value; the three terminal
// states are absorbing, enforced by CAS transitions.
const (
	stateActive int32 = iota
	stateCompleted
	stateErrored
	stateCancelled
)

// lifecycle is the per-activation state machine:
// Active -> {Completed | Errored | Cancelled}.
type lifecycle struct {
	v atomic.Int32
}

// complete transitions to Completed. Reports false if already terminal.
func (l *lifecycle) complete() bool {
	return l.v.CompareAndSwap(stateActive, stateCompleted)
}

// fail transitions to Errored. Reports false if already terminal.
func (l *lifecycle) fail() bool {
	return l.v.CompareAndSwap(stateActive, stateErrored)
}

// cancel transitions to Cancelled. Reports false if already terminal.
func (l *lifecycle) cancel() bool {
	return l.v.CompareAndSwap(stateActive, stateCancelled)
}

func (l *lifecycle) isActive() bool {
	return l.v.Load() == stateActive
}

func (l *lifecycle) isCancelled() bool {
	return l.v.Load() == stateCancelled
}
