package scheduler

import (
	"time"
)

// Immediate returns the scheduler that runs tasks synchronously on the
// calling goroutine, sleeping through any requested delay. It is the
// execution context of the legacy-compatibility adapter and of tests that
// want deterministic, single-goroutine delivery.
//
// SchedulePeriodic is the one asynchronous operation: a synchronous
// periodic loop could never hand its CancelHandle back to the caller.
func Immediate() Scheduler {
	return immediateScheduler{}
}

type immediateScheduler struct{}

func (immediateScheduler) Schedule(task Task, delay time.Duration) CancelHandle {
	if delay > 0 {
		time.Sleep(delay)
	}
	runGuarded("immediate", task)
	return &cancelFlag{}
}

func (immediateScheduler) SchedulePeriodic(task Task, period time.Duration) CancelHandle {
	if period <= 0 {
		period = time.Millisecond
	}
	handle := &cancelFlag{}
	ticker := time.NewTicker(period)
	handle.stop = ticker.Stop
	go func() {
		for range ticker.C {
			if handle.isCancelled() {
				return
			}
			runGuarded("immediate", task)
		}
	}()
	return handle
}
