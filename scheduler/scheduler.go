package scheduler

import (
	"sync/atomic"
	"time"

	"github.com/kbukum/streamkit/logger"
)

// Task is a unit of work submitted to a Scheduler.
type Task func()

// CancelHandle controls a scheduled task. Cancel prevents a not-yet-run
// task from running but does not interrupt one already executing. It is
// idempotent and safe to call concurrently.
type CancelHandle interface {
	Cancel()
}

// Scheduler is an execution context abstraction: it accepts a unit of work
// and a desired delay or periodicity and guarantees eventual, possibly
// concurrent, invocation. Scheduler lifecycle is external to any stream;
// schedulers are created at startup and shut down at process teardown.
type Scheduler interface {
	// Schedule runs task once after delay.
	Schedule(task Task, delay time.Duration) CancelHandle
	// SchedulePeriodic runs task every period until the handle is cancelled.
	SchedulePeriodic(task Task, period time.Duration) CancelHandle
}

// cancelFlag is the shared CancelHandle implementation.
type cancelFlag struct {
	cancelled atomic.Bool
	stop      func()
}

func (c *cancelFlag) Cancel() {
	if c.cancelled.CompareAndSwap(false, true) && c.stop != nil {
		c.stop()
	}
}

func (c *cancelFlag) isCancelled() bool {
	return c.cancelled.Load()
}

// runGuarded executes a task, recovering and logging any panic so a
// misbehaving task can never take down its scheduler.
func runGuarded(name string, task Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Get(logger.SubsystemScheduler).Error("task panicked",
				logger.Fields(logger.FieldScheduler, name, "panic", r))
		}
	}()
	task()
}
