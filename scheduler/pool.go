package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/streamkit/component"
	skerrors "github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/logger"
)

// PoolConfig configures a pooled scheduler.
type PoolConfig struct {
	// Name identifies the pool in logs, health reports and the component
	// registry.
	Name string `yaml:"name" mapstructure:"name"`
	// Workers is the number of concurrent workers.
	Workers int `yaml:"workers" mapstructure:"workers" validate:"min=1"`
	// Queue is the bounded task queue capacity.
	Queue int `yaml:"queue" mapstructure:"queue" validate:"min=1"`
}

// ApplyDefaults applies default values to pool configuration.
func (c *PoolConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "pool"
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.Queue == 0 {
		c.Queue = 256
	}
}

// Validate validates pool configuration.
func (c *PoolConfig) Validate() error {
	if c.Workers < 1 {
		return skerrors.InvalidConfig("scheduler", fmt.Errorf("workers must be >= 1 (got: %d)", c.Workers))
	}
	if c.Queue < 1 {
		return skerrors.InvalidConfig("scheduler", fmt.Errorf("queue must be >= 1 (got: %d)", c.Queue))
	}
	return nil
}

// Pool dispatches tasks onto a bounded worker pool. It implements
// component.Component so it can be lifecycle-managed by a registry.
// Tasks submitted to the same SerialQueue run in submission order even
// when pool concurrency exceeds one.
type Pool struct {
	cfg     PoolConfig
	tasks   chan Task
	stop    chan struct{}
	wg      sync.WaitGroup
	started atomic.Bool
	stopped atomic.Bool
	log     *logger.Logger
}

// NewPool creates a pooled scheduler from cfg. Call Start before scheduling.
func NewPool(cfg PoolConfig) *Pool {
	cfg.ApplyDefaults()
	return &Pool{
		cfg:   cfg,
		tasks: make(chan Task, cfg.Queue),
		stop:  make(chan struct{}),
		log:   logger.Get(logger.SubsystemScheduler).WithFields(logger.Fields(logger.FieldScheduler, cfg.Name)),
	}
}

// Name returns the pool's component name.
func (p *Pool) Name() string { return p.cfg.Name }

// Start validates the configuration and launches the workers.
func (p *Pool) Start(_ context.Context) error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	if !p.started.CompareAndSwap(false, true) {
		return nil
	}
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.log.Debug("pool started", logger.Fields("workers", p.cfg.Workers, "queue", p.cfg.Queue))
	return nil
}

// Stop drains the pool: no new tasks are accepted, queued tasks are
// discarded, and in-flight tasks finish (bounded by ctx).
func (p *Pool) Stop(ctx context.Context) error {
	if !p.stopped.CompareAndSwap(false, true) {
		return nil
	}
	close(p.stop)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.log.Debug("pool stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health reports the pool state with current queue depth.
func (p *Pool) Health(_ context.Context) component.Health {
	status := component.StatusHealthy
	msg := fmt.Sprintf("queue %d/%d", len(p.tasks), cap(p.tasks))
	if p.stopped.Load() {
		status = component.StatusUnhealthy
		msg = "stopped"
	} else if !p.started.Load() {
		status = component.StatusDegraded
		msg = "not started"
	}
	return component.Health{Name: p.cfg.Name, Status: status, Message: msg}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			return
		case task := <-p.tasks:
			runGuarded(p.cfg.Name, task)
		}
	}
}

// submit enqueues a task without ever blocking the caller. Only a pool
// worker may block, so when the queue is saturated the wait moves to a
// detached goroutine: the task still runs eventually and the submitting
// goroutine (often an upstream emission thread) returns immediately.
// Submission after Stop is dropped with a log entry.
func (p *Pool) submit(task Task) {
	if p.stopped.Load() {
		p.log.Warn("task submitted to stopped scheduler",
			logger.ErrorFields("submit", skerrors.SchedulerStopped(p.cfg.Name)))
		return
	}
	select {
	case p.tasks <- task:
	case <-p.stop:
		p.log.Warn("task dropped during shutdown")
	default:
		p.log.Warn("task queue saturated",
			logger.ErrorFields("submit", skerrors.QueueFull(p.cfg.Name, cap(p.tasks))))
		go func() {
			select {
			case p.tasks <- task:
			case <-p.stop:
			}
		}()
	}
}

// Schedule runs task once after delay on a pool worker.
func (p *Pool) Schedule(task Task, delay time.Duration) CancelHandle {
	handle := &cancelFlag{}
	guarded := func() {
		if !handle.isCancelled() {
			task()
		}
	}
	run := func() {
		if !handle.isCancelled() {
			p.submit(guarded)
		}
	}
	if delay <= 0 {
		run()
		return handle
	}
	timer := time.AfterFunc(delay, run)
	handle.stop = func() { timer.Stop() }
	return handle
}

// SchedulePeriodic runs task every period on a pool worker until the
// handle is cancelled or the pool stops.
func (p *Pool) SchedulePeriodic(task Task, period time.Duration) CancelHandle {
	if period <= 0 {
		period = time.Millisecond
	}
	handle := &cancelFlag{}
	ticker := time.NewTicker(period)
	handle.stop = ticker.Stop
	go func() {
		for {
			select {
			case <-p.stop:
				ticker.Stop()
				return
			case <-ticker.C:
				if handle.isCancelled() {
					return
				}
				p.submit(task)
			}
		}
	}()
	return handle
}
