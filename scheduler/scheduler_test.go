package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/streamkit/component"
)

func newStartedPool(t *testing.T, cfg PoolConfig) *Pool {
	t.Helper()
	pool := NewPool(cfg)
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = pool.Stop(context.Background()) })
	return pool
}

func TestImmediateRunsSynchronously(t *testing.T) {
	ran := false
	Immediate().Schedule(func() { ran = true }, 0)
	if !ran {
		t.Error("task should have run before Schedule returned")
	}
}

func TestImmediateSleepsThroughDelay(t *testing.T) {
	start := time.Now()
	Immediate().Schedule(func() {}, 20*time.Millisecond)
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Schedule returned after %v, want at least 20ms", elapsed)
	}
}

func TestImmediateContainsPanic(t *testing.T) {
	// must not propagate to the caller
	Immediate().Schedule(func() { panic("task failure") }, 0)
}

func TestPoolRunsTasks(t *testing.T) {
	pool := newStartedPool(t, PoolConfig{Name: "run", Workers: 2, Queue: 16})

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		pool.Schedule(func() {
			count.Add(1)
			wg.Done()
		}, 0)
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks did not finish")
	}
	if count.Load() != 10 {
		t.Errorf("count = %d, want 10", count.Load())
	}
}

func TestPoolScheduleHonorsDelay(t *testing.T) {
	pool := newStartedPool(t, PoolConfig{Name: "delay", Workers: 1, Queue: 16})

	ran := make(chan time.Time, 1)
	start := time.Now()
	pool.Schedule(func() { ran <- time.Now() }, 30*time.Millisecond)

	select {
	case at := <-ran:
		if at.Sub(start) < 30*time.Millisecond {
			t.Errorf("task ran after %v, want at least 30ms", at.Sub(start))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("delayed task never ran")
	}
}

func TestPoolCancelPreventsDelayedTask(t *testing.T) {
	pool := newStartedPool(t, PoolConfig{Name: "cancel", Workers: 1, Queue: 16})

	var ran atomic.Bool
	handle := pool.Schedule(func() { ran.Store(true) }, 30*time.Millisecond)
	handle.Cancel()

	time.Sleep(80 * time.Millisecond)
	if ran.Load() {
		t.Error("cancelled task should not run")
	}
}

func TestPoolCancelPreventsQueuedTask(t *testing.T) {
	pool := newStartedPool(t, PoolConfig{Name: "queued", Workers: 1, Queue: 16})

	// occupy the single worker so the next task sits in the queue
	release := make(chan struct{})
	pool.Schedule(func() { <-release }, 0)

	var ran atomic.Bool
	handle := pool.Schedule(func() { ran.Store(true) }, 0)
	handle.Cancel()
	close(release)

	time.Sleep(50 * time.Millisecond)
	if ran.Load() {
		t.Error("task cancelled while queued should not run")
	}
}

func TestPoolScheduleDoesNotBlockWhenSaturated(t *testing.T) {
	pool := newStartedPool(t, PoolConfig{Name: "saturated", Workers: 1, Queue: 1})

	// occupy the single worker and fill the one-slot queue
	release := make(chan struct{})
	pool.Schedule(func() { <-release }, 0)

	var ran sync.WaitGroup
	ran.Add(2)
	pool.Schedule(func() { ran.Done() }, 0)

	returned := make(chan struct{})
	go func() {
		pool.Schedule(func() { ran.Done() }, 0)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Schedule blocked on a saturated queue")
	}

	close(release)
	done := make(chan struct{})
	go func() {
		ran.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("overflow task never ran")
	}
}

func TestPoolContainsPanics(t *testing.T) {
	pool := newStartedPool(t, PoolConfig{Name: "panic", Workers: 1, Queue: 16})

	pool.Schedule(func() { panic("worker task failure") }, 0)

	// the worker must survive and run subsequent tasks
	done := make(chan struct{})
	pool.Schedule(func() { close(done) }, 0)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after a panicking task")
	}
}

func TestPoolSchedulePeriodic(t *testing.T) {
	pool := newStartedPool(t, PoolConfig{Name: "periodic", Workers: 1, Queue: 16})

	var ticks atomic.Int64
	handle := pool.SchedulePeriodic(func() { ticks.Add(1) }, 10*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	handle.Cancel()
	if ticks.Load() < 3 {
		t.Fatalf("ticks = %d, want at least 3", ticks.Load())
	}

	settled := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	// one tick may already be in flight at cancel time
	if ticks.Load() > settled+1 {
		t.Errorf("ticks kept arriving after cancel: %d -> %d", settled, ticks.Load())
	}
}

func TestPoolHealthTransitions(t *testing.T) {
	pool := NewPool(PoolConfig{Name: "health", Workers: 1, Queue: 4})
	ctx := context.Background()

	if h := pool.Health(ctx); h.Status != component.StatusDegraded {
		t.Errorf("status before start = %s, want degraded", h.Status)
	}
	if err := pool.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if h := pool.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("status after start = %s, want healthy", h.Status)
	}
	if err := pool.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	if h := pool.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("status after stop = %s, want unhealthy", h.Status)
	}
}

func TestPoolStartValidatesConfig(t *testing.T) {
	pool := NewPool(PoolConfig{Name: "bad", Workers: -1, Queue: 4})
	if err := pool.Start(context.Background()); err == nil {
		t.Error("Start() should reject a negative worker count")
	}
}

func TestSerialQueueOrdersTasksOnConcurrentPool(t *testing.T) {
	pool := newStartedPool(t, PoolConfig{Name: "serial", Workers: 8, Queue: 256})
	queue := NewSerialQueue(pool, "serial-test")

	const n = 200
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		queue.Enqueue(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		})
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("serial queue did not drain")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d: serial queue reordered tasks", i, v)
		}
	}
}

func TestSerialQueueDisposeDropsPending(t *testing.T) {
	pool := newStartedPool(t, PoolConfig{Name: "dispose", Workers: 1, Queue: 16})
	queue := NewSerialQueue(pool, "dispose-test")

	release := make(chan struct{})
	queue.Enqueue(func() { <-release })

	var ran atomic.Bool
	queue.Enqueue(func() { ran.Store(true) })
	queue.Dispose()
	close(release)

	time.Sleep(50 * time.Millisecond)
	if ran.Load() {
		t.Error("pending task should have been dropped by Dispose")
	}
	queue.Enqueue(func() { ran.Store(true) })
	time.Sleep(50 * time.Millisecond)
	if ran.Load() {
		t.Error("task enqueued after Dispose should be dropped")
	}
}
