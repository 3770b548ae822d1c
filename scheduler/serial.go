package scheduler

import (
	"sync"
)

// SerialQueue is a FIFO sub-queue bound to a Scheduler: at most one of its
// tasks is in flight at a time regardless of scheduler concurrency, and
// tasks run in submission order. Signal delivery for a single subscription
// is funneled through one SerialQueue to keep it serialized.
type SerialQueue struct {
	s        Scheduler
	name     string
	mu       sync.Mutex
	queue    []Task
	running  bool
	disposed bool
}

// NewSerialQueue creates a serial sub-queue on s.
func NewSerialQueue(s Scheduler, name string) *SerialQueue {
	return &SerialQueue{s: s, name: name}
}

// Enqueue appends a task and kicks off a drain if none is in flight.
// Tasks enqueued after Dispose are dropped.
func (q *SerialQueue) Enqueue(task Task) {
	q.mu.Lock()
	if q.disposed {
		q.mu.Unlock()
		return
	}
	q.queue = append(q.queue, task)
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()
	q.s.Schedule(q.drain, 0)
}

// drain runs queued tasks in order until the queue is empty, pinning the
// queue to a single worker for the duration.
func (q *SerialQueue) drain() {
	for {
		q.mu.Lock()
		if q.disposed || len(q.queue) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		task := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()
		runGuarded(q.name, task)
	}
}

// Dispose drops all pending tasks and rejects future ones. An in-flight
// task is not interrupted.
func (q *SerialQueue) Dispose() {
	q.mu.Lock()
	q.disposed = true
	q.queue = nil
	q.mu.Unlock()
}

// Len returns the number of pending tasks.
func (q *SerialQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}
