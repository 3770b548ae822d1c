// Package scheduler provides the execution-context abstraction for
// streamkit and two concrete schedulers.
//
// Immediate runs tasks synchronously on the calling goroutine and backs the
// legacy-compatibility adapter. Pool dispatches onto a bounded worker pool
// and is lifecycle-managed as a component.
//
// SerialQueue is the ordering primitive operators build on: tasks enqueued
// on one SerialQueue run in submission order with at most one in flight,
// which is how per-subscription signal delivery stays serialized on a
// concurrent pool.
//
// Task panics are recovered and logged; they never terminate a worker or
// the pool.
//
//	pool := scheduler.NewPool(scheduler.PoolConfig{Workers: 8})
//	_ = pool.Start(ctx)
//	defer pool.Stop(ctx)
//
//	q := scheduler.NewSerialQueue(pool, "subscription-1")
//	q.Enqueue(deliverSignal)
package scheduler
