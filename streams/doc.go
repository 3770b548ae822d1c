// Package streams provides a push-based reactive-stream core with explicit
// demand control (backpressure), lazily composed operators, and
// scheduler-controlled delivery.
//
// A Publisher is a reusable, side-effect-free stream description; each
// Subscribe call creates an independent activation with its own
// Subscription. The consumer requests demand through the Subscription and
// the producer emits at most that many items, terminated by exactly one
// error or completion signal. Cancellation is cooperative, idempotent, and
// produces no terminal signal.
//
// # Guarantees
//
// For every activation, regardless of operator combination or scheduler:
//
//   - OnSubscribe is delivered exactly once, before any other callback.
//   - At most one terminal signal (error xor complete) is delivered, and no
//     item follows it.
//   - Items are delivered only against previously granted demand; each item
//     consumes one unit unless demand is Unbounded.
//   - Signal delivery for one activation is serialized, even on a
//     concurrent scheduler.
//   - Items preserve upstream order through every operator except Merge,
//     whose contract is arrival-order interleaving.
//
// # Operators
//
// Demand-preserving:
//
//   - Map: 1:1 transform; a transform failure becomes an error signal
//   - Filter: 0:1 transform; rejected items transparently re-request
//   - Tap: side-effect without altering the item
//   - Take, Skip: counting operators
//
// Demand-remapping:
//
//   - Buffer: one downstream window request becomes size upstream items
//   - Merge: multiplexes sources with bounded per-source prefetch
//   - ObserveOn: relocates delivery onto a scheduler via a serial queue
//
// # Usage
//
//	src := streams.FromSlice([]int{1, 2, 3, 4, 5})
//	doubled := streams.Map(src, func(n int) (int, error) { return n * 2, nil })
//	evens := streams.Filter(doubled, func(n int) bool { return n%2 == 0 })
//	results, _ := streams.Collect(ctx, evens)
//
// With explicit demand:
//
//	rec := streams.SubscriberFuncs[int]{
//	    OnSubscribe: func(s streams.Subscription) { s.Request(3) },
//	    OnNext:      func(n int) { fmt.Println(n) },
//	}.Build()
//	src.Subscribe(rec)
package streams
