// Package notify provides the legacy synchronous broadcast model and its
// bridge into the reactive core.
//
// Broadcaster is the classic observer: a listener list called in turn on
// every published value, with no demand, no errors, and no completion.
// AsPublisher reframes that model as a degenerate Publisher with a
// latest-value-wins drop policy, so legacy value sources compose with
// operators and schedulers like any other stream.
package notify
