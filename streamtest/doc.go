// Package streamtest provides test doubles for exercising streams:
// a signal-recording Subscriber with demand control and await helpers,
// and a cancel-counting publisher wrapper for asserting upstream
// cancellation.
package streamtest
