// Package component defines the lifecycle contract for long-lived
// streamkit infrastructure and a registry that starts components in
// registration order and stops them in reverse.
//
// The pooled scheduler and the SSE hub implement Component; schedulers are
// created at startup and shut down at process teardown, never owned by any
// single stream.
package component
