package component

import "context"

// HealthStatus classifies a component's health.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is one component's health report. Message carries a short
// human-readable detail such as queue depth or the reason for degradation.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// OK reports whether the component is usable (healthy or degraded).
func (h Health) OK() bool {
	return h.Status != StatusUnhealthy
}

// Component is a long-lived piece of infrastructure with an explicit
// lifecycle: the pooled scheduler, the SSE hub, and the HTTP server all
// implement it so the bootstrap layer can start, stop, and probe them
// uniformly.
//
// Start must be non-blocking: it launches the component's goroutines and
// returns. Stop must be safe to call even when Start was never called or
// failed.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}
