package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/streamkit/logger"
)

// DefaultStopTimeout bounds how long StopAll waits for each component.
const DefaultStopTimeout = 10 * time.Second

// Registry owns a set of components and drives their lifecycle in a
// deterministic order: StartAll walks registration order, StopAll walks it
// in reverse so dependents shut down before their dependencies.
type Registry struct {
	mu          sync.RWMutex
	order       []string
	byName      map[string]Component
	running     map[string]bool
	stopTimeout time.Duration
}

// NewRegistry returns an empty registry with the default per-component
// stop timeout.
func NewRegistry() *Registry {
	return &Registry{
		byName:      make(map[string]Component),
		running:     make(map[string]bool),
		stopTimeout: DefaultStopTimeout,
	}
}

// SetStopTimeout overrides the per-component window StopAll grants before
// moving on to the next component.
func (r *Registry) SetStopTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d > 0 {
		r.stopTimeout = d
	}
}

// Register adds a component. Registration order is start order, so register
// dependencies before the components that need them. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("component %q already registered", name)
	}
	r.order = append(r.order, name)
	r.byName[name] = c

	logger.Debug("component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts every component in registration order. The first failure
// aborts the walk; components already started stay started so the caller
// can run StopAll to unwind them.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		if err := r.byName[name].Start(ctx); err != nil {
			logger.Error("component start failed", logger.ErrorFields(name, err))
			return fmt.Errorf("start %s: %w", name, err)
		}
		r.running[name] = true
		logger.Debug("component started", logger.Fields(logger.FieldComponent, name))
	}
	return nil
}

// StopAll stops the started components in reverse registration order, giving
// each a bounded window. It keeps going past failures and returns them
// joined so one stuck component cannot leak the rest.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.order) - 1; i >= 0; i-- {
		name := r.order[i]
		if !r.running[name] {
			continue
		}
		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		err := r.byName[name].Stop(stopCtx)
		cancel()
		r.running[name] = false
		if err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
			logger.Error("component stop failed", logger.ErrorFields(name, err))
			continue
		}
		logger.Debug("component stopped", logger.Fields(logger.FieldComponent, name))
	}
	return errors.Join(errs...)
}

// HealthAll probes every registered component in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name].Health(ctx))
	}
	return out
}

// Get returns the component registered under name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}
