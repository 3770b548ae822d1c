package logger

import "sync"

// Subsystem logger names used across the toolkit. Get falls back to a
// component-tagged global logger for any name not listed here, so the
// constants are a convention, not a closed set.
const (
	SubsystemStreams   = "streams"
	SubsystemScheduler = "scheduler"
	SubsystemNotify    = "notify"
	SubsystemSSE       = "sse"
	SubsystemServer    = "server"
)

var (
	registryMu sync.RWMutex
	named      map[string]*Logger
)

// Register installs l as the logger returned by Get(name), replacing any
// previous registration. Passing nil removes the registration so Get falls
// back to the global logger again.
func Register(name string, l *Logger) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if l == nil {
		delete(named, name)
		return
	}
	if named == nil {
		named = make(map[string]*Logger)
	}
	named[name] = l
}

// Get returns the logger registered under name. Unregistered names resolve
// to the global logger tagged with the name as its component, so subsystems
// can call Get unconditionally.
func Get(name string) *Logger {
	registryMu.RLock()
	l := named[name]
	registryMu.RUnlock()
	if l != nil {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults seeds the registry with component-tagged loggers derived
// from the current global logger. Bootstrap calls this once after Init so
// that subsystem loggers pick up the configured level and output.
func RegisterDefaults(names ...string) {
	if len(names) == 0 {
		names = []string{
			SubsystemStreams,
			SubsystemScheduler,
			SubsystemNotify,
			SubsystemSSE,
			SubsystemServer,
		}
	}
	for _, name := range names {
		Register(name, GetGlobalLogger().WithComponent(name))
	}
}
