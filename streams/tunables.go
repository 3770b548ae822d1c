package streams

import "sync"

// Tunables are process-wide defaults for operators that need sizing
// decisions. They are normally set once at startup from the config package.
type Tunables struct {
	// MergePrefetch is the per-source window Merge keeps in flight before
	// downstream demand arrives.
	MergePrefetch int
	// DefaultBufferSize is the window size Buffer falls back to when asked
	// for a non-positive size.
	DefaultBufferSize int
}

var (
	tunablesMu sync.RWMutex
	tunables   = Tunables{MergePrefetch: 1, DefaultBufferSize: 16}
)

// Configure replaces the process-wide tunables. Zero fields keep their
// current values.
func Configure(t Tunables) {
	tunablesMu.Lock()
	defer tunablesMu.Unlock()
	if t.MergePrefetch > 0 {
		tunables.MergePrefetch = t.MergePrefetch
	}
	if t.DefaultBufferSize > 0 {
		tunables.DefaultBufferSize = t.DefaultBufferSize
	}
}

// CurrentTunables returns a copy of the process-wide tunables.
func CurrentTunables() Tunables {
	tunablesMu.RLock()
	defer tunablesMu.RUnlock()
	return tunables
}
