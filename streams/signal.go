package streams

// SignalKind discriminates the closed set of events a producer may emit.
type SignalKind int

const (
	// KindItem carries a value.
	KindItem SignalKind = iota
	// KindError is terminal and carries an error.
	KindError
	// KindComplete is terminal.
	KindComplete
)

func (k SignalKind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindError:
		return "error"
	case KindComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Signal is the tagged variant {Item, Error, Complete}. After an Error or
// Complete signal no further signal of any kind is delivered on the same
// Subscription.
type Signal[T any] struct {
	Kind SignalKind
	Item T
	Err  error
}

// ItemSignal wraps a value.
func ItemSignal[T any](v T) Signal[T] {
	return Signal[T]{Kind: KindItem, Item: v}
}

// ErrorSignal wraps a terminal error.
func ErrorSignal[T any](err error) Signal[T] {
	return Signal[T]{Kind: KindError, Err: err}
}

// CompleteSignal is the terminal completion marker.
func CompleteSignal[T any]() Signal[T] {
	return Signal[T]{Kind: KindComplete}
}

// IsTerminal reports whether the signal ends the subscription.
func (s Signal[T]) IsTerminal() bool {
	return s.Kind == KindError || s.Kind == KindComplete
}
