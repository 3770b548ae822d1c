package sse

// Event types the package itself emits. Bridged stream payloads carry
// whatever the application's encoder produces.
const (
	// EventTypeConnected opens every session with the client's identity.
	EventTypeConnected = "connected"

	// EventTypeKeepAlive names the periodic comment lines that hold the
	// connection open through proxies.
	EventTypeKeepAlive = "keepalive"

	// EventTypeError wraps the terminal error of a bridged stream.
	EventTypeError = "error"
)
