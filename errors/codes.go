package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Stream protocol errors
const (
	// ErrCodeProtocolViolation indicates a producer or consumer broke the
	// demand protocol: emitting without outstanding demand, requesting zero
	// items, or delivering a second terminal signal.
	ErrCodeProtocolViolation ErrorCode = "PROTOCOL_VIOLATION"
	// ErrCodeTransformFailure indicates a user-supplied transform (map
	// function, filter predicate, scheduled task) returned an error or panicked.
	ErrCodeTransformFailure ErrorCode = "TRANSFORM_FAILURE"
	// ErrCodeSubscribeFailed indicates a publisher could not construct its
	// activation; the failure is delivered as an error signal.
	ErrCodeSubscribeFailed ErrorCode = "SUBSCRIBE_FAILED"
)

// Scheduler errors
const (
	// ErrCodeSchedulerStopped indicates a task was submitted to a scheduler
	// that has already been stopped.
	ErrCodeSchedulerStopped ErrorCode = "SCHEDULER_STOPPED"
	// ErrCodeQueueFull indicates a scheduler queue rejected a task because
	// its bounded capacity was exhausted.
	ErrCodeQueueFull ErrorCode = "QUEUE_FULL"
)

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeQueueFull:         true,
	ErrCodeSchedulerStopped:  false,
	ErrCodeProtocolViolation: false,
	ErrCodeTransformFailure:  false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
