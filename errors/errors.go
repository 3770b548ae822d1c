// Package errors provides unified error handling for streamkit.
// It implements structured error types with machine-readable codes and
// retryable detection so operators and schedulers can surface failures
// as error signals without losing their cause.
package errors

import (
	"errors"
	"fmt"
)

// StreamError is the unified streamkit error type.
type StreamError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *StreamError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *StreamError) WithCause(cause error) *StreamError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *StreamError) WithDetail(key string, value any) *StreamError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new StreamError with automatic retryable detection.
func New(code ErrorCode, message string) *StreamError {
	return &StreamError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// ProtocolViolation creates a StreamError for a broken demand protocol.
// The operation describes what was attempted (e.g. "emit without demand").
func ProtocolViolation(operation string) *StreamError {
	return &StreamError{
		Code: ErrCodeProtocolViolation, Message: fmt.Sprintf("stream protocol violated: %s", operation),
		Retryable: false,
		Details:   map[string]any{"operation": operation},
	}
}

// TransformFailure creates a StreamError for a failed user transform.
// Use WithCause for error returns; recovered panic values go into details.
func TransformFailure(stage string, recovered any) *StreamError {
	details := map[string]any{"stage": stage}
	if recovered != nil {
		details["panic"] = fmt.Sprintf("%v", recovered)
	}
	return &StreamError{
		Code: ErrCodeTransformFailure, Message: fmt.Sprintf("transform failed in %s", stage),
		Retryable: false, Details: details,
	}
}

// SubscribeFailed creates a StreamError for a publisher that could not
// construct its activation.
func SubscribeFailed(publisher string, cause error) *StreamError {
	return &StreamError{
		Code: ErrCodeSubscribeFailed, Message: fmt.Sprintf("subscribe to %s failed", publisher),
		Retryable: false, Cause: cause,
		Details: map[string]any{"publisher": publisher},
	}
}

// SchedulerStopped creates a StreamError for a task submitted after shutdown.
func SchedulerStopped(name string) *StreamError {
	return &StreamError{
		Code: ErrCodeSchedulerStopped, Message: fmt.Sprintf("scheduler %s is stopped", name),
		Retryable: false,
		Details:   map[string]any{"scheduler": name},
	}
}

// QueueFull creates a StreamError for a bounded queue that rejected a task.
func QueueFull(name string, capacity int) *StreamError {
	return &StreamError{
		Code: ErrCodeQueueFull, Message: fmt.Sprintf("queue %s is full", name),
		Retryable: true,
		Details:   map[string]any{"queue": name, "capacity": capacity},
	}
}

// InvalidConfig creates a StreamError for configuration that failed validation.
func InvalidConfig(section string, cause error) *StreamError {
	return &StreamError{
		Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("invalid %s configuration", section),
		Retryable: false, Cause: cause,
		Details: map[string]any{"section": section},
	}
}

// --- Inspection helpers ---

// CodeOf extracts the ErrorCode from err, or "" if err is not a StreamError.
func CodeOf(err error) ErrorCode {
	var se *StreamError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsRetryable reports whether err is a retryable StreamError.
func IsRetryable(err error) bool {
	var se *StreamError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// Is delegates to the stdlib errors.Is.
func Is(err, target error) bool { return errors.Is(err, target) }

// As delegates to the stdlib errors.As.
func As(err error, target any) bool { return errors.As(err, target) }
