package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestProtocolViolation(t *testing.T) {
	err := ProtocolViolation("emit without demand")
	if err.Code != ErrCodeProtocolViolation {
		t.Errorf("expected code %s, got %s", ErrCodeProtocolViolation, err.Code)
	}
	if err.Retryable {
		t.Error("protocol violations must not be retryable")
	}
	if err.Details["operation"] != "emit without demand" {
		t.Errorf("expected operation detail, got %v", err.Details)
	}
}

func TestTransformFailure_WithPanic(t *testing.T) {
	err := TransformFailure("map", "boom")
	if err.Details["panic"] != "boom" {
		t.Errorf("expected panic detail, got %v", err.Details)
	}
	if err.Details["stage"] != "map" {
		t.Errorf("expected stage detail, got %v", err.Details)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := SubscribeFailed("merge", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestCodeOf(t *testing.T) {
	err := SchedulerStopped("pool")
	if got := CodeOf(err); got != ErrCodeSchedulerStopped {
		t.Errorf("expected %s, got %s", ErrCodeSchedulerStopped, got)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("expected empty code for plain error, got %s", got)
	}
}

func TestCodeOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", QueueFull("serial", 16))
	if got := CodeOf(err); got != ErrCodeQueueFull {
		t.Errorf("expected %s through wrapping, got %s", ErrCodeQueueFull, got)
	}
	if !IsRetryable(err) {
		t.Error("queue full should be retryable")
	}
}

func TestErrorString(t *testing.T) {
	err := InvalidConfig("scheduler", errors.New("workers must be >= 1"))
	want := "INVALID_CONFIG: invalid scheduler configuration (cause: workers must be >= 1)"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestWithDetail(t *testing.T) {
	err := New(ErrCodeTransformFailure, "bad").WithDetail("stage", "filter")
	if err.Details["stage"] != "filter" {
		t.Errorf("expected detail, got %v", err.Details)
	}
}
