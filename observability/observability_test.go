package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/kbukum/streamkit/streams"
	"github.com/kbukum/streamkit/streamtest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("quote-feed")

	if cfg.ServiceName != "quote-feed" {
		t.Errorf("expected ServiceName 'quote-feed', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
	if cfg.MetricInterval != 15*time.Second {
		t.Errorf("expected MetricInterval 15s, got %v", cfg.MetricInterval)
	}
}

func TestTelemetryShutdownNil(t *testing.T) {
	var tel *Telemetry
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("nil telemetry shutdown should be a no-op, got %v", err)
	}
}

func TestNewStreamMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewStreamMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	if metrics == nil {
		t.Fatal("expected non-nil metrics")
	}

	ctx := context.Background()
	metrics.RecordSubscribe(ctx, "quotes")
	metrics.RecordItem(ctx, "quotes")
	metrics.RecordComplete(ctx, "quotes")
	metrics.RecordSubscribe(ctx, "quotes")
	metrics.RecordError(ctx, "quotes")
	metrics.RecordCancel(ctx, "quotes")
}

func TestInstrumentPassesSignalsThrough(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewStreamMetrics(meter)
	if err != nil {
		t.Fatal(err)
	}

	rec := streamtest.NewAutoRecorder[int](streams.Unbounded)
	Instrument(streams.FromSlice([]int{1, 2, 3}), metrics, "quotes").Subscribe(rec)

	if !rec.AwaitTerminal(time.Second) {
		t.Fatal("stream did not terminate")
	}
	if got := rec.Items(); len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("items = %v, want [1 2 3]", got)
	}
	if rec.Completions() != 1 {
		t.Errorf("completions = %d, want 1", rec.Completions())
	}
}

func TestInstrumentPreservesCancellation(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewStreamMetrics(meter)
	if err != nil {
		t.Fatal(err)
	}

	spy := streamtest.NewCancelSpy(streams.Range(0, 100))
	rec := streamtest.NewRecorder[int]()
	Instrument[int](spy, metrics, "quotes").Subscribe(rec)

	rec.Request(2)
	rec.Cancel()

	if spy.Cancels() != 1 {
		t.Errorf("cancels = %d, want 1", spy.Cancels())
	}
}
