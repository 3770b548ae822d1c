package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StreamMetrics holds OpenTelemetry metric instruments describing the
// signal traffic of instrumented streams.
type StreamMetrics struct {
	itemsTotal          metric.Int64Counter
	errorsTotal         metric.Int64Counter
	completesTotal      metric.Int64Counter
	cancellationsTotal  metric.Int64Counter
	activeSubscriptions metric.Int64UpDownCounter
}

// NewStreamMetrics creates stream metric instruments on the given meter.
func NewStreamMetrics(meter metric.Meter) (*StreamMetrics, error) {
	itemsTotal, err := meter.Int64Counter("stream.items.total",
		metric.WithDescription("Total items delivered downstream"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.items.total counter: %w", err)
	}

	errorsTotal, err := meter.Int64Counter("stream.errors.total",
		metric.WithDescription("Total error terminations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.errors.total counter: %w", err)
	}

	completesTotal, err := meter.Int64Counter("stream.completes.total",
		metric.WithDescription("Total normal completions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.completes.total counter: %w", err)
	}

	cancellationsTotal, err := meter.Int64Counter("stream.cancellations.total",
		metric.WithDescription("Total downstream cancellations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.cancellations.total counter: %w", err)
	}

	activeSubscriptions, err := meter.Int64UpDownCounter("stream.subscriptions.active",
		metric.WithDescription("Number of currently active subscriptions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.subscriptions.active gauge: %w", err)
	}

	return &StreamMetrics{
		itemsTotal:          itemsTotal,
		errorsTotal:         errorsTotal,
		completesTotal:      completesTotal,
		cancellationsTotal:  cancellationsTotal,
		activeSubscriptions: activeSubscriptions,
	}, nil
}

// RecordSubscribe increments the active subscription count.
func (m *StreamMetrics) RecordSubscribe(ctx context.Context, stream string) {
	m.activeSubscriptions.Add(ctx, 1, streamAttrs(stream))
}

// RecordItem records one delivered item.
func (m *StreamMetrics) RecordItem(ctx context.Context, stream string) {
	m.itemsTotal.Add(ctx, 1, streamAttrs(stream))
}

// RecordError records an error termination and releases the subscription.
func (m *StreamMetrics) RecordError(ctx context.Context, stream string) {
	m.errorsTotal.Add(ctx, 1, streamAttrs(stream))
	m.activeSubscriptions.Add(ctx, -1, streamAttrs(stream))
}

// RecordComplete records a normal completion and releases the subscription.
func (m *StreamMetrics) RecordComplete(ctx context.Context, stream string) {
	m.completesTotal.Add(ctx, 1, streamAttrs(stream))
	m.activeSubscriptions.Add(ctx, -1, streamAttrs(stream))
}

// RecordCancel records a downstream cancellation and releases the subscription.
func (m *StreamMetrics) RecordCancel(ctx context.Context, stream string) {
	m.cancellationsTotal.Add(ctx, 1, streamAttrs(stream))
	m.activeSubscriptions.Add(ctx, -1, streamAttrs(stream))
}

func streamAttrs(stream string) metric.AddOption {
	return metric.WithAttributes(attribute.String(AttrStreamName, stream))
}
