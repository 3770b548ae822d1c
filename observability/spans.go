package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Span names emitted by the toolkit.
const (
	SpanStreamDeliver = "stream.deliver"
	SpanSSESession    = "sse.session"
)

// Attribute keys shared across spans and metrics.
const (
	AttrStreamName   = "stream.name"
	AttrClientID     = "client.id"
	AttrItemCount    = "item.count"
	AttrErrorMessage = "error.message"
)

// StartSpan starts a span on the toolkit's tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer(instrumentationName).Start(ctx, name, opts...)
}

// SpanFromContext returns the span carried by ctx.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// SetSpanError records err on the span in ctx, if one is recording.
func SetSpanError(ctx context.Context, err error) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.RecordError(err)
	}
}
