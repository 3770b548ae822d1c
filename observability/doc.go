// Package observability provides OpenTelemetry metrics and tracing for
// streamkit applications.
//
// InitMeter and InitTracer set up the global OTLP providers. StreamMetrics
// holds the instruments describing stream signal traffic, and Instrument
// wraps any publisher so its activations report to those instruments.
//
// # Usage
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("pricing-feed"))
//	metrics, err := observability.NewStreamMetrics(observability.Meter("pricing-feed"))
//	quotes := observability.Instrument(rawQuotes, metrics, "quotes")
package observability
