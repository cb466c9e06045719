package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "viralflow-api"

// RunMetrics counts agent runs per purpose.
type RunMetrics struct {
	started  metric.Int64Counter
	finished metric.Int64Counter
	active   metric.Int64UpDownCounter
	duration metric.Float64Histogram
	decoded  metric.Int64Counter
}

// NewRunMetrics registers instruments on meter, or on the global provider
// when meter is nil.
func NewRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	started, err := meter.Int64Counter(
		"viralflow.runs.started",
		metric.WithDescription("Agent invocations started"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	finished, err := meter.Int64Counter(
		"viralflow.runs.finished",
		metric.WithDescription("Agent invocations finished, by status"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	active, err := meter.Int64UpDownCounter(
		"viralflow.runs.active",
		metric.WithDescription("Agent invocations in flight"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"viralflow.run.duration",
		metric.WithDescription("Agent invocation wall time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	decoded, err := meter.Int64Counter(
		"viralflow.decode.outcomes",
		metric.WithDescription("Response decode outcomes, by reason"),
		metric.WithUnit("{decode}"),
	)
	if err != nil {
		return nil, err
	}

	return &RunMetrics{
		started:  started,
		finished: finished,
		active:   active,
		duration: duration,
		decoded:  decoded,
	}, nil
}

// RunStarted marks an invocation for purpose as in flight.
func (m *RunMetrics) RunStarted(ctx context.Context, purpose string) {
	attrs := metric.WithAttributes(attribute.String("purpose", purpose))
	m.started.Add(ctx, 1, attrs)
	m.active.Add(ctx, 1, attrs)
}

// RunFinished records the end of an invocation started with RunStarted.
func (m *RunMetrics) RunFinished(ctx context.Context, purpose, status string, d time.Duration) {
	m.active.Add(ctx, -1, metric.WithAttributes(attribute.String("purpose", purpose)))
	attrs := metric.WithAttributes(
		attribute.String("purpose", purpose),
		attribute.String("status", status),
	)
	m.finished.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}

// Decoded counts one decoder outcome. reason is empty on success.
func (m *RunMetrics) Decoded(ctx context.Context, purpose, reason string) {
	if reason == "" {
		reason = "decoded"
	}
	m.decoded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("purpose", purpose),
		attribute.String("reason", reason),
	))
}
