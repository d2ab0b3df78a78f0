// Package observe provides application-wide observability primitives for
// Murattil: OpenTelemetry metrics and the provider setup that bridges them
// to a Prometheus /metrics endpoint.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A package-level
// default [Metrics] instance ([DefaultMetrics]) is provided for convenience;
// tests should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Murattil metrics.
const meterName = "github.com/quranlabs/murattil"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// SubmitDuration tracks the processing latency of one hypothesis
	// submission through the alignment tracker.
	SubmitDuration metric.Float64Histogram

	// MatchOutcomes counts per-word alignment outcomes. Use with attributes:
	//   attribute.String("status", ...), attribute.String("mode", ...)
	MatchOutcomes metric.Int64Counter

	// TajweedIssues counts detected tajweed issues. Use with attributes:
	//   attribute.String("category", ...), attribute.String("severity", ...)
	TajweedIssues metric.Int64Counter

	// SessionsCompleted counts recitation sessions that reached the end of
	// their passage.
	SessionsCompleted metric.Int64Counter

	// ActiveSessions tracks the number of live recitation sessions.
	ActiveSessions metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// the sub-200ms instant-mode budget up through multi-second accurate mode.
var latencyBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.2, 0.5, 1, 2.5,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.SubmitDuration, err = m.Float64Histogram("murattil.submit.duration",
		metric.WithDescription("Latency of one hypothesis submission."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.MatchOutcomes, err = m.Int64Counter("murattil.match.outcomes",
		metric.WithDescription("Per-word alignment outcomes by status and mode."),
	); err != nil {
		return nil, err
	}
	if met.TajweedIssues, err = m.Int64Counter("murattil.tajweed.issues",
		metric.WithDescription("Detected tajweed issues by category and severity."),
	); err != nil {
		return nil, err
	}
	if met.SessionsCompleted, err = m.Int64Counter("murattil.sessions.completed",
		metric.WithDescription("Recitation sessions completed."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("murattil.sessions.active",
		metric.WithDescription("Live recitation sessions."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the process-wide [Metrics] instance backed by the
// global OTel meter provider. Instruments are created lazily on first call;
// creation errors fall back to no-op instruments from the global provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			m = &Metrics{}
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// RecordOutcome is a convenience for counting one word-feedback outcome.
// Nil-instrument safe so callers need no metrics wiring in tests.
func (m *Metrics) RecordOutcome(ctx context.Context, status, mode string) {
	if m == nil || m.MatchOutcomes == nil {
		return
	}
	m.MatchOutcomes.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("status", status),
			attribute.String("mode", mode),
		))
}

// RecordTajweedIssue counts one detected tajweed issue.
func (m *Metrics) RecordTajweedIssue(ctx context.Context, category, severity string) {
	if m == nil || m.TajweedIssues == nil {
		return
	}
	m.TajweedIssues.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("category", category),
			attribute.String("severity", severity),
		))
}
