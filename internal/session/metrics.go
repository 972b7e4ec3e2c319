package session

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var (
	eventCounter  metric.Int64Counter     = noop.Int64Counter{}
	errorCounter  metric.Int64Counter     = noop.Int64Counter{}
	solveCounter  metric.Int64Counter     = noop.Int64Counter{}
	solveDuration metric.Float64Histogram = noop.Float64Histogram{}
)

// InitMetrics registers the session domain's OTel instruments.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("session")

	var err error

	eventCounter, err = meter.Int64Counter("session.events.total",
		metric.WithDescription("UI events applied to calculator sessions"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return fmt.Errorf("creating event counter: %w", err)
	}

	errorCounter, err = meter.Int64Counter("session.errors.total",
		metric.WithDescription("UI events rejected with an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	solveCounter, err = meter.Int64Counter("session.solves.total",
		metric.WithDescription("Word problems sent to the solver, by outcome"),
		metric.WithUnit("{solve}"),
	)
	if err != nil {
		return fmt.Errorf("creating solve counter: %w", err)
	}

	solveDuration, err = meter.Float64Histogram("session.solve.duration",
		metric.WithDescription("Wall time of solver calls in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(100, 250, 500, 1000, 2500, 5000, 10000, 30000),
	)
	if err != nil {
		return fmt.Errorf("creating solve histogram: %w", err)
	}

	return nil
}

func recordSolve(ctx context.Context, outcome string, elapsedMs float64) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	solveCounter.Add(ctx, 1, attrs)
	solveDuration.Record(ctx, elapsedMs, attrs)
}
