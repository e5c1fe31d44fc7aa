package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/tasklane/tasklane"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Role resolution metrics
	ResolutionsTotal    metric.Int64Counter
	ResolutionDuration  metric.Float64Histogram
	InvitationsAccepted metric.Int64Counter

	// Scope aggregation metrics
	AggregationsTotal     metric.Int64Counter
	AggregationDuration   metric.Float64Histogram
	DegradedBranchesTotal metric.Int64Counter
	StaleResultsDiscarded metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.ResolutionsTotal, _ = meter.Int64Counter(
		"tasklane.resolutions.total",
		metric.WithDescription("Total number of role resolutions by destination kind"),
		metric.WithUnit("{resolution}"),
	)

	m.ResolutionDuration, _ = meter.Float64Histogram(
		"tasklane.resolutions.duration",
		metric.WithDescription("Duration of role resolution"),
		metric.WithUnit("ms"),
	)

	m.InvitationsAccepted, _ = meter.Int64Counter(
		"tasklane.invitations.accepted.total",
		metric.WithDescription("Total number of invitations transitioned to accepted"),
		metric.WithUnit("{invitation}"),
	)

	m.AggregationsTotal, _ = meter.Int64Counter(
		"tasklane.aggregations.total",
		metric.WithDescription("Total number of scope aggregations"),
		metric.WithUnit("{aggregation}"),
	)

	m.AggregationDuration, _ = meter.Float64Histogram(
		"tasklane.aggregations.duration",
		metric.WithDescription("Duration of scope aggregation including all sub-queries"),
		metric.WithUnit("ms"),
	)

	m.DegradedBranchesTotal, _ = meter.Int64Counter(
		"tasklane.aggregations.degraded.total",
		metric.WithDescription("Total number of aggregation sub-queries degraded to empty after failure"),
		metric.WithUnit("{branch}"),
	)

	m.StaleResultsDiscarded, _ = meter.Int64Counter(
		"tasklane.aggregations.stale_discarded.total",
		metric.WithDescription("Total number of aggregation results discarded because a newer run superseded them"),
		metric.WithUnit("{result}"),
	)

	return m
}
