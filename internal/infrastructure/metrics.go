package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EvaluationMetrics holds the instruments of the evaluation service and
// its HTTP surface.
type EvaluationMetrics struct {
	EvaluationsTotal    metric.Int64Counter
	EvaluationDuration  metric.Float64Histogram
	GroupsAveraged      metric.Int64Counter
	InconsistentGroups  metric.Int64Counter
	PointsExcluded      metric.Int64Counter
	AlignmentIterations metric.Int64Histogram

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter
}

// NewEvaluationMetrics creates the instruments on meter.
func NewEvaluationMetrics(meter metric.Meter) (*EvaluationMetrics, error) {
	var (
		m   EvaluationMetrics
		err error
	)

	if m.EvaluationsTotal, err = meter.Int64Counter(
		"nucleval_evaluations_total",
		metric.WithDescription("Total number of evaluation runs"),
	); err != nil {
		return nil, err
	}
	if m.EvaluationDuration, err = meter.Float64Histogram(
		"nucleval_evaluation_duration_seconds",
		metric.WithDescription("Evaluation run duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.GroupsAveraged, err = meter.Int64Counter(
		"nucleval_groups_averaged_total",
		metric.WithDescription("Total number of groups passed through averaging"),
	); err != nil {
		return nil, err
	}
	if m.InconsistentGroups, err = meter.Int64Counter(
		"nucleval_inconsistent_groups_total",
		metric.WithDescription("Groups whose chi-square test failed before refinement"),
	); err != nil {
		return nil, err
	}
	if m.PointsExcluded, err = meter.Int64Counter(
		"nucleval_points_excluded_total",
		metric.WithDescription("Data points excluded from averages"),
	); err != nil {
		return nil, err
	}
	if m.AlignmentIterations, err = meter.Int64Histogram(
		"nucleval_alignment_iterations",
		metric.WithDescription("Draft states explored per alignment"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordEvaluation records one evaluation run
func (m *EvaluationMetrics) RecordEvaluation(ctx context.Context, duration time.Duration, iterations int, success bool) {
	if m == nil {
		return
	}
	status := attribute.String("status", "success")
	if !success {
		status = attribute.String("status", "failure")
	}
	m.EvaluationsTotal.Add(ctx, 1, metric.WithAttributes(status))
	m.EvaluationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(status))
	m.AlignmentIterations.Record(ctx, int64(iterations))
}

// RecordGroup records the outcome of averaging one group
func (m *EvaluationMetrics) RecordGroup(ctx context.Context, method string, consistent bool, excluded int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("method", method))
	m.GroupsAveraged.Add(ctx, 1, attrs)
	if !consistent {
		m.InconsistentGroups.Add(ctx, 1, attrs)
	}
	if excluded > 0 {
		m.PointsExcluded.Add(ctx, int64(excluded), attrs)
	}
}

// RecordHTTPRequest records a completed HTTP request
func (m *EvaluationMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// TrackActiveRequest adjusts the active request gauge by delta
func (m *EvaluationMetrics) TrackActiveRequest(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.HTTPActiveRequests.Add(ctx, delta)
}
