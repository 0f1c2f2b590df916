package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nucleval/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func telemetry(tracing, metrics bool) config.TelemetryConfig {
	cfg := config.Default().Telemetry
	cfg.EnableTracing = tracing
	cfg.EnableMetrics = metrics
	cfg.TraceExporter = "none"
	return cfg
}

func TestInitializeOTel(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.TelemetryConfig
		wantMetrics bool
		wantErr     bool
	}{
		{name: "everything disabled", cfg: telemetry(false, false)},
		{name: "metrics only", cfg: telemetry(false, true), wantMetrics: true},
		{name: "tracing without exporter", cfg: telemetry(true, false)},
		{
			name: "unknown metric exporter",
			cfg: func() config.TelemetryConfig {
				c := telemetry(false, true)
				c.MetricExporter = "statsd"
				return c
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.cfg, quietLogger())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.Nil(t, providers.TracerProvider)
			assert.Equal(t, tt.wantMetrics, providers.MetricsHandler != nil)
			assert.Equal(t, tt.wantMetrics, providers.MeterProvider != nil)
		})
	}
}

func TestInitializeOTelStdoutTracing(t *testing.T) {
	cfg := telemetry(true, false)
	cfg.TraceExporter = "stdout"

	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "evaluate")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	RecordError(ctx, assert.AnError)
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestTraceIDFromContextWithoutSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
	// no span, no panic
	RecordError(context.Background(), assert.AnError)
}

func TestMetricsEndpoint(t *testing.T) {
	providers, err := InitializeOTel(telemetry(false, true), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	metrics, err := NewEvaluationMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordEvaluation(ctx, 120*time.Millisecond, 42, true)
	metrics.RecordGroup(ctx, "weighted", false, 2)
	metrics.RecordHTTPRequest(ctx, http.MethodPost, "/api/v1/evaluate", http.StatusOK, time.Millisecond)
	metrics.TrackActiveRequest(ctx, 1)

	rec := httptest.NewRecorder()
	providers.MetricsHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "nucleval_evaluations_total")
	assert.Contains(t, body, "nucleval_inconsistent_groups_total")
	assert.Contains(t, body, "nucleval_points_excluded_total")
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *EvaluationMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordEvaluation(ctx, time.Second, 1, false)
		m.RecordGroup(ctx, "auto", true, 0)
		m.RecordHTTPRequest(ctx, http.MethodGet, "/healthz", http.StatusOK, time.Second)
		m.TrackActiveRequest(ctx, -1)
	})
}
