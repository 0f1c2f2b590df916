package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"nucleval/internal/config"
	apperrors "nucleval/internal/errors"
	"nucleval/internal/evaluation"
	"nucleval/internal/infrastructure"
	"nucleval/internal/middleware"
)

// Dependencies are the collaborators the router wires into handlers
type Dependencies struct {
	Config  *config.Config
	Service *evaluation.Service
	Logger  *slog.Logger
	// Tracer and Metrics may be nil; tracing then uses a no-op tracer.
	Tracer  trace.Tracer
	Metrics *infrastructure.EvaluationMetrics
	// MetricsHandler serves /metrics; nil disables the endpoint.
	MetricsHandler http.Handler
}

// NewRouter builds the HTTP router.
//
// Middleware order: RequestID -> RealIP -> OTel -> Logger -> Recoverer,
// then RateLimit -> Timeout -> MaxBodySize -> ContentType on the API group.
func NewRouter(deps Dependencies) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	errorHandler := apperrors.NewErrorHandler(logger, cfg.Logging.Development)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.NotFound(errorHandler.NotFound)

	// Scrapes stay outside the traced group
	r.Method(http.MethodGet, "/metrics", NewMetricsHandler(deps.MetricsHandler, errorHandler))

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewOTelMiddleware(tracer, deps.Metrics).Handler)
		r.Use(middleware.StructuredLogger(logger))
		r.Use(middleware.Recoverer(errorHandler))

		health := NewHealthHandler()
		r.Get("/healthz", health.HealthCheck)

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			if cfg.Server.RateLimit.Enabled {
				r.Use(middleware.NewRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst, logger).Handler)
			}
			r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
			r.Use(middleware.MaxBodySize(cfg.Server.MaxBodyBytes))
			r.Use(middleware.ContentType("application/json"))

			r.Get("/version", health.Version)
			r.Mount("/quantities", NewQuantityHandler(cfg.Evaluation, logger, errorHandler).Routes())
			NewEvaluationHandler(deps.Service, logger, errorHandler).RegisterRoutes(r)
		})
	})

	return r
}
