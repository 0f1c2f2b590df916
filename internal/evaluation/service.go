package evaluation

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"nucleval/internal/alignment"
	"nucleval/internal/averaging"
	"nucleval/internal/config"
	"nucleval/internal/dataset"
	apperrors "nucleval/internal/errors"
	"nucleval/internal/infrastructure"
)

// Service runs evaluations with a fixed base configuration. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	cfg      config.EvaluationConfig
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *infrastructure.EvaluationMetrics
	validate *validator.Validate
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer used for evaluation spans
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithMetrics sets the metric instruments
func WithMetrics(m *infrastructure.EvaluationMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a service for the given evaluation parameters
func NewService(cfg config.EvaluationConfig, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		logger:   slog.Default(),
		tracer:   tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = infrastructure.WithComponent(s.logger, "evaluation")
	return s
}

// Config returns the base evaluation parameters
func (s *Service) Config() config.EvaluationConfig { return s.cfg }

func (s *Service) resolve(ov Overrides) (settings, error) {
	cfg := s.cfg
	if ov.ErrorLimit != nil {
		cfg.ErrorLimit = *ov.ErrorLimit
	}
	if ov.Method != "" {
		cfg.Method = ov.Method
	}
	if ov.Tolerance != nil {
		cfg.Tolerance = *ov.Tolerance
	}

	method, err := cfg.AveragingMethod()
	if err != nil {
		return settings{}, err
	}
	st := settings{align: cfg.AlignOptions(), avg: cfg.AveragingOptions(), method: method}
	if err := st.align.Validate(); err != nil {
		return settings{}, err
	}
	if err := st.avg.Validate(); err != nil {
		return settings{}, err
	}
	return st, nil
}

// Align aligns series of keys with the configured options, optionally
// overriding the tolerance.
func (s *Service) Align(ctx context.Context, keys [][]float64, ov Overrides) (*alignment.Result, error) {
	st, err := s.resolve(ov)
	if err != nil {
		return nil, err
	}
	series := make([]alignment.Series, len(keys))
	for i, k := range keys {
		series[i] = alignment.KeySeries{Keys: k}
	}

	ctx, span := s.tracer.Start(ctx, "alignment.Align",
		trace.WithAttributes(attribute.Int("series", len(series))))
	defer span.End()

	res, err := alignment.NewEngine(st.align, s.logger).Align(ctx, series)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("groups", len(res.Groups)),
		attribute.Int("iterations", res.Iterations),
		attribute.String("termination_reason", res.TerminationReason),
	)
	return res, nil
}

// Average averages one collection with the configured options
func (s *Service) Average(ctx context.Context, c dataset.Collection, ov Overrides) (*averaging.Result, error) {
	st, err := s.resolve(ov)
	if err != nil {
		return nil, err
	}
	return s.average(ctx, averaging.NewEngine(st.avg, s.logger), c, st.method)
}

func (s *Service) average(ctx context.Context, engine *averaging.Engine, c dataset.Collection, method averaging.Method) (*averaging.Result, error) {
	ctx, span := s.tracer.Start(ctx, "averaging.Average",
		trace.WithAttributes(
			attribute.String("group", c.Name),
			attribute.Int("points", c.Len()),
			attribute.String("method", method.String()),
		))
	defer span.End()

	res, err := engine.Average(ctx, c, method)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	consistent := res.Status != averaging.StatusAveraged || res.Consistent
	s.metrics.RecordGroup(ctx, res.MethodUsed, consistent, len(res.Excluded))
	span.SetAttributes(
		attribute.String("status", string(res.Status)),
		attribute.String("method_used", res.MethodUsed),
		attribute.Bool("consistent", res.Consistent),
		attribute.Int("excluded", len(res.Excluded)),
	)
	return res, nil
}

// keyed is a record with its alignment key
type keyed struct {
	key    float64
	record dataset.Record
}

// Evaluate aligns the datasets of req and averages every group.
//
// Records are ordered by key within each dataset. A record without a key
// uses its parsed numeric value; records with neither are reported as
// unaligned. Groups are averaged concurrently and reported in key order.
func (s *Service) Evaluate(ctx context.Context, req Request) (rep *Report, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "evaluation.Evaluate",
		trace.WithAttributes(attribute.Int("datasets", len(req.Datasets))))
	defer func() {
		iterations := 0
		if rep != nil {
			iterations = rep.Iterations
		}
		s.metrics.RecordEvaluation(ctx, time.Since(start), iterations, err == nil)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("invalid evaluation request", err)
	}
	st, err := s.resolve(req.Overrides)
	if err != nil {
		return nil, err
	}

	rep = &Report{
		Method:     st.method.String(),
		ErrorLimit: st.avg.ErrorLimit,
		Tolerance:  st.align.Tolerance,
	}

	ordered := make([][]keyed, len(req.Datasets))
	series := make([]alignment.Series, len(req.Datasets))
	for i, ds := range req.Datasets {
		var unkeyed []dataset.DataPoint
		ordered[i], unkeyed = orderRecords(ds)
		rep.Unaligned = append(rep.Unaligned, unkeyed...)

		keys := make([]float64, len(ordered[i]))
		for j, k := range ordered[i] {
			keys[j] = k.key
		}
		series[i] = alignment.KeySeries{Name: ds.Name, Keys: keys}
	}
	if n := len(rep.Unaligned); n > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d records have no key and no numeric value and were not aligned", n))
	}

	actx, aspan := s.tracer.Start(ctx, "alignment.Align")
	aligned, err := alignment.NewEngine(st.align, s.logger).Align(actx, series)
	aspan.End()
	if err != nil {
		return nil, fmt.Errorf("align datasets: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep.Iterations = aligned.Iterations
	rep.Terminated = aligned.Terminated
	rep.TerminationReason = aligned.TerminationReason
	rep.Warnings = append(rep.Warnings, aligned.Warnings...)

	rep.Groups = make([]GroupReport, len(aligned.Groups))
	for gi, g := range aligned.Groups {
		gr := GroupReport{Index: gi, Reference: g.Reference, Residual: g.Residual}
		for si, ri := range g.Indices {
			if ri < 0 {
				continue
			}
			name := req.Datasets[si].Name
			gr.Datasets = append(gr.Datasets, name)
			gr.Points = append(gr.Points, dataset.FromRecord(name, ordered[si][ri].record))
		}
		rep.Groups[gi] = gr
	}

	engine := averaging.NewEngine(st.avg, s.logger)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.cfg.Concurrency))
	for i := range rep.Groups {
		gr := &rep.Groups[i]
		g.Go(func() error {
			c := dataset.NewCollection(fmt.Sprintf("group %d at %g", gr.Index+1, gr.Reference), gr.Points...)
			res, err := s.average(gctx, engine, c, st.method)
			if err != nil {
				return fmt.Errorf("average group %d: %w", gr.Index+1, err)
			}
			gr.Result = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "evaluation complete",
		slog.Int("datasets", len(req.Datasets)),
		slog.Int("groups", len(rep.Groups)),
		slog.Int("iterations", rep.Iterations),
		slog.String("termination_reason", rep.TerminationReason),
		slog.String("method", rep.Method),
		slog.Duration("duration", time.Since(start)))
	return rep, nil
}

// orderRecords sorts the records of ds by key, keeping input order for
// equal keys. Records without a usable key come back as data points.
func orderRecords(ds Dataset) ([]keyed, []dataset.DataPoint) {
	var (
		out     = make([]keyed, 0, len(ds.Records))
		unkeyed []dataset.DataPoint
	)
	for _, r := range ds.Records {
		if r.Key != nil && finite(*r.Key) {
			out = append(out, keyed{key: *r.Key, record: r})
			continue
		}
		p := dataset.FromRecord(ds.Name, r)
		if v, ok := p.Quantity.Value(); ok && finite(v) {
			out = append(out, keyed{key: v, record: r})
			continue
		}
		unkeyed = append(unkeyed, p)
	}
	slices.SortStableFunc(out, func(a, b keyed) int { return cmp.Compare(a.key, b.key) })
	return out, unkeyed
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
