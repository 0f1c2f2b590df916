package averaging

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"nucleval/internal/dataset"
	apperrors "nucleval/internal/errors"
	"nucleval/internal/quantity"
)

// Engine averages groups of data points
type Engine struct {
	opts   Options
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger uses slog.Default().
func NewEngine(opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{opts: opts, logger: logger}
}

// Options returns the engine options
func (e *Engine) Options() Options { return e.opts }

// Average averages points with the default options and the given error
// limit.
func Average(points []dataset.DataPoint, errorLimit int, method Method) (*Result, error) {
	opts := DefaultOptions()
	opts.ErrorLimit = errorLimit
	return NewEngine(opts, nil).Average(context.Background(), dataset.NewCollection("", points...), method)
}

// outcome is what a method hands back to the engine
type outcome struct {
	value       float64
	sigma       float64
	internal    float64
	external    float64
	final       moments
	included    []sample
	exclusions  []Exclusion
	adjustments []Adjustment
	iterations  int
	notes       []string
	refined     bool
	used        Method
	// adopted overrides the symmetric adopted quantity, as for Best.
	adopted *quantity.Quantity
}

// check is the initial weighted-mean diagnosis shared by all methods
type check struct {
	moments
	critical   float64
	consistent bool
}

// Average runs the averaging state machine on one collection.
//
// Too few usable points is not an error: the result carries
// StatusInsufficientData and a narrative. Errors are returned for invalid
// options or an unknown method.
func (e *Engine) Average(ctx context.Context, c dataset.Collection, method Method) (*Result, error) {
	if err := e.opts.Validate(); err != nil {
		return nil, fmt.Errorf("validate options: %w", err)
	}
	if !method.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown averaging method %d", int(method)), nil)
	}

	r := &Result{
		Method:                method,
		MethodUsed:            method.String(),
		ChiSquare:             math.NaN(),
		ReducedChiSquare:      math.NaN(),
		CriticalChiSquare:     math.NaN(),
		FinalReducedChiSquare: math.NaN(),
		Internal:              math.NaN(),
		External:              math.NaN(),
		Value:                 math.NaN(),
		Sigma:                 math.NaN(),
		Stages:                []Stage{StageCollected},
	}

	var samples []sample
	for _, p := range c.Points {
		if !p.Usable() {
			r.Excluded = append(r.Excluded, Exclusion{Point: p, Reason: "reference only: " + p.Note})
			continue
		}
		samples = append(samples, sample{point: p, x: p.Value(), sigma: p.Sigma()})
	}
	r.Stages = append(r.Stages, StageFiltered)

	if len(samples) < 2 {
		e.insufficient(ctx, c, r, samples)
		return r, nil
	}

	for _, s := range samples {
		if _, err := s.point.Weight(); err != nil {
			return nil, fmt.Errorf("compute weight: %w", err)
		}
	}
	r.Stages = append(r.Stages, StageWeightComputed)

	initial := e.check(samples)
	r.ChiSquare = initial.chi2
	r.ReducedChiSquare = initial.reduced
	r.CriticalChiSquare = initial.critical
	r.Consistent = initial.consistent
	r.Stages = append(r.Stages, StageChiSquareChecked)

	out, err := e.run(ctx, method, samples, initial)
	if err != nil {
		return nil, err
	}

	if out.refined {
		r.Stages = append(r.Stages, StageOutlierRefined)
	} else {
		r.Stages = append(r.Stages, StageAccepted)
	}

	e.report(r, out)

	e.logger.DebugContext(ctx, "group averaged",
		slog.String("group", c.Name),
		slog.String("method", r.MethodUsed),
		slog.Int("usable", len(samples)),
		slog.Float64("reduced_chi_square", r.ReducedChiSquare),
		slog.Bool("consistent", r.Consistent))
	if out.refined {
		e.logger.InfoContext(ctx, "inconsistent group refined",
			slog.String("group", c.Name),
			slog.String("method", r.MethodUsed),
			slog.Int("excluded", len(out.exclusions)),
			slog.Int("adjusted", len(out.adjustments)))
	}
	return r, nil
}

func (e *Engine) check(samples []sample) check {
	m := weighted(samples)
	crit := criticalReduced(len(samples), e.opts.ConfidenceLevel)
	return check{moments: m, critical: crit, consistent: m.reduced <= crit}
}

func (e *Engine) run(ctx context.Context, method Method, samples []sample, initial check) (outcome, error) {
	switch method {
	case Weighted:
		return e.weightedMean(samples), nil
	case Unweighted:
		return e.unweightedMean(samples), nil
	case LWM:
		return e.lwm(samples), nil
	case NRM:
		return e.nrm(samples), nil
	case Rajeval:
		return e.rajeval(samples), nil
	case EVM:
		return e.evm(samples), nil
	case Bootstrap:
		return e.bootstrap(ctx, samples, initial)
	case Iterative:
		return e.iterative(samples), nil
	case Best:
		return e.best(samples), nil
	case Auto:
		return e.auto(samples, initial), nil
	}
	return outcome{}, apperrors.NewValidationError("unknown averaging method "+method.String(), nil)
}

// insufficient reports a group that cannot be averaged. A single usable
// point is passed through as the adopted value.
func (e *Engine) insufficient(ctx context.Context, c dataset.Collection, r *Result, samples []sample) {
	r.Status = StatusInsufficientData
	r.Stages = append(r.Stages, StageReported)

	if len(samples) == 1 {
		s := samples[0]
		r.Adopted = s.point.Quantity
		r.Rendered = s.point.Quantity.FormatWith(e.opts.formatOptions())
		r.Included = []dataset.DataPoint{s.point}
		r.Value = s.x
		r.Sigma = s.sigma
	}
	r.Narrative = narrateInsufficient(r, len(samples))

	e.logger.WarnContext(ctx, "insufficient data for averaging",
		slog.String("group", c.Name),
		slog.Int("points", c.Len()),
		slog.Int("usable", len(samples)),
		slog.String("reason", apperrors.NewInsufficientDataError(len(samples)).Error()))
}

func (e *Engine) report(r *Result, out outcome) {
	r.Status = StatusAveraged
	r.MethodUsed = out.used.String()
	r.Value = out.value
	r.Sigma = out.sigma
	r.Internal = out.internal
	r.External = out.external
	r.FinalReducedChiSquare = out.final.reduced
	r.Iterations = out.iterations
	r.Adjustments = out.adjustments
	r.Excluded = append(r.Excluded, out.exclusions...)

	for _, s := range out.included {
		r.Included = append(r.Included, s.point)
	}

	if out.adopted != nil {
		r.Adopted = *out.adopted
	} else {
		r.Adopted = quantity.Symmetric(out.value, out.sigma)
	}
	r.Rendered = r.Adopted.FormatWith(e.opts.formatOptions())
	r.Stages = append(r.Stages, StageReported)
	r.Narrative = narrate(r, out, e.opts)
}
