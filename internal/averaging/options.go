package averaging

import (
	apperrors "nucleval/internal/errors"
	"nucleval/internal/quantity"
)

// Options are the immutable parameters of one averaging call
type Options struct {
	// ErrorLimit is the percentage used to render the adopted value.
	ErrorLimit int
	// SmallError renders the adopted value without uncertainty below this
	// relative uncertainty. Zero disables it.
	SmallError float64
	// ConfidenceLevel sets the chi-square critical value.
	ConfidenceLevel float64
	// OutlierConfidence sets the population test threshold of Rajeval.
	OutlierConfidence float64
	// MaxRelativeWeight caps a single point's share of the total weight in LWM.
	MaxRelativeWeight float64
	BootstrapSamples  int
	BootstrapSeed     uint64
	// MaxIterations bounds every iterative method.
	MaxIterations      int
	IterationTolerance float64
	// HuberK is the residual, in standard deviations, beyond which the
	// iterative method starts to down-weight a point.
	HuberK float64
}

// DefaultOptions returns the standard evaluation parameters
func DefaultOptions() Options {
	return Options{
		ErrorLimit:         quantity.DefaultErrorLimit,
		ConfidenceLevel:    0.95,
		OutlierConfidence:  0.99,
		MaxRelativeWeight:  0.5,
		BootstrapSamples:   2000,
		BootstrapSeed:      1,
		MaxIterations:      100,
		IterationTolerance: 1e-6,
		HuberK:             1.5,
	}
}

// Validate checks the options
func (o Options) Validate() error {
	switch {
	case o.ErrorLimit < 0 || o.ErrorLimit > 100:
		return apperrors.NewValidationError("error limit must be between 0 and 100", nil)
	case o.SmallError < 0:
		return apperrors.NewValidationError("small error threshold must not be negative", nil)
	case !(o.ConfidenceLevel > 0 && o.ConfidenceLevel < 1):
		return apperrors.NewValidationError("confidence level must be in (0, 1)", nil)
	case !(o.OutlierConfidence > 0 && o.OutlierConfidence < 1):
		return apperrors.NewValidationError("outlier confidence must be in (0, 1)", nil)
	case !(o.MaxRelativeWeight > 0 && o.MaxRelativeWeight <= 1):
		return apperrors.NewValidationError("max relative weight must be in (0, 1]", nil)
	case o.BootstrapSamples <= 0:
		return apperrors.NewValidationError("bootstrap samples must be positive", nil)
	case o.MaxIterations <= 0:
		return apperrors.NewValidationError("max iterations must be positive", nil)
	case !(o.IterationTolerance > 0):
		return apperrors.NewValidationError("iteration tolerance must be positive", nil)
	case !(o.HuberK > 0):
		return apperrors.NewValidationError("huber k must be positive", nil)
	}
	return nil
}

func (o Options) formatOptions() quantity.FormatOptions {
	return quantity.FormatOptions{ErrorLimit: o.ErrorLimit, SmallError: o.SmallError}
}
