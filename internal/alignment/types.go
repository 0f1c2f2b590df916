package alignment

import (
	"math"

	apperrors "nucleval/internal/errors"
)

// Series is an ordered sequence of records exposing a numeric key.
// Keys must be non-decreasing.
type Series interface {
	Len() int
	Key(i int) float64
}

// KeySeries is a Series backed by a slice of keys
type KeySeries struct {
	Name string
	Keys []float64
}

// Len returns the number of records
func (s KeySeries) Len() int { return len(s.Keys) }

// Key returns the key of record i
func (s KeySeries) Key(i int) float64 { return s.Keys[i] }

// Group is one aligned set of records. Indices holds one entry per series:
// the record index, or -1 when the series contributes nothing.
type Group struct {
	Indices   []int   `json:"indices"`
	Reference float64 `json:"reference"`
	Spread    float64 `json:"spread"`
	// Residual marks records flushed after the search terminated early.
	Residual bool `json:"residual,omitempty"`
}

// Members returns the number of series contributing to the group
func (g Group) Members() int {
	n := 0
	for _, i := range g.Indices {
		if i >= 0 {
			n++
		}
	}
	return n
}

// Termination reasons
const (
	ReasonCompleted      = "completed"
	ReasonMinFraction    = "group fraction below minimum"
	ReasonStalled        = "group fraction stopped improving"
	ReasonIterationCap   = "iteration cap reached"
	ReasonContextExpired = "context done"
)

// Result is the outcome of one alignment pass
type Result struct {
	Groups            []Group  `json:"groups"`
	Iterations        int      `json:"iterations"`
	Terminated        bool     `json:"terminated"`
	TerminationReason string   `json:"termination_reason"`
	Warnings          []string `json:"warnings,omitempty"`
}

// Options configures the engine
type Options struct {
	// Tolerance is the width of the key window above a group's reference.
	Tolerance float64
	// MinFraction is the fraction of non-empty series a group must reach
	// for the search to continue.
	MinFraction float64
	// StallGroups stops the search after this many consecutive groups fail
	// to improve on the best fraction seen. Zero disables the check.
	StallGroups int
	// MaxIterations caps the number of draft states explored in one pass.
	MaxIterations int
	// MaxGroupStates caps the draft states explored for a single group.
	// The best draft found so far is accepted when it is reached. Zero
	// uses DefaultMaxGroupStates.
	MaxGroupStates int
}

// DefaultMaxGroupStates is the per-group exploration bound used when
// Options.MaxGroupStates is zero.
const DefaultMaxGroupStates = 4096

// DefaultOptions returns options with a unit tolerance and no early
// termination.
func DefaultOptions() Options {
	return Options{
		Tolerance:      1.0,
		MinFraction:    0,
		StallGroups:    0,
		MaxIterations:  100000,
		MaxGroupStates: DefaultMaxGroupStates,
	}
}

// Validate checks the options
func (o Options) Validate() error {
	switch {
	case math.IsNaN(o.Tolerance) || o.Tolerance < 0:
		return apperrors.NewValidationError("tolerance must be a non-negative number", nil)
	case math.IsNaN(o.MinFraction) || o.MinFraction < 0 || o.MinFraction > 1:
		return apperrors.NewValidationError("min fraction must be between 0 and 1", nil)
	case o.StallGroups < 0:
		return apperrors.NewValidationError("stall groups must not be negative", nil)
	case o.MaxIterations <= 0:
		return apperrors.NewValidationError("max iterations must be positive", nil)
	case o.MaxGroupStates < 0:
		return apperrors.NewValidationError("max group states must not be negative", nil)
	}
	return nil
}
