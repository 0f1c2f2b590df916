package averaging

import (
	"encoding/json"
	"math"

	"nucleval/internal/dataset"
	"nucleval/internal/quantity"
)

// Stage is a step of the averaging state machine
type Stage string

const (
	StageCollected        Stage = "collected"
	StageFiltered         Stage = "filtered"
	StageWeightComputed   Stage = "weight_computed"
	StageChiSquareChecked Stage = "chi_square_checked"
	StageAccepted         Stage = "accepted"
	StageOutlierRefined   Stage = "outlier_refined"
	StageReported         Stage = "reported"
)

// Status summarizes the outcome of a group
type Status string

const (
	StatusAveraged         Status = "averaged"
	StatusInsufficientData Status = "insufficient_data"
)

// Exclusion is a point left out of the average, with the reason
type Exclusion struct {
	Point  dataset.DataPoint `json:"point"`
	Reason string            `json:"reason"`
}

// Adjustment kinds
const (
	AdjustUncertainty = "uncertainty_inflated"
	AdjustWeight      = "weight_reduced"
)

// Adjustment records a point whose influence a method reduced. From and To
// are uncertainties for AdjustUncertainty, and for AdjustWeight the weight
// relative to the point's nominal weight.
type Adjustment struct {
	Point dataset.DataPoint `json:"point"`
	Kind  string            `json:"kind"`
	From  float64           `json:"from"`
	To    float64           `json:"to"`
}

// Result is the averaging outcome of one group.
//
// ChiSquare, ReducedChiSquare, CriticalChiSquare and Consistent describe
// the initial weighted mean of all usable points. FinalReducedChiSquare
// describes the points the method kept. Chi-square fields are NaN when no
// average was possible.
type Result struct {
	Status   Status            `json:"status"`
	Adopted  quantity.Quantity `json:"adopted"`
	Rendered quantity.Rendered `json:"rendered"`

	Value    float64 `json:"value"`
	Sigma    float64 `json:"sigma"`
	Internal float64 `json:"internal_uncertainty"`
	External float64 `json:"external_uncertainty"`

	ChiSquare             float64 `json:"chi_square"`
	ReducedChiSquare      float64 `json:"reduced_chi_square"`
	CriticalChiSquare     float64 `json:"critical_chi_square"`
	FinalReducedChiSquare float64 `json:"final_reduced_chi_square"`
	Consistent            bool    `json:"consistent"`

	Included    []dataset.DataPoint `json:"included"`
	Excluded    []Exclusion         `json:"excluded"`
	Adjustments []Adjustment        `json:"adjustments,omitempty"`

	Method     Method  `json:"method"`
	MethodUsed string  `json:"method_used"`
	Iterations int     `json:"iterations"`
	Stages     []Stage `json:"stages"`
	Narrative  string  `json:"narrative"`
}

// ExcludedPoints returns the excluded points without reasons
func (r *Result) ExcludedPoints() []dataset.DataPoint {
	out := make([]dataset.DataPoint, len(r.Excluded))
	for i, e := range r.Excluded {
		out[i] = e.Point
	}
	return out
}

// MarshalJSON encodes non-finite numbers as null
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		plain
		Value                 *float64 `json:"value"`
		Sigma                 *float64 `json:"sigma"`
		Internal              *float64 `json:"internal_uncertainty"`
		External              *float64 `json:"external_uncertainty"`
		ChiSquare             *float64 `json:"chi_square"`
		ReducedChiSquare      *float64 `json:"reduced_chi_square"`
		CriticalChiSquare     *float64 `json:"critical_chi_square"`
		FinalReducedChiSquare *float64 `json:"final_reduced_chi_square"`
	}{
		plain:                 plain(r),
		Value:                 finite(r.Value),
		Sigma:                 finite(r.Sigma),
		Internal:              finite(r.Internal),
		External:              finite(r.External),
		ChiSquare:             finite(r.ChiSquare),
		ReducedChiSquare:      finite(r.ReducedChiSquare),
		CriticalChiSquare:     finite(r.CriticalChiSquare),
		FinalReducedChiSquare: finite(r.FinalReducedChiSquare),
	})
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
