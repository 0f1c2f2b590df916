package dataset

import (
	"math"
	"sort"

	apperrors "nucleval/internal/errors"
	"nucleval/internal/quantity"
)

// Record is a raw measurement as handed over by a record parser
type Record struct {
	ID          string   `json:"id" yaml:"id"`
	Key         *float64 `json:"key,omitempty" yaml:"key,omitempty"`
	Value       string   `json:"value" yaml:"value" validate:"required"`
	Uncertainty string   `json:"uncertainty,omitempty" yaml:"uncertainty,omitempty"`
	Provenance  string   `json:"provenance,omitempty" yaml:"provenance,omitempty"`
}

// DataPoint is one measurement of the quantity under evaluation.
// It is built once from a record and never mutated.
type DataPoint struct {
	ID         string            `json:"id"`
	Dataset    string            `json:"dataset,omitempty"`
	Quantity   quantity.Quantity `json:"quantity"`
	Provenance string            `json:"provenance,omitempty"`
	// Note explains why the point is reference-only; empty for usable points.
	Note string `json:"note,omitempty"`
}

// Reference-only notes
const (
	NoteParseFailure = "value could not be parsed"
	NoteNoValue      = "no numeric value"
	NoteLimit        = "limit value"
	NoteApproximate  = "approximate value"
	NoteCalculated   = "calculated or systematics value"
	NoteUnknown      = "no numeric uncertainty"
	NoteNonPositive  = "non-positive uncertainty"
)

// NewDataPoint classifies a quantity as usable or reference-only
func NewDataPoint(id, ds, provenance string, q quantity.Quantity) DataPoint {
	return DataPoint{
		ID:         id,
		Dataset:    ds,
		Quantity:   q,
		Provenance: provenance,
		Note:       classify(q),
	}
}

// FromRecord parses a record into a data point. Parse failures are kept as
// reference-only points that carry the parser's message.
func FromRecord(ds string, r Record) DataPoint {
	q, err := quantity.Parse(r.Value, r.Uncertainty)
	if err != nil {
		return DataPoint{
			ID:         r.ID,
			Dataset:    ds,
			Provenance: r.Provenance,
			Note:       NoteParseFailure + ": " + err.Error(),
		}
	}
	return NewDataPoint(r.ID, ds, r.Provenance, q)
}

func classify(q quantity.Quantity) string {
	if q.IsZero() {
		return NoteNoValue
	}
	switch q.Kind() {
	case quantity.LowerLimit, quantity.UpperLimit:
		return NoteLimit
	case quantity.Approximate:
		return NoteApproximate
	case quantity.Calculated:
		return NoteCalculated
	case quantity.Unknown:
		return NoteUnknown
	}
	sigma, ok := q.Sigma()
	if !ok {
		return NoteUnknown
	}
	if !(sigma > 0) {
		return NoteNonPositive
	}
	return ""
}

// Usable reports whether the point can take part in a weighted average
func (p DataPoint) Usable() bool { return p.Note == "" }

// Value returns the numeric value of the point
func (p DataPoint) Value() float64 {
	v, _ := p.Quantity.Value()
	return v
}

// Sigma returns the larger of the point's uncertainty sides
func (p DataPoint) Sigma() float64 {
	s, _ := p.Quantity.Sigma()
	return s
}

// Weight returns 1/sigma² using the larger uncertainty side. It fails with a
// NEGATIVE_WEIGHT error for points without a positive uncertainty.
func (p DataPoint) Weight() (float64, error) {
	sigma, ok := p.Quantity.Sigma()
	if !ok || !(sigma > 0) || math.IsInf(sigma, 0) {
		return 0, apperrors.NewNegativeWeightError(p.ID, sigma)
	}
	return 1 / (sigma * sigma), nil
}

// Label identifies the point in narratives
func (p DataPoint) Label() string {
	switch {
	case p.ID != "" && p.Dataset != "":
		return p.Dataset + "/" + p.ID
	case p.ID != "":
		return p.ID
	case p.Provenance != "":
		return p.Provenance
	default:
		return p.Quantity.String()
	}
}

// Collection is the set of data points of one group
type Collection struct {
	Name   string      `json:"name,omitempty"`
	Points []DataPoint `json:"points"`
}

// NewCollection builds a collection from points
func NewCollection(name string, points ...DataPoint) Collection {
	return Collection{Name: name, Points: append([]DataPoint(nil), points...)}
}

// Len returns the number of points
func (c Collection) Len() int { return len(c.Points) }

// Usable returns the points that can be weighted, in input order
func (c Collection) Usable() []DataPoint {
	var out []DataPoint
	for _, p := range c.Points {
		if p.Usable() {
			out = append(out, p)
		}
	}
	return out
}

// ReferenceOnly returns the points kept for the narrative only
func (c Collection) ReferenceOnly() []DataPoint {
	var out []DataPoint
	for _, p := range c.Points {
		if !p.Usable() {
			out = append(out, p)
		}
	}
	return out
}

// Sorted returns a copy of the points ordered by value. Points without a
// value sort first; equal values keep input order.
func (c Collection) Sorted() []DataPoint {
	out := append([]DataPoint(nil), c.Points...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Quantity.Compare(out[j].Quantity) < 0
	})
	return out
}
