package averaging

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"nucleval/internal/dataset"
)

// sample is a usable point in numeric form. sigma may be inflated by a
// method; the point keeps the original quantity.
type sample struct {
	point dataset.DataPoint
	x     float64
	sigma float64
}

func (s sample) weight() float64 { return 1 / (s.sigma * s.sigma) }

// moments holds the weighted mean of a sample set and its diagnostics
type moments struct {
	n        int
	sumW     float64
	mean     float64
	internal float64
	external float64
	chi2     float64
	reduced  float64
}

// sigma returns the external uncertainty when the reduced chi-square
// exceeds one, the internal one otherwise.
func (m moments) sigma() float64 {
	if m.reduced > 1 {
		return m.external
	}
	return m.internal
}

// weighted computes the inverse-variance weighted mean of samples
func weighted(samples []sample) moments {
	n := len(samples)
	xs := make([]float64, n)
	ws := make([]float64, n)
	for i, s := range samples {
		xs[i] = s.x
		ws[i] = s.weight()
	}
	return weightedWith(xs, ws, n)
}

// weightedWith computes weighted moments with explicit weights. dof points
// are used for the reduced chi-square.
func weightedWith(xs, ws []float64, dof int) moments {
	m := moments{n: len(xs), sumW: floats.Sum(ws)}
	m.mean = floats.Dot(xs, ws) / m.sumW
	m.internal = 1 / math.Sqrt(m.sumW)
	for i, x := range xs {
		d := x - m.mean
		m.chi2 += ws[i] * d * d
	}
	if dof > 1 {
		m.reduced = m.chi2 / float64(dof-1)
	} else {
		m.reduced = math.NaN()
	}
	m.external = m.internal * math.Sqrt(m.reduced)
	return m
}

// criticalReduced returns the reduced chi-square that n points exceed with
// probability 1-confidence when they are mutually consistent.
func criticalReduced(n int, confidence float64) float64 {
	if n < 2 {
		return math.NaN()
	}
	dof := float64(n - 1)
	return distuv.ChiSquared{K: dof}.Quantile(confidence) / dof
}

// twoSidedNormal returns the standard normal deviate with the given
// central coverage.
func twoSidedNormal(coverage float64) float64 {
	return distuv.UnitNormal.Quantile(1 - (1-coverage)/2)
}

func values(samples []sample) []float64 {
	xs := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.x
	}
	return xs
}

// median returns the median of xs without modifying it. An even count
// averages the two middle values; an empty slice gives NaN.
func median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// unweightedMoments returns the arithmetic mean with the larger of the
// propagated and the scatter uncertainty.
func unweightedMoments(samples []sample) (mean, internal, external float64) {
	xs := values(samples)
	n := float64(len(xs))
	mean = stat.Mean(xs, nil)
	var sumSq float64
	for _, s := range samples {
		sumSq += s.sigma * s.sigma
	}
	internal = math.Sqrt(sumSq) / n
	if len(xs) > 1 {
		external = stat.StdDev(xs, nil) / math.Sqrt(n)
	}
	return mean, internal, external
}

// mostPrecise returns the index of the sample with the smallest
// uncertainty, preferring the most recent provenance on ties.
func mostPrecise(samples []sample) int {
	best := 0
	for i := 1; i < len(samples); i++ {
		s, b := samples[i], samples[best]
		if s.sigma < b.sigma || (s.sigma == b.sigma && dataset.MoreRecent(s.point.Provenance, b.point.Provenance)) {
			best = i
		}
	}
	return best
}
