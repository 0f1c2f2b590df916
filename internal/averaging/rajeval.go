package averaging

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// rajeval runs the population test, excluding points that deviate from
// the unweighted mean of the others beyond the OutlierConfidence normal
// deviate, then the consistency test, which inflates σ_i² by the variance
// of the weighted mean for discrepant points until none remain.
func (e *Engine) rajeval(samples []sample) outcome {
	work := append([]sample(nil), samples...)
	out := outcome{used: Rajeval}

	if len(work) >= 3 {
		crit := twoSidedNormal(e.opts.OutlierConfidence)
		keep := make([]sample, 0, len(work))
		var flagged []Exclusion
		for i, s := range work {
			others := make([]float64, 0, len(work)-1)
			for j, o := range work {
				if j != i {
					others = append(others, o.x)
				}
			}
			mean := stat.Mean(others, nil)
			sem := stat.StdDev(others, nil) / math.Sqrt(float64(len(others)))
			y := math.Abs(s.x-mean) / math.Sqrt(s.sigma*s.sigma+sem*sem)
			if y > crit {
				flagged = append(flagged, Exclusion{
					Point:  s.point,
					Reason: fmt.Sprintf("population test deviation %.3g exceeds %.3g", y, crit),
				})
				continue
			}
			keep = append(keep, s)
		}
		if len(keep) >= 2 {
			work = keep
			out.exclusions = flagged
		}
	}

	original := make([]float64, len(work))
	for i, s := range work {
		original[i] = s.sigma
	}

	zc := twoSidedNormal(e.opts.ConfidenceLevel)
	for out.iterations < e.opts.MaxIterations {
		out.iterations++
		m := weighted(work)
		v := m.internal * m.internal
		changed := false
		for i, s := range work {
			d := s.sigma*s.sigma - v
			if d <= 0 {
				d = s.sigma * s.sigma
			}
			if math.Abs(s.x-m.mean)/math.Sqrt(d) > zc {
				work[i].sigma = math.Sqrt(s.sigma*s.sigma + v)
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for i, s := range work {
		if s.sigma != original[i] {
			out.adjustments = append(out.adjustments, Adjustment{
				Point: s.point,
				Kind:  AdjustUncertainty,
				From:  original[i],
				To:    s.sigma,
			})
		}
	}

	m := weighted(work)
	out.value = m.mean
	out.sigma = m.sigma()
	out.internal = m.internal
	out.external = m.external
	out.final = m
	out.included = work
	out.refined = len(out.exclusions) > 0 || len(out.adjustments) > 0
	return out
}
