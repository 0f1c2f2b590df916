package averaging

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// evm weights each point by its agreement with the others:
// β_i ∝ Σ_{j≠i} N(x_i - x_j; 0, sqrt(σ_i² + σ_j²)). An isolated point gets a
// vanishing weight whatever its own precision. Points below half the
// uniform share are reported as down-weighted.
func (e *Engine) evm(samples []sample) outcome {
	n := len(samples)
	beta := make([]float64, n)
	total := 0.0
	for i, si := range samples {
		for j, sj := range samples {
			if i == j {
				continue
			}
			g := distuv.Normal{Mu: 0, Sigma: math.Hypot(si.sigma, sj.sigma)}
			beta[i] += g.Prob(si.x - sj.x)
		}
		total += beta[i]
	}
	if !(total > 0) {
		for i := range beta {
			beta[i] = 1
		}
		total = float64(n)
	}
	for i := range beta {
		beta[i] /= total
	}

	var mean float64
	for i, s := range samples {
		mean += beta[i] * s.x
	}
	var int2, ext2, chi2 float64
	for i, s := range samples {
		d := s.x - mean
		int2 += beta[i] * s.sigma * s.sigma
		ext2 += beta[i] * d * d
		chi2 += d * d / (s.sigma * s.sigma)
	}

	out := outcome{
		value:    mean,
		internal: math.Sqrt(int2),
		external: math.Sqrt(ext2),
		included: samples,
		used:     EVM,
		final: moments{
			n:       n,
			mean:    mean,
			chi2:    chi2,
			reduced: chi2 / float64(n-1),
		},
	}
	out.sigma = math.Max(out.internal, out.external)

	uniform := 1 / float64(n)
	for i, s := range samples {
		if beta[i] < uniform/2 {
			out.adjustments = append(out.adjustments, Adjustment{
				Point: s.point,
				Kind:  AdjustWeight,
				From:  1,
				To:    beta[i] / uniform,
			})
		}
	}
	out.refined = len(out.adjustments) > 0
	return out
}
