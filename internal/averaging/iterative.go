package averaging

import (
	"fmt"
	"math"
)

// iterative computes a Huber M-estimate: starting from the median, points
// with |x_i - μ|/σ_i above HuberK get their weight scaled by HuberK/|r_i|,
// and the weighted mean is recomputed until it moves less than
// IterationTolerance times its internal uncertainty.
func (e *Engine) iterative(samples []sample) outcome {
	n := len(samples)
	xs := values(samples)
	ws := make([]float64, n)
	factors := make([]float64, n)

	mu := median(xs)
	out := outcome{used: Iterative, included: samples}
	converged := false

	reweight := func() {
		for i, s := range samples {
			r := math.Abs(s.x-mu) / s.sigma
			factors[i] = 1
			if r > e.opts.HuberK {
				factors[i] = e.opts.HuberK / r
			}
			ws[i] = factors[i] * s.weight()
		}
	}

	for out.iterations < e.opts.MaxIterations {
		out.iterations++
		reweight()
		m := weightedWith(xs, ws, n)
		step := math.Abs(m.mean - mu)
		mu = m.mean
		if step <= e.opts.IterationTolerance*m.internal {
			converged = true
			break
		}
	}
	reweight()
	m := weightedWith(xs, ws, n)

	out.value = m.mean
	out.sigma = m.sigma()
	out.internal = m.internal
	out.external = m.external
	out.final = m
	if !converged {
		out.notes = append(out.notes, fmt.Sprintf("did not converge within %d iterations", e.opts.MaxIterations))
	}

	for i, s := range samples {
		if factors[i] < 1 {
			out.adjustments = append(out.adjustments, Adjustment{
				Point: s.point,
				Kind:  AdjustWeight,
				From:  1,
				To:    factors[i],
			})
		}
	}
	out.refined = len(out.adjustments) > 0
	return out
}
