package averaging

import (
	"fmt"
	"math"
)

// nrm removes, one at a time, the point whose normalized residual
// R_i = sqrt(w_i W / (W - w_i)) (x_i - x̄) exceeds R0 = sqrt(1.8 ln N + 2.6),
// recomputing the weighted mean after each removal. At least two points
// always remain.
func (e *Engine) nrm(samples []sample) outcome {
	work := append([]sample(nil), samples...)
	out := outcome{used: NRM}

	for out.iterations < e.opts.MaxIterations && len(work) > 2 {
		out.iterations++
		m := weighted(work)
		r0 := math.Sqrt(1.8*math.Log(float64(len(work))) + 2.6)

		worst, worstR := -1, 0.0
		for i, s := range work {
			w := s.weight()
			rest := m.sumW - w
			if rest <= 0 {
				continue
			}
			r := math.Sqrt(w*m.sumW/rest) * math.Abs(s.x-m.mean)
			if r > worstR {
				worst, worstR = i, r
			}
		}
		if worst < 0 || worstR <= r0 {
			break
		}

		out.exclusions = append(out.exclusions, Exclusion{
			Point:  work[worst].point,
			Reason: fmt.Sprintf("normalized residual %.3g exceeds %.3g", worstR, r0),
		})
		work = append(work[:worst:worst], work[worst+1:]...)
	}

	m := weighted(work)
	out.value = m.mean
	out.sigma = m.sigma()
	out.internal = m.internal
	out.external = m.external
	out.final = m
	out.included = work
	out.refined = len(out.exclusions) > 0
	return out
}
