package averaging

import "math"

// lwm limits the relative weight of any single point to MaxRelativeWeight
// by inflating its uncertainty, then averages. Inconsistent data fall back
// to the unweighted mean when its uncertainty covers the weighted mean;
// otherwise the weighted mean's uncertainty is extended to reach the most
// precise value. The adopted uncertainty is never below the smallest input
// uncertainty.
func (e *Engine) lwm(samples []sample) outcome {
	work := append([]sample(nil), samples...)
	limit := e.opts.MaxRelativeWeight
	out := outcome{used: LWM}

	for out.iterations < e.opts.MaxIterations && limit < 1 {
		out.iterations++
		total := 0.0
		k := 0
		for i, s := range work {
			total += s.weight()
			if s.weight() > work[k].weight() {
				k = i
			}
		}
		if work[k].weight()/total <= limit*(1+1e-12) {
			break
		}
		rest := total - work[k].weight()
		work[k].sigma = 1 / math.Sqrt(rest*limit/(1-limit))
	}

	for i, s := range work {
		if s.sigma != samples[i].sigma {
			out.adjustments = append(out.adjustments, Adjustment{
				Point: s.point,
				Kind:  AdjustUncertainty,
				From:  samples[i].sigma,
				To:    s.sigma,
			})
		}
	}

	m := weighted(work)
	out.final = m
	out.included = samples
	out.internal = m.internal
	out.external = m.external

	precise := samples[mostPrecise(samples)]
	crit := criticalReduced(len(work), e.opts.ConfidenceLevel)
	if m.reduced <= crit {
		out.value = m.mean
		out.sigma = math.Max(m.internal, m.external)
	} else {
		um, ui, ux := unweightedMoments(samples)
		us := math.Max(ui, ux)
		if math.Abs(um-m.mean) <= us {
			out.value, out.sigma = um, us
			out.notes = append(out.notes, "data are inconsistent, unweighted mean adopted as its uncertainty covers the weighted mean")
		} else {
			out.value = m.mean
			out.sigma = math.Max(math.Max(m.internal, m.external), math.Abs(m.mean-precise.x))
			out.notes = append(out.notes, "data are inconsistent, weighted mean uncertainty extended to include the most precise value")
		}
		out.refined = true
	}

	if out.sigma < precise.sigma {
		out.sigma = precise.sigma
		out.notes = append(out.notes, "uncertainty raised to the smallest input uncertainty")
	}
	if len(out.adjustments) > 0 {
		out.refined = true
	}
	return out
}
