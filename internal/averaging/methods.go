package averaging

import (
	"fmt"
	"math"
)

func (e *Engine) weightedMean(samples []sample) outcome {
	m := weighted(samples)
	return outcome{
		value:    m.mean,
		sigma:    m.sigma(),
		internal: m.internal,
		external: m.external,
		final:    m,
		included: samples,
		used:     Weighted,
	}
}

func (e *Engine) unweightedMean(samples []sample) outcome {
	mean, internal, external := unweightedMoments(samples)
	return outcome{
		value:    mean,
		sigma:    math.Max(internal, external),
		internal: internal,
		external: external,
		final:    weighted(samples),
		included: samples,
		used:     Unweighted,
	}
}

// best adopts the most precise point as it was reported
func (e *Engine) best(samples []sample) outcome {
	i := mostPrecise(samples)
	chosen := samples[i]
	q := chosen.point.Quantity

	out := outcome{
		value:    chosen.x,
		sigma:    chosen.sigma,
		internal: chosen.sigma,
		external: chosen.sigma,
		final:    moments{n: 1, reduced: math.NaN()},
		included: []sample{chosen},
		used:     Best,
		adopted:  &q,
	}
	for j, s := range samples {
		if j == i {
			continue
		}
		out.exclusions = append(out.exclusions, Exclusion{
			Point:  s.point,
			Reason: "less precise than " + chosen.point.Label(),
		})
	}
	return out
}

// auto keeps the weighted mean of consistent data. Otherwise it tries the
// outlier refinements in turn and adopts the consistent one with the lowest
// reduced chi-square, falling back to EVM.
func (e *Engine) auto(samples []sample, initial check) outcome {
	if initial.consistent {
		out := e.weightedMean(samples)
		out.notes = append(out.notes, "data are consistent, weighted mean adopted")
		return out
	}

	var (
		chosen outcome
		found  bool
		notes  []string
	)
	for _, candidate := range []struct {
		method Method
		run    func([]sample) outcome
	}{
		{NRM, e.nrm},
		{Rajeval, e.rajeval},
		{LWM, e.lwm},
	} {
		o := candidate.run(samples)
		crit := criticalReduced(o.final.n, e.opts.ConfidenceLevel)
		ok := o.final.reduced <= crit
		notes = append(notes, fmt.Sprintf("%s gives reduced chi-square %.3g (critical %.3g)", candidate.method, o.final.reduced, crit))
		if ok && (!found || o.final.reduced < chosen.final.reduced) {
			chosen, found = o, true
		}
	}
	if !found {
		chosen = e.evm(samples)
		notes = append(notes, "no refinement is consistent, expected value method adopted")
	} else {
		notes = append(notes, chosen.used.String()+" adopted")
	}
	chosen.notes = append(notes, chosen.notes...)
	chosen.refined = true
	return chosen
}
