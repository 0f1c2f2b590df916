package averaging

import (
	"fmt"
	"strings"
)

func narrate(r *Result, out outcome, opts Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Method %s: %d of %d points averaged.\n",
		r.MethodUsed, len(r.Included), len(r.Included)+len(r.Excluded))

	verdict := "consistent"
	if !r.Consistent {
		verdict = "inconsistent"
	}
	fmt.Fprintf(&b, "Weighted mean of usable points has reduced chi-square %.3g against a critical %.3g at %g%% confidence: data %s.\n",
		r.ReducedChiSquare, r.CriticalChiSquare, opts.ConfidenceLevel*100, verdict)

	for _, x := range r.Excluded {
		fmt.Fprintf(&b, "Excluded %s (%s): %s.\n", x.Point.Label(), x.Point.Quantity.String(), x.Reason)
	}
	for _, a := range r.Adjustments {
		switch a.Kind {
		case AdjustUncertainty:
			fmt.Fprintf(&b, "Uncertainty of %s inflated from %.3g to %.3g.\n", a.Point.Label(), a.From, a.To)
		case AdjustWeight:
			fmt.Fprintf(&b, "Weight of %s reduced to %.3g of nominal.\n", a.Point.Label(), a.To)
		}
	}
	for _, n := range out.notes {
		fmt.Fprintf(&b, "Note: %s.\n", n)
	}

	fmt.Fprintf(&b, "Adopted %s %s (internal %.3g, external %.3g).",
		r.Rendered.Value, r.Rendered.Uncertainty, r.Internal, r.External)
	return b.String()
}

func narrateInsufficient(r *Result, usable int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "No average computed: %d usable point(s), at least 2 are required.", usable)
	for _, x := range r.Excluded {
		fmt.Fprintf(&b, "\nExcluded %s (%s): %s.", x.Point.Label(), x.Point.Quantity.String(), x.Reason)
	}
	if usable == 1 {
		fmt.Fprintf(&b, "\nSingle usable value %s %s reported as is.", r.Rendered.Value, r.Rendered.Uncertainty)
	}
	return b.String()
}
