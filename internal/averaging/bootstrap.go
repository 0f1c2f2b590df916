package averaging

import (
	"context"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
)

const bootstrapStream = 0x9e3779b97f4a7c15

// bootstrap resamples the points with replacement, smears each drawn value
// by its own uncertainty and takes the median of every resampled set. The
// adopted value is the mean of the medians and the uncertainty their
// standard deviation. A fixed seed makes the result reproducible.
func (e *Engine) bootstrap(ctx context.Context, samples []sample, initial check) (outcome, error) {
	rng := rand.New(rand.NewPCG(e.opts.BootstrapSeed, bootstrapStream))
	n := len(samples)
	buf := make([]float64, n)
	medians := make([]float64, e.opts.BootstrapSamples)

	for b := range medians {
		if b%256 == 0 {
			if err := ctx.Err(); err != nil {
				return outcome{}, fmt.Errorf("bootstrap: %w", err)
			}
		}
		for k := range buf {
			s := samples[rng.IntN(n)]
			buf[k] = s.x + s.sigma*rng.NormFloat64()
		}
		medians[b] = median(buf)
	}

	mean, sd := stat.MeanStdDev(medians, nil)
	return outcome{
		value:      mean,
		sigma:      sd,
		internal:   initial.internal,
		external:   sd,
		final:      initial.moments,
		included:   samples,
		iterations: len(medians),
		used:       Bootstrap,
		refined:    !initial.consistent,
		notes: []string{
			fmt.Sprintf("mean of the medians of %d resampled sets (seed %d)", len(medians), e.opts.BootstrapSeed),
		},
	}, nil
}
