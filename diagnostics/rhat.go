// Package diagnostics measures whether independent chains agree on the
// posterior: Gelman-Rubin R-hat and effective sample size per parameter.
package diagnostics

import (
	"math"
)

// chainMoments returns the per-chain means and unbiased variances. ok is
// false unless there is at least one chain, every chain has the same length
// n, and n >= minLen.
func chainMoments(chains [][]float64, minLen int) (means []float64, vars []float64, n int, ok bool) {
	if len(chains) < 1 {
		return nil, nil, 0, false
	}
	n = len(chains[0])
	if n < minLen {
		return nil, nil, n, false
	}

	means = make([]float64, len(chains))
	vars = make([]float64, len(chains))
	for k, ch := range chains {
		if len(ch) != n {
			return nil, nil, n, false
		}
		sum := 0.0
		for _, x := range ch {
			sum += x
		}
		mean := sum / float64(n)

		ss := 0.0
		for _, x := range ch {
			ss += (x - mean) * (x - mean)
		}
		means[k] = mean
		vars[k] = ss / float64(n-1)
	}
	return means, vars, n, true
}

func meanOf(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// RHat is the Gelman-Rubin potential scale reduction factor for one scalar
// parameter given C chains of equal length n:
//
//	W = mean within-chain variance
//	B = n * variance of the chain means
//	V = (n-1)/n * W + B/n
//	R = sqrt(V / W)
//
// It is NaN when it cannot be computed: fewer than 2 chains, fewer than 2
// draws, or ragged chains. Chains that never move (W = 0) give 1 when they
// all sit on the same value and +Inf when they do not.
func RHat(chains [][]float64) float64 {
	if len(chains) < 2 {
		return math.NaN()
	}

	means, vars, n, ok := chainMoments(chains, 2)
	if !ok {
		return math.NaN()
	}

	w := meanOf(vars)

	grand := meanOf(means)
	ssb := 0.0
	for _, m := range means {
		ssb += (m - grand) * (m - grand)
	}
	b := float64(n) * ssb / float64(len(means)-1)

	if w <= 0 {
		if b <= 0 {
			return 1.0
		}
		return math.Inf(1)
	}

	nf := float64(n)
	v := (nf-1)/nf*w + b/nf
	return math.Sqrt(v / w)
}
