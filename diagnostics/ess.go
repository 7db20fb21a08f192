package diagnostics

import (
	"math"
)

// autocov is the (biased, divide by n) autocovariance of xs at lag t
func autocov(xs []float64, mean float64, t int) float64 {
	n := len(xs)
	sum := 0.0
	for i := 0; i+t < n; i++ {
		sum += (xs[i] - mean) * (xs[i+t] - mean)
	}
	return sum / float64(n)
}

// EffectiveSize estimates the number of independent draws the chains are
// worth, combining chains the way Stan does: autocorrelations are pooled
// across chains, then summed with Geyer's initial monotone sequence. Works
// for a single chain. NaN for fewer than 4 draws per chain, ragged chains,
// or draws with no variance.
func EffectiveSize(chains [][]float64) float64 {
	means, vars, n, ok := chainMoments(chains, 4)
	if !ok {
		return math.NaN()
	}
	c := len(chains)

	meanVar := meanOf(vars)
	if meanVar <= 0 {
		return math.NaN()
	}

	varPlus := meanVar * float64(n-1) / float64(n)
	if c > 1 {
		grand := meanOf(means)
		ssb := 0.0
		for _, m := range means {
			ssb += (m - grand) * (m - grand)
		}
		varPlus += ssb / float64(c-1)
	}

	// rho is computed lazily: the sequence is normally cut off long
	// before lag n
	rho := func(t int) float64 {
		acov := 0.0
		for k, ch := range chains {
			acov += autocov(ch, means[k], t)
		}
		acov /= float64(c)
		return 1.0 - (meanVar-acov)/varPlus
	}

	rhoHat := make([]float64, n+1)
	t := 0
	rhoEven := 1.0
	rhoOdd := rho(1)
	rhoHat[0] = rhoEven
	rhoHat[1] = rhoOdd

	for t < n-5 && !math.IsNaN(rhoEven+rhoOdd) && rhoEven+rhoOdd > 0 {
		t += 2
		rhoEven = rho(t)
		rhoOdd = rho(t + 1)
		if rhoEven+rhoOdd >= 0 {
			rhoHat[t] = rhoEven
			rhoHat[t+1] = rhoOdd
		}
	}
	maxT := t
	if rhoEven > 0 {
		rhoHat[maxT+1] = rhoEven
	}

	// Initial monotone sequence
	for t = 0; t <= maxT-4; {
		t += 2
		if rhoHat[t]+rhoHat[t+1] > rhoHat[t-2]+rhoHat[t-1] {
			rhoHat[t] = (rhoHat[t-2] + rhoHat[t-1]) / 2
			rhoHat[t+1] = rhoHat[t]
		}
	}

	total := float64(c * n)

	tau := -1.0 + rhoHat[maxT+1]
	for i := 0; i < maxT; i++ {
		tau += 2 * rhoHat[i]
	}
	tau = math.Max(tau, 1.0/math.Log10(total))

	return total / tau
}
