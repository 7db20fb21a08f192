package model

import (
	"fmt"
	"math"
)

// Competence bounds: nobody is worse than a coin flip
const (
	MinCompetence = 0.5
	MaxCompetence = 1.0
)

// ConsensusPrior is the prior P(Z_j = 1)
const ConsensusPrior = 0.5

// Epsilon floors every probability handed to math.Log. D_i = 1.0 is legal
// and would otherwise produce log(0) for any disagreement.
const Epsilon = 1e-12

// InformantName is the default name for informant i (zero-based)
func InformantName(i int) string {
	return fmt.Sprintf("I%d", i+1)
}

// ItemName is the default name for item j (zero-based)
func ItemName(j int) string {
	return fmt.Sprintf("Q%d", j+1)
}

// InBounds is true if d is a legal competence
func InBounds(d float64) bool {
	return d >= MinCompetence && d <= MaxCompetence
}

func clampProb(p float64) float64 {
	if p < Epsilon {
		return Epsilon
	}
	if p > 1.0-Epsilon {
		return 1.0 - Epsilon
	}
	return p
}

// ProbOne is P(X_ij = 1) for an informant with competence d on an item with
// consensus answer z: z*d + (1-z)*(1-d)
func ProbOne(d float64, z int) float64 {
	zf := float64(z)
	return zf*d + (1.0-zf)*(1.0-d)
}

// LogPrior is the log prior density of (D, Z): uniform on [0.5, 1] for every
// D_i and Bernoulli(0.5) for every Z_j. It is -Inf if any D_i is out of
// bounds. Z values are not inspected since the prior on Z is flat.
func LogPrior(d []float64, z []int) float64 {
	for _, di := range d {
		if !InBounds(di) {
			return math.Inf(-1)
		}
	}
	// Uniform density on a width 0.5 interval is 2, but the sampler never
	// needs the normalizing constant for D
	return float64(len(z)) * math.Log(ConsensusPrior)
}

// LogLikelihood is the total Bernoulli log likelihood of the response matrix
// given D and Z.
func LogLikelihood(d []float64, z []int, x *Responses) (float64, error) {
	if err := x.CheckDims(d, z); err != nil {
		return 0, err
	}

	total := 0.0
	for i := range d {
		total += RowLogLikelihood(x, i, d[i], z)
	}
	return total, nil
}

// LogPosterior is LogPrior + LogLikelihood (unnormalized)
func LogPosterior(d []float64, z []int, x *Responses) (float64, error) {
	lp := LogPrior(d, z)
	if math.IsInf(lp, -1) {
		return lp, nil
	}
	ll, err := LogLikelihood(d, z, x)
	if err != nil {
		return 0, err
	}
	return lp + ll, nil
}

// Agreements counts the items where informant i's answer matches z
func Agreements(x *Responses, i int, z []int) int {
	agree := 0
	for j, zj := range z {
		if x.At(i, j) == zj {
			agree++
		}
	}
	return agree
}

// CompetenceLogLikelihood is the log likelihood of one informant's row when
// that informant agrees with the consensus on agree of total items. Each
// agreement has probability d and each disagreement 1-d, whatever the value
// of Z_j.
func CompetenceLogLikelihood(d float64, agree, total int) float64 {
	return float64(agree)*math.Log(clampProb(d)) + float64(total-agree)*math.Log(clampProb(1.0-d))
}

// RowLogLikelihood is the log likelihood of informant i's answers only
func RowLogLikelihood(x *Responses, i int, d float64, z []int) float64 {
	return CompetenceLogLikelihood(d, Agreements(x, i, z), len(z))
}

// ItemLogOdds is log P(Z_j=1 | D, X_:j) - log P(Z_j=0 | D, X_:j). An
// informant answering 1 contributes log(d/(1-d)) toward Z_j=1, an informant
// answering 0 contributes the same amount toward Z_j=0.
func ItemLogOdds(x *Responses, j int, d []float64) float64 {
	lo := math.Log(ConsensusPrior) - math.Log(1.0-ConsensusPrior)
	for i, di := range d {
		w := math.Log(clampProb(di)) - math.Log(clampProb(1.0-di))
		if x.At(i, j) == 1 {
			lo += w
		} else {
			lo -= w
		}
	}
	return lo
}

// Logistic maps log odds to a probability without overflowing
func Logistic(lo float64) float64 {
	if lo >= 0 {
		return 1.0 / (1.0 + math.Exp(-lo))
	}
	e := math.Exp(lo)
	return e / (1.0 + e)
}
