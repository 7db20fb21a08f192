package sampler

import (
	"math"

	"github.com/CraigKelly/consensus/model"
)

// metropolisCompetence performs one random walk Metropolis update per
// informant and returns which proposals were accepted. Updates are applied
// immediately (sequential incorporation). Given Z, informant i's likelihood
// only involves D_i, so this is the same chain as updating from a snapshot.
func metropolisCompetence(st *ChainState, x *model.Responses, adapter ScaleAdapter, tuning bool) []bool {
	accepted := make([]bool, len(st.D))
	m := len(st.Z)

	for i, cur := range st.D {
		agree := model.Agreements(x, i, st.Z)

		prop := reflect(cur+st.gen.Normal(0, st.Scale[i]), model.MinCompetence, model.MaxCompetence)

		// Uniform prior and a symmetric proposal: only the likelihood ratio
		// is left in the acceptance probability
		logRatio := model.CompetenceLogLikelihood(prop, agree, m) - model.CompetenceLogLikelihood(cur, agree, m)
		if logRatio >= 0 || st.gen.LogUniform() < logRatio {
			st.D[i] = prop
			accepted[i] = true
		}

		if tuning {
			st.Scale[i] = adapter.Adapt(st.Scale[i], accepted[i])
		}
	}

	return accepted
}

// reflect folds x back into [lo, hi] as if the interval's ends were
// mirrors. Reflection keeps a symmetric proposal symmetric.
func reflect(x, lo, hi float64) float64 {
	if x >= lo && x <= hi {
		return x
	}

	w := hi - lo
	y := math.Mod(x-lo, 2*w)
	if y < 0 {
		y += 2 * w
	}
	if y > w {
		y = 2*w - y
	}
	return lo + y
}
