package sampler

import (
	"github.com/CraigKelly/consensus/model"
)

// gibbsConsensus draws every Z_j from its exact conditional given D. Items
// are conditionally independent given D, so the sweep order does not
// matter.
func gibbsConsensus(st *ChainState, x *model.Responses) {
	for j := range st.Z {
		p := model.Logistic(model.ItemLogOdds(x, j, st.D))
		st.Z[j] = st.gen.Bernoulli(p)
	}
}
