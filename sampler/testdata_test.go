package sampler

import (
	"github.com/CraigKelly/consensus/config"
	"github.com/CraigKelly/consensus/model"
)

// recoveryTruth is the small synthetic problem used across the tests
var recoveryTruth = &model.Truth{
	Competence: []float64{0.9, 0.9, 0.6, 0.6, 0.55},
	Consensus:  []int{1, 0, 1, 0},
}

func recoveryData() *model.Responses {
	x, err := model.Expected(recoveryTruth)
	if err != nil {
		panic(err)
	}
	return x
}

func smallConfig(draws, chains, tune int) config.Sampling {
	cfg := config.Default().Sampling
	cfg.Draws = draws
	cfg.Chains = chains
	cfg.Tune = tune
	return cfg
}
