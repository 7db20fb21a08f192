package sampler

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/CraigKelly/consensus/buffer"
	"github.com/CraigKelly/consensus/config"
	"github.com/CraigKelly/consensus/model"
	"github.com/CraigKelly/consensus/rand"
)

// ChainState is everything one chain mutates. It is owned by exactly one
// chain and never shared.
type ChainState struct {
	Chain     int
	Iteration int       // Completed iterations, tuning included
	D         []float64 // Competence per informant, always in [0.5, 1]
	Z         []int     // Consensus per item, always 0 or 1
	Scale     []float64 // Metropolis proposal sd per informant
	gen       *rand.Generator
}

// NewChainState draws the initial state for chain k: D_i ~ U(0.5, 1) and
// Z_j ~ Bernoulli(0.5) from the chain's own generator.
func NewChainState(x *model.Responses, chain int, seed int64, initialScale float64) (*ChainState, error) {
	if x == nil || x.N() < 1 || x.M() < 1 {
		return nil, errors.Wrap(model.ErrInvalidData, "response matrix must be at least 1x1")
	}

	gen, err := rand.NewChainGenerator(seed, chain)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not seed chain %d", chain)
	}

	st := &ChainState{
		Chain: chain,
		D:     make([]float64, x.N()),
		Z:     make([]int, x.M()),
		Scale: make([]float64, x.N()),
		gen:   gen,
	}

	for i := range st.D {
		st.D[i] = gen.Uniform(model.MinCompetence, model.MaxCompetence)
		st.Scale[i] = clampScale(initialScale)
	}
	for j := range st.Z {
		st.Z[j] = gen.Bernoulli(model.ConsensusPrior)
	}

	return st, nil
}

// ChainStats describes how a chain's Metropolis steps behaved
type ChainStats struct {
	Chain          int
	TuneAccept     float64   // Acceptance rate over all tuning proposals (NaN with no tuning)
	DrawAccept     float64   // Acceptance rate over all retained-draw proposals
	WindowAccept   []float64 // Per informant acceptance over the trailing window
	FinalScale     []float64 // Per informant proposal scale after tuning
	LogPosterior   float64   // Unnormalized log posterior of the final state
	DegenerateTune bool      // True if tuning accepted nothing or everything
}

// Chain runs one Metropolis-within-Gibbs chain over a response matrix.
type Chain struct {
	State   *ChainState
	Target  *model.Responses
	Adapter ScaleAdapter
	Sample  *PosteriorSample

	tune    int
	draws   int
	windows []*buffer.CircularFloat

	tuneAccepted, tuneProposed int64
	drawAccepted, drawProposed int64
}

// NewChain returns a chain ready to go, initialized from its own seed.
func NewChain(x *model.Responses, chain int, cfg config.Sampling, adapter ScaleAdapter) (*Chain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := NewChainState(x, chain, cfg.Seed, cfg.InitialScale)
	if err != nil {
		return nil, err
	}

	if adapter == nil {
		adapter = FixedScale{}
	}

	ch := &Chain{
		State:   st,
		Target:  x,
		Adapter: adapter,
		Sample:  newPosteriorSample(chain, cfg.Draws),
		tune:    cfg.Tune,
		draws:   cfg.Draws,
		windows: make([]*buffer.CircularFloat, x.N()),
	}
	for i := range ch.windows {
		ch.windows[i] = buffer.NewCircularFloat(cfg.AcceptWindow)
	}

	return ch, nil
}

// Run performs tune + draws iterations, recording every iteration after the
// tuning phase. Cancellation is checked once per iteration.
func (c *Chain) Run(ctx context.Context) error {
	total := c.tune + c.draws
	for c.State.Iteration < total {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "Chain %d cancelled at iteration %d", c.State.Chain, c.State.Iteration)
		}

		tuning := c.State.Iteration < c.tune
		c.Step(tuning)

		if !tuning {
			c.Sample.record(c.State)
		}
	}
	return nil
}

// Step performs one full iteration: a Gibbs sweep over Z followed by a
// Metropolis sweep over D.
func (c *Chain) Step(tuning bool) {
	gibbsConsensus(c.State, c.Target)
	accepted := metropolisCompetence(c.State, c.Target, c.Adapter, tuning)

	for i, acc := range accepted {
		if acc {
			c.windows[i].Add(1.0)
		} else {
			c.windows[i].Add(0.0)
		}
	}

	n := int64(len(accepted))
	hits := int64(0)
	for _, acc := range accepted {
		if acc {
			hits++
		}
	}
	if tuning {
		c.tuneAccepted += hits
		c.tuneProposed += n
	} else {
		c.drawAccepted += hits
		c.drawProposed += n
	}

	c.State.Iteration++
}

// Stats summarizes the chain's acceptance behavior so far
func (c *Chain) Stats() ChainStats {
	rate := func(acc, prop int64) float64 {
		if prop < 1 {
			return math.NaN()
		}
		return float64(acc) / float64(prop)
	}

	s := ChainStats{
		Chain:        c.State.Chain,
		TuneAccept:   rate(c.tuneAccepted, c.tuneProposed),
		DrawAccept:   rate(c.drawAccepted, c.drawProposed),
		WindowAccept: make([]float64, len(c.windows)),
		FinalScale:   make([]float64, len(c.State.Scale)),
	}
	for i, w := range c.windows {
		s.WindowAccept[i] = w.Mean()
	}
	copy(s.FinalScale, c.State.Scale)

	s.DegenerateTune = c.tuneProposed > 0 && (c.tuneAccepted == 0 || c.tuneAccepted == c.tuneProposed)

	lp, err := model.LogPosterior(c.State.D, c.State.Z, c.Target)
	if err != nil {
		lp = math.NaN()
	}
	s.LogPosterior = lp

	return s
}
