package sampler

import (
	"math"

	"github.com/pkg/errors"
)

// Proposal scale limits. Past MaxScale a reflected Normal proposal on a
// width 0.5 interval is effectively uniform.
const (
	MinScale = 1e-4
	MaxScale = 1.0
)

// ScaleAdapter updates one informant's Metropolis proposal scale after each
// tuning iteration. Implementations must be stateless: one adapter is shared
// by every chain.
type ScaleAdapter interface {
	Adapt(scale float64, accepted bool) float64
}

// FixedScale is just a non-adaptive strategy.
type FixedScale struct{}

// Adapt for FixedScale is just an identity operation
func (FixedScale) Adapt(scale float64, accepted bool) float64 {
	return scale
}

// TargetAcceptance is a Robbins-Monro style adapter on the log scale: every
// accept multiplies the scale by exp(Rate*(1-Target)) and every reject by
// exp(-Rate*Target), so the scale settles where the acceptance rate equals
// Target.
type TargetAcceptance struct {
	Target float64
	Rate   float64
}

// NewTargetAcceptance creates an adapter aiming for the given acceptance rate
func NewTargetAcceptance(target float64, rate float64) (*TargetAcceptance, error) {
	if target <= 0 || target >= 1 {
		return nil, errors.Errorf("Target acceptance %f must be in (0, 1)", target)
	}
	if rate <= 0 {
		return nil, errors.Errorf("Adaptation rate %f must be > 0", rate)
	}
	return &TargetAcceptance{Target: target, Rate: rate}, nil
}

// Adapt implements ScaleAdapter
func (t *TargetAcceptance) Adapt(scale float64, accepted bool) float64 {
	a := 0.0
	if accepted {
		a = 1.0
	}
	return clampScale(scale * math.Exp(t.Rate*(a-t.Target)))
}

func clampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
