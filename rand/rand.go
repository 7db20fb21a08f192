package rand

import (
	"math"
	mrand "math/rand"

	"github.com/pkg/errors"
	"github.com/seehuhn/mt19937"
)

// A Generator is a Mersenne Twister (64 bit) PRNG owned by a single chain.
// It is NOT safe for concurrent use: every chain gets its own.
type Generator struct {
	mt  *mt19937.MT19937
	rnd *mrand.Rand // only used for NormFloat64
}

func newGenerator(mt *mt19937.MT19937) *Generator {
	return &Generator{
		mt:  mt,
		rnd: mrand.New(mt),
	}
}

// NewGenerator creates a generator seeded from a single int64
func NewGenerator(seed int64) (*Generator, error) {
	mt := mt19937.New()
	mt.Seed(seed)
	return newGenerator(mt), nil
}

// NewGeneratorSlice creates a generator using the init-by-array seeding from
// the reference MT19937-64 implementation.
func NewGeneratorSlice(key []uint64) (*Generator, error) {
	if len(key) < 1 {
		return nil, errors.Errorf("Seed key must have at least one entry")
	}

	mt := mt19937.New()
	mt.SeedFromSlice(key)
	return newGenerator(mt), nil
}

// ChainSeed is the seed key for chain k of a run with the given base seed.
// Init-by-array mixes both words through the whole state vector, so
// neighboring chains do not get correlated streams.
func ChainSeed(base int64, chain int) []uint64 {
	return []uint64{uint64(base), uint64(chain)}
}

// NewChainGenerator returns the generator for chain k of a run.
func NewChainGenerator(base int64, chain int) (*Generator, error) {
	if chain < 0 {
		return nil, errors.Errorf("Invalid chain index %d", chain)
	}
	return NewGeneratorSlice(ChainSeed(base, chain))
}

// Int63 provides the same interface as Go's math/rand
func (g *Generator) Int63() int64 {
	return g.mt.Int63()
}

// Int63n is a copy of the current Go code
func (g *Generator) Int63n(n int64) int64 {
	if n <= 0 {
		panic("invalid argument to Int63n")
	}

	if n&(n-1) == 0 { // n is power of two, can mask
		return g.Int63() & (n - 1)
	}

	max := int64((1 << 63) - 1 - (1<<63)%uint64(n))
	v := g.Int63()
	for v > max {
		v = g.Int63()
	}

	return v % n
}

// Float64 uses the commented, simpler implmentation since we don't have the
// same support requirements for users
func (g *Generator) Float64() float64 {
	// See the Go lang comments for Rand Float64 implementation for details
	return float64(g.Int63n(1<<53)) / (1 << 53)
}

// Uniform returns a draw from [lo, hi)
func (g *Generator) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.Float64()
}

// Normal returns a draw from Normal(mean, sd)
func (g *Generator) Normal(mean, sd float64) float64 {
	return mean + sd*g.rnd.NormFloat64()
}

// Bernoulli returns 1 with probability p, else 0. p outside [0,1] is clamped.
func (g *Generator) Bernoulli(p float64) int {
	if g.Float64() < p {
		return 1
	}
	return 0
}

// LogUniform returns log(u) for u ~ Uniform(0,1], used for Metropolis
// acceptance tests in log space.
func (g *Generator) LogUniform() float64 {
	return math.Log(1.0 - g.Float64())
}
