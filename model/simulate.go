package model

import (
	"math"

	"github.com/pkg/errors"

	"github.com/CraigKelly/consensus/rand"
)

// Truth is a known (D, Z) pair, typically the one synthetic data was
// generated from.
type Truth struct {
	Competence []float64 `yaml:"competence"`
	Consensus  []int     `yaml:"consensus"`
}

// Check returns an error if the truth cannot generate data
func (t *Truth) Check() error {
	if len(t.Competence) < 1 {
		return errors.Wrap(ErrInvalidData, "at least one competence is required")
	}
	if len(t.Consensus) < 1 {
		return errors.Wrap(ErrInvalidData, "at least one consensus answer is required")
	}
	for i, d := range t.Competence {
		if d < 0 || d > 1 {
			return errors.Wrapf(ErrInvalidData, "competence %d is %f, must be a probability", i, d)
		}
	}
	for j, z := range t.Consensus {
		if z != 0 && z != 1 {
			return errors.Wrapf(ErrInvalidData, "consensus %d is %d, must be 0 or 1", j, z)
		}
	}
	return nil
}

// Simulate draws a response matrix from the CCT likelihood: X_ij = 1 with
// probability ProbOne(D_i, Z_j).
func Simulate(t *Truth, gen *rand.Generator) (*Responses, error) {
	if err := t.Check(); err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, errors.New("A generator is required for simulation")
	}

	rows := make([][]int, len(t.Competence))
	for i, d := range t.Competence {
		rows[i] = make([]int, len(t.Consensus))
		for j, z := range t.Consensus {
			rows[i][j] = gen.Bernoulli(ProbOne(d, z))
		}
	}

	x, err := NewResponses(rows, nil, nil)
	if err != nil {
		return nil, err
	}
	x.Name = "simulated"
	return x, nil
}

// Expected builds the most typical data set for t without randomness: each
// informant disagrees with the consensus on round((1-D_i)*M) items. The
// disagreements are dealt round-robin across items so no item collects
// more of them than it has to.
func Expected(t *Truth) (*Responses, error) {
	if err := t.Check(); err != nil {
		return nil, err
	}

	m := len(t.Consensus)
	rows := make([][]int, len(t.Competence))
	cursor := 0
	for i, d := range t.Competence {
		rows[i] = make([]int, m)
		copy(rows[i], t.Consensus)

		wrong := int(math.Round((1.0 - d) * float64(m)))
		for k := 0; k < wrong; k++ {
			j := (cursor + k) % m
			rows[i][j] = 1 - rows[i][j]
		}
		cursor = (cursor + wrong) % m
	}

	x, err := NewResponses(rows, nil, nil)
	if err != nil {
		return nil, err
	}
	x.Name = "expected"
	return x, nil
}
