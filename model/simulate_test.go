package model

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/CraigKelly/consensus/rand"
)

func TestSimulate(t *testing.T) {
	assert := assert.New(t)

	truth := &Truth{
		Competence: []float64{1.0, 1.0, 0.0},
		Consensus:  []int{1, 0, 1, 1, 0},
	}

	gen, err := rand.NewGenerator(42)
	assert.NoError(err)

	x, err := Simulate(truth, gen)
	assert.NoError(err)
	assert.Equal(3, x.N())
	assert.Equal(5, x.M())

	// Perfect informants always agree, the anti-informant never does
	assert.Equal(truth.Consensus, x.Row(0))
	assert.Equal(truth.Consensus, x.Row(1))
	for j, z := range truth.Consensus {
		assert.Equal(1-z, x.At(2, j))
	}
}

func TestSimulateDeterministic(t *testing.T) {
	assert := assert.New(t)

	truth := &Truth{
		Competence: []float64{0.9, 0.6, 0.55},
		Consensus:  []int{1, 0, 1, 0, 1, 1, 0, 0},
	}

	run := func() *Responses {
		gen, err := rand.NewGenerator(7)
		assert.NoError(err)
		x, err := Simulate(truth, gen)
		assert.NoError(err)
		return x
	}

	x1, x2 := run(), run()
	for i := 0; i < x1.N(); i++ {
		assert.Equal(x1.Row(i), x2.Row(i))
	}
}

func TestSimulateInvalid(t *testing.T) {
	assert := assert.New(t)

	gen, err := rand.NewGenerator(1)
	assert.NoError(err)

	bad := []*Truth{
		{},
		{Competence: []float64{0.9}},
		{Consensus: []int{1}},
		{Competence: []float64{1.1}, Consensus: []int{1}},
		{Competence: []float64{0.9}, Consensus: []int{2}},
	}
	for _, b := range bad {
		x, err := Simulate(b, gen)
		assert.Nil(x)
		assert.Equal(ErrInvalidData, errors.Cause(err))
	}

	x, err := Simulate(&Truth{Competence: []float64{0.9}, Consensus: []int{1}}, nil)
	assert.Nil(x)
	assert.Error(err)
}

func TestExpected(t *testing.T) {
	assert := assert.New(t)

	truth := &Truth{
		Competence: []float64{0.9, 0.9, 0.6, 0.6, 0.55},
		Consensus:  []int{1, 0, 1, 0},
	}

	x, err := Expected(truth)
	assert.NoError(err)
	assert.Equal(5, x.N())
	assert.Equal(4, x.M())

	assert.Equal([]int{1, 0, 1, 0}, x.Row(0))
	assert.Equal([]int{1, 0, 1, 0}, x.Row(1))
	assert.Equal([]int{0, 1, 1, 0}, x.Row(2))
	assert.Equal([]int{1, 0, 0, 1}, x.Row(3))
	assert.Equal([]int{0, 1, 1, 0}, x.Row(4))

	for i := range truth.Competence {
		assert.Equal(map[int]int{0: 4, 1: 4, 2: 2, 3: 2, 4: 2}[i], Agreements(x, i, truth.Consensus))
	}

	x, err = Expected(&Truth{Competence: []float64{0.5}})
	assert.Nil(x)
	assert.Error(err)
}
