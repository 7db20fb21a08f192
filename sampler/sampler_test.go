package sampler

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CraigKelly/consensus/config"
	"github.com/CraigKelly/consensus/model"
)

func TestNewInvalidConfig(t *testing.T) {
	assert := assert.New(t)

	bad := []config.Sampling{
		smallConfig(0, 2, 10),
		smallConfig(10, 0, 10),
		smallConfig(10, 2, -1),
	}
	for _, cfg := range bad {
		s, err := New(cfg, nil)
		assert.Nil(s)
		assert.Equal(config.ErrInvalidConfig, errors.Cause(err))
	}
}

func TestRunInvalidData(t *testing.T) {
	assert := assert.New(t)

	s, err := New(smallConfig(10, 2, 10), nil)
	assert.NoError(err)

	res, err := s.Run(context.Background(), nil)
	assert.Nil(res)
	assert.Equal(model.ErrInvalidData, errors.Cause(err))

	res, err = s.Run(context.Background(), &model.Responses{})
	assert.Nil(res)
	assert.Equal(model.ErrInvalidData, errors.Cause(err))
}

func TestRunDeterministic(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	x := recoveryData()

	run := func(parallel bool) *Result {
		cfg := smallConfig(200, 3, 100)
		cfg.Parallel = parallel
		s, err := New(cfg, nil)
		require.NoError(err)
		res, err := s.Run(context.Background(), x)
		require.NoError(err)
		return res
	}

	r1 := run(true)
	r2 := run(true)
	r3 := run(false)

	require.Len(r1.Samples, 3)
	for k := range r1.Samples {
		assert.Equal(k, r1.Samples[k].Chain)
		assert.Equal(200, r1.Samples[k].Len())
		assert.Equal(r1.Samples[k], r2.Samples[k])
		assert.Equal(r1.Samples[k], r3.Samples[k])
	}
	assert.NotEqual(r1.RunID, r2.RunID)

	// Chains are seeded apart
	assert.NotEqual(r1.Samples[0].Draws[0].D, r1.Samples[1].Draws[0].D)
}

func TestRunRecovery(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s, err := New(smallConfig(1000, 2, 500), nil)
	require.NoError(err)

	res, err := s.Run(context.Background(), recoveryData())
	require.NoError(err)

	traces, err := res.Traces()
	require.NoError(err)
	require.Len(traces, 9)

	mean := func(xs []float64) float64 {
		sum := 0.0
		for _, x := range xs {
			sum += x
		}
		return sum / float64(len(xs))
	}

	for i, exp := range recoveryTruth.Competence {
		tr := traces[i]
		assert.Equal(Competence, tr.Kind)
		assert.InDelta(exp, mean(tr.Pooled()), 0.15, "informant %d", i)
	}

	correct := 0
	for j, exp := range recoveryTruth.Consensus {
		tr := traces[len(recoveryTruth.Competence)+j]
		assert.Equal(Consensus, tr.Kind)
		z := 0
		if mean(tr.Pooled()) > 0.5 {
			z = 1
		}
		if z == exp {
			correct++
		}
	}
	assert.True(correct >= 3, "only %d of 4 consensus answers recovered", correct)

	for _, st := range res.Stats {
		assert.False(st.DegenerateTune)
		// Tuned proposals neither stall nor accept everything
		assert.True(st.DrawAccept > 0.15 && st.DrawAccept < 0.85, "draw acceptance %f", st.DrawAccept)
		assert.False(math.IsNaN(st.TuneAccept))
	}
}

func TestRunCancelled(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(smallConfig(100, 2, 100), nil)
	assert.NoError(err)

	res, err := s.Run(ctx, recoveryData())
	assert.Nil(res)
	assert.Equal(context.Canceled, errors.Cause(err))
}

func TestTargetAcceptance(t *testing.T) {
	assert := assert.New(t)

	_, err := NewTargetAcceptance(0, 0.1)
	assert.Error(err)
	_, err = NewTargetAcceptance(1, 0.1)
	assert.Error(err)
	_, err = NewTargetAcceptance(0.44, 0)
	assert.Error(err)

	ta, err := NewTargetAcceptance(0.44, 0.1)
	assert.NoError(err)

	assert.InDelta(0.1*math.Exp(0.1*0.56), ta.Adapt(0.1, true), 1e-12)
	assert.InDelta(0.1*math.Exp(-0.1*0.44), ta.Adapt(0.1, false), 1e-12)

	// Clamped at both ends
	assert.Equal(MaxScale, ta.Adapt(MaxScale, true))
	assert.Equal(MinScale, ta.Adapt(MinScale, false))

	// 44 accepts per 100 proposals is a fixed point
	s := 0.01
	for round := 0; round < 10; round++ {
		for i := 0; i < 100; i++ {
			s = ta.Adapt(s, i < 44)
		}
	}
	assert.InDelta(0.01, s, 1e-9)

	assert.Equal(0.3, FixedScale{}.Adapt(0.3, true))
	assert.Equal(0.3, FixedScale{}.Adapt(0.3, false))
}

func TestRunAdapterOverride(t *testing.T) {
	assert := assert.New(t)

	cfg := smallConfig(10, 1, 20)
	s, err := New(cfg, nil)
	assert.NoError(err)

	res, err := s.WithAdapter(nil).Run(context.Background(), recoveryData())
	assert.NoError(err)
	for _, sc := range res.Stats[0].FinalScale {
		assert.InDelta(cfg.InitialScale, sc, 1e-12)
	}
}

func TestTraces(t *testing.T) {
	assert := assert.New(t)

	mk := func(chain int, ds [][]float64, zs [][]int) *PosteriorSample {
		p := &PosteriorSample{Chain: chain}
		for k := range ds {
			p.Draws = append(p.Draws, DrawRecord{Chain: chain, Iteration: k, D: ds[k], Z: zs[k]})
		}
		return p
	}

	a := mk(0, [][]float64{{0.6, 0.7}, {0.8, 0.9}}, [][]int{{1}, {0}})
	b := mk(1, [][]float64{{0.5, 0.55}, {0.65, 0.75}}, [][]int{{1}, {1}})

	traces, err := Traces([]*PosteriorSample{a, b})
	assert.NoError(err)
	assert.Len(traces, 3)

	assert.Equal("D[0]", traces[0].Name)
	assert.Equal([][]float64{{0.6, 0.8}, {0.5, 0.65}}, traces[0].Chains)
	assert.Equal("D[1]", traces[1].Name)
	assert.Equal([]float64{0.7, 0.9, 0.55, 0.75}, traces[1].Pooled())
	assert.Equal("Z[0]", traces[2].Name)
	assert.Equal(Consensus, traces[2].Kind)
	assert.Equal([]float64{1, 0, 1, 1}, traces[2].Pooled())

	_, err = Traces(nil)
	assert.Error(err)
	_, err = Traces([]*PosteriorSample{{}})
	assert.Error(err)

	short := mk(1, [][]float64{{0.5, 0.55}}, [][]int{{1}})
	_, err = Traces([]*PosteriorSample{a, short})
	assert.Error(err)

	wide := mk(1, [][]float64{{0.5}, {0.6}}, [][]int{{1}, {1}})
	_, err = Traces([]*PosteriorSample{a, wide})
	assert.Error(err)
}

var benchDraws int

func BenchmarkChainStep(b *testing.B) {
	truth := &model.Truth{Competence: make([]float64, 50), Consensus: make([]int, 40)}
	for i := range truth.Competence {
		truth.Competence[i] = 0.5 + 0.5*float64(i)/50.0
	}
	for j := range truth.Consensus {
		truth.Consensus[j] = j % 2
	}
	x, err := model.Expected(truth)
	if err != nil {
		b.Fatalf("Could not build data %v", err)
	}

	ch, err := NewChain(x, 0, smallConfig(1, 1, 0), nil)
	if err != nil {
		b.Fatalf("Could not create chain %v", err)
	}

	b.ResetTimer()

	it := 0
	for i := 0; i < b.N; i++ {
		ch.Step(false)
		it++
	}
	benchDraws = it
}
