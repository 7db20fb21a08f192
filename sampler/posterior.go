package sampler

import (
	"fmt"

	"github.com/pkg/errors"
)

// DrawRecord is one retained (D, Z) snapshot
type DrawRecord struct {
	Chain     int       // Chain that produced the draw
	Iteration int       // Zero-based iteration that produced the draw, tuning included
	D         []float64 // Competence per informant
	Z         []int     // Consensus answer per item
}

// PosteriorSample is the ordered sequence of draws one chain kept after
// tuning. It is only appended to while the chain runs.
type PosteriorSample struct {
	Chain int
	Draws []DrawRecord
}

func newPosteriorSample(chain int, capacity int) *PosteriorSample {
	return &PosteriorSample{
		Chain: chain,
		Draws: make([]DrawRecord, 0, capacity),
	}
}

// record appends a copy of the current state, called right after an
// iteration completes
func (p *PosteriorSample) record(st *ChainState) {
	rec := DrawRecord{
		Chain:     st.Chain,
		Iteration: st.Iteration - 1,
		D:         make([]float64, len(st.D)),
		Z:         make([]int, len(st.Z)),
	}
	copy(rec.D, st.D)
	copy(rec.Z, st.Z)
	p.Draws = append(p.Draws, rec)
}

// Len is the number of draws
func (p *PosteriorSample) Len() int {
	return len(p.Draws)
}

// ParamKind says which latent vector a scalar parameter belongs to
type ParamKind int

// Parameter kinds
const (
	Competence ParamKind = iota
	Consensus
)

func (k ParamKind) String() string {
	switch k {
	case Competence:
		return "D"
	case Consensus:
		return "Z"
	}
	return "?"
}

// ParamName is the display name of a scalar parameter, e.g. D[3]
func ParamName(kind ParamKind, index int) string {
	return fmt.Sprintf("%s[%d]", kind, index)
}

// Trace holds the draws of one scalar parameter, split by chain
type Trace struct {
	Name   string
	Kind   ParamKind
	Index  int
	Chains [][]float64
}

// Pooled returns all chains' draws concatenated in chain order
func (t *Trace) Pooled() []float64 {
	total := 0
	for _, ch := range t.Chains {
		total += len(ch)
	}
	out := make([]float64, 0, total)
	for _, ch := range t.Chains {
		out = append(out, ch...)
	}
	return out
}

// Traces turns per-chain samples into one Trace per scalar parameter: every
// D[i] first, then every Z[j]. All samples must have the same length and
// dimensions.
func Traces(samples []*PosteriorSample) ([]*Trace, error) {
	if len(samples) < 1 {
		return nil, errors.Errorf("Can not build traces from 0 chains")
	}
	first := samples[0]
	if first == nil || first.Len() < 1 {
		return nil, errors.Errorf("Chain 0 has no draws")
	}

	n := len(first.Draws[0].D)
	m := len(first.Draws[0].Z)
	draws := first.Len()

	for k, s := range samples {
		if s == nil || s.Len() != draws {
			return nil, errors.Errorf("Chain %d draw count does not match chain 0 (%d)", k, draws)
		}
		for _, rec := range s.Draws {
			if len(rec.D) != n || len(rec.Z) != m {
				return nil, errors.Errorf("Chain %d iteration %d has dims %dx%d, expected %dx%d",
					k, rec.Iteration, len(rec.D), len(rec.Z), n, m)
			}
		}
	}

	traces := make([]*Trace, 0, n+m)
	for i := 0; i < n; i++ {
		t := &Trace{Name: ParamName(Competence, i), Kind: Competence, Index: i, Chains: make([][]float64, len(samples))}
		for k, s := range samples {
			t.Chains[k] = make([]float64, draws)
			for d, rec := range s.Draws {
				t.Chains[k][d] = rec.D[i]
			}
		}
		traces = append(traces, t)
	}
	for j := 0; j < m; j++ {
		t := &Trace{Name: ParamName(Consensus, j), Kind: Consensus, Index: j, Chains: make([][]float64, len(samples))}
		for k, s := range samples {
			t.Chains[k] = make([]float64, draws)
			for d, rec := range s.Draws {
				t.Chains[k][d] = float64(rec.Z[j])
			}
		}
		traces = append(traces, t)
	}

	return traces, nil
}
