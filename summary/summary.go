// Package summary reduces posterior draws to point estimates, highest
// density intervals, consensus answers, and a majority vote comparison.
package summary

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/CraigKelly/consensus/model"
	"github.com/CraigKelly/consensus/sampler"
)

// ParamSummary describes the pooled posterior of one scalar parameter
type ParamSummary struct {
	Param   string
	Kind    sampler.ParamKind
	Index   int
	Mean    float64
	SD      float64
	HDILow  float64
	HDIHigh float64
}

// InformantSummary is the competence estimate for one informant
type InformantSummary struct {
	Informant string
	ParamSummary
}

// ItemSummary is the consensus estimate for one item, next to the raw vote
type ItemSummary struct {
	Item               string
	Index              int
	ProbOne            float64 // Posterior P(Z_j = 1)
	Consensus          int     // 1 if ProbOne > 0.5
	OnesFraction       float64 // Fraction of informants answering 1
	Majority           int     // 1 if OnesFraction > 0.5
	AgreesWithMajority bool
}

// Summary is everything the summarizer derives from one run
type Summary struct {
	HDIProb    float64
	Params     []ParamSummary
	Informants []InformantSummary
	Items      []ItemSummary
	Agreement  int // Items where consensus and majority vote match
	TotalItems int
}

// Decide turns a probability into a binary answer: 1 only when strictly
// above one half
func Decide(p float64) int {
	if p > 0.5 {
		return 1
	}
	return 0
}

// MeanSD returns the mean and sample standard deviation of xs. The sd is NaN
// for fewer than two values.
func MeanSD(xs []float64) (float64, float64) {
	if len(xs) < 1 {
		return math.NaN(), math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	if len(xs) < 2 {
		return mean, math.NaN()
	}

	ss := 0.0
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(ss / float64(len(xs)-1))
}

// HDI is the narrowest interval containing prob of the draws: the draws are
// sorted (on a copy) and every window of floor(prob*n) consecutive gaps is
// compared. Ties go to the lowest window.
func HDI(draws []float64, prob float64) (float64, float64, error) {
	if prob <= 0 || prob >= 1 {
		return math.NaN(), math.NaN(), errors.Errorf("HDI probability %f must be in (0, 1)", prob)
	}
	n := len(draws)
	if n < 1 {
		return math.NaN(), math.NaN(), errors.Errorf("Can not compute an HDI from 0 draws")
	}

	sorted := make([]float64, n)
	copy(sorted, draws)
	sort.Float64s(sorted)

	inc := int(math.Floor(prob * float64(n)))
	intervals := n - inc
	best := 0
	bestWidth := math.Inf(1)
	for i := 0; i < intervals; i++ {
		w := sorted[i+inc] - sorted[i]
		if w < bestWidth {
			bestWidth = w
			best = i
		}
	}

	return sorted[best], sorted[best+inc], nil
}

// SummarizeTrace reduces one parameter's pooled draws
func SummarizeTrace(t *sampler.Trace, hdiProb float64) (ParamSummary, error) {
	pooled := t.Pooled()
	mean, sd := MeanSD(pooled)
	lo, hi, err := HDI(pooled, hdiProb)
	if err != nil {
		return ParamSummary{}, errors.Wrapf(err, "Could not summarize %s", t.Name)
	}

	return ParamSummary{
		Param:   t.Name,
		Kind:    t.Kind,
		Index:   t.Index,
		Mean:    mean,
		SD:      sd,
		HDILow:  lo,
		HDIHigh: hi,
	}, nil
}

// MajorityVote returns, per item, 1 when more than half of the informants
// answered 1
func MajorityVote(x *model.Responses) []int {
	out := make([]int, x.M())
	for j := range out {
		out[j] = Decide(x.OnesFraction(j))
	}
	return out
}

// Agreement counts the positions where a and b hold the same answer
func Agreement(a, b []int) int {
	agree := 0
	for j := range a {
		if j < len(b) && a[j] == b[j] {
			agree++
		}
	}
	return agree
}

// Summarize pools every chain's draws and summarizes each parameter, each
// informant, and each item. Traces are only read, so calling it again on the
// same input gives the same summary.
func Summarize(traces []*sampler.Trace, x *model.Responses, hdiProb float64) (*Summary, error) {
	if x == nil {
		return nil, errors.New("Response matrix is required for the summary")
	}

	s := &Summary{
		HDIProb:    hdiProb,
		Params:     make([]ParamSummary, 0, len(traces)),
		Informants: make([]InformantSummary, x.N()),
		Items:      make([]ItemSummary, x.M()),
		TotalItems: x.M(),
	}

	seenD := make([]bool, x.N())
	seenZ := make([]bool, x.M())

	for _, t := range traces {
		ps, err := SummarizeTrace(t, hdiProb)
		if err != nil {
			return nil, err
		}
		s.Params = append(s.Params, ps)

		switch t.Kind {
		case sampler.Competence:
			if t.Index < 0 || t.Index >= x.N() {
				return nil, errors.Errorf("Trace %s does not match %d informants", t.Name, x.N())
			}
			s.Informants[t.Index] = InformantSummary{
				Informant:    x.Informants[t.Index],
				ParamSummary: ps,
			}
			seenD[t.Index] = true

		case sampler.Consensus:
			if t.Index < 0 || t.Index >= x.M() {
				return nil, errors.Errorf("Trace %s does not match %d items", t.Name, x.M())
			}
			frac := x.OnesFraction(t.Index)
			item := ItemSummary{
				Item:         x.Items[t.Index],
				Index:        t.Index,
				ProbOne:      ps.Mean,
				Consensus:    Decide(ps.Mean),
				OnesFraction: frac,
				Majority:     Decide(frac),
			}
			item.AgreesWithMajority = item.Consensus == item.Majority
			s.Items[t.Index] = item
			seenZ[t.Index] = true
		}
	}

	for i, ok := range seenD {
		if !ok {
			return nil, errors.Errorf("No draws for informant %d", i)
		}
	}
	for j, ok := range seenZ {
		if !ok {
			return nil, errors.Errorf("No draws for item %d", j)
		}
		if s.Items[j].AgreesWithMajority {
			s.Agreement++
		}
	}

	return s, nil
}

// Consensus returns the decided answer per item
func (s *Summary) Consensus() []int {
	out := make([]int, len(s.Items))
	for j, it := range s.Items {
		out[j] = it.Consensus
	}
	return out
}

// Competence returns the posterior mean competence per informant
func (s *Summary) Competence() []float64 {
	out := make([]float64, len(s.Informants))
	for i, inf := range s.Informants {
		out[i] = inf.Mean
	}
	return out
}
