package diagnostics

import (
	"fmt"
	"math"

	"github.com/CraigKelly/consensus/sampler"
)

// R-hat classification thresholds
const (
	GoodRHat       = 1.01
	AcceptableRHat = 1.1
)

// MinESSPerChain is the effective sample size per chain below which a
// parameter is flagged
const MinESSPerChain = 100

// Status classifies one parameter's R-hat
type Status int

// Status values
const (
	Undefined  Status = iota // R-hat could not be computed (e.g. one chain)
	Good                     // R-hat <= 1.01
	Acceptable               // 1.01 < R-hat <= 1.1
	Poor                     // R-hat > 1.1
)

func (s Status) String() string {
	switch s {
	case Good:
		return "good"
	case Acceptable:
		return "acceptable"
	case Poor:
		return "poor"
	}
	return "undefined"
}

// Classify maps an R-hat value to a Status
func Classify(rhat float64) Status {
	switch {
	case math.IsNaN(rhat):
		return Undefined
	case rhat <= GoodRHat:
		return Good
	case rhat <= AcceptableRHat:
		return Acceptable
	}
	return Poor
}

// ConvergenceStat is the convergence record for one scalar parameter
type ConvergenceStat struct {
	Param  string
	Kind   sampler.ParamKind
	Index  int
	RHat   float64
	ESS    float64
	Status Status
}

// Report is the convergence report for a whole run. It is derived from the
// traces on demand and never updated in place.
type Report struct {
	Chains   int
	Draws    int
	Stats    []ConvergenceStat
	Warnings []string
}

// NewReport computes R-hat and ESS for every trace and collects warnings.
// Chain stats are optional and only used for mixing warnings.
func NewReport(traces []*sampler.Trace, chainStats []sampler.ChainStats) *Report {
	r := &Report{
		Stats: make([]ConvergenceStat, 0, len(traces)),
	}
	if len(traces) > 0 {
		r.Chains = len(traces[0].Chains)
		if r.Chains > 0 {
			r.Draws = len(traces[0].Chains[0])
		}
	}

	poor := 0
	lowESS := 0
	for _, t := range traces {
		rhat := RHat(t.Chains)
		st := ConvergenceStat{
			Param:  t.Name,
			Kind:   t.Kind,
			Index:  t.Index,
			RHat:   rhat,
			ESS:    EffectiveSize(t.Chains),
			Status: Classify(rhat),
		}
		r.Stats = append(r.Stats, st)

		if st.Status == Poor {
			poor++
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"R-hat for %s is %.3f (> %.2f): chains have not mixed", st.Param, st.RHat, AcceptableRHat))
		}
		if !math.IsNaN(st.ESS) && st.ESS < float64(MinESSPerChain*r.Chains) {
			lowESS++
		}
	}

	if r.Chains == 1 {
		r.Warnings = append(r.Warnings, "R-hat is undefined with a single chain: run at least 2 chains to check convergence")
	}
	if lowESS > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"%d parameter(s) have an effective sample size below %d per chain", lowESS, MinESSPerChain))
	}

	for _, cs := range chainStats {
		if cs.DegenerateTune {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"chain %d acceptance rate was %.2f throughout tuning: poor mixing likely", cs.Chain, cs.TuneAccept))
		}
	}

	return r
}

// Lookup returns the stat for the named parameter
func (r *Report) Lookup(param string) (ConvergenceStat, bool) {
	for _, s := range r.Stats {
		if s.Param == param {
			return s, true
		}
	}
	return ConvergenceStat{}, false
}

// Poor returns every parameter classified Poor
func (r *Report) Poor() []ConvergenceStat {
	var out []ConvergenceStat
	for _, s := range r.Stats {
		if s.Status == Poor {
			out = append(out, s)
		}
	}
	return out
}

// MaxRHat is the largest defined R-hat (NaN if none is defined)
func (r *Report) MaxRHat() float64 {
	max := math.NaN()
	for _, s := range r.Stats {
		if math.IsNaN(s.RHat) {
			continue
		}
		if math.IsNaN(max) || s.RHat > max {
			max = s.RHat
		}
	}
	return max
}

// Converged is true when every parameter has a defined R-hat no worse than
// Acceptable
func (r *Report) Converged() bool {
	if len(r.Stats) < 1 {
		return false
	}
	for _, s := range r.Stats {
		if s.Status == Undefined || s.Status == Poor {
			return false
		}
	}
	return true
}
