package model

import (
	"math"

	"github.com/pkg/errors"
)

// RecoveryError represents the loss functions we use to judge how well a
// fitted model recovered a known truth. Competence errors are over the
// informants, consensus errors over the items.
type RecoveryError struct {
	MeanAbsError      float64 // Mean |estimated D_i - true D_i|
	MaxAbsError       float64 // Max |estimated D_i - true D_i|
	RMSError          float64 // Root mean squared competence error
	ConsensusMatches  int     // Items where the estimated Z_j equals the true Z_j
	ConsensusMismatch []int   // Indexes of the items that do not match
}

// NewRecoveryError compares estimated competence and consensus against t
func NewRecoveryError(t *Truth, competence []float64, consensus []int) (*RecoveryError, error) {
	if len(competence) != len(t.Competence) {
		return nil, errors.Errorf("Competence count mismatch %d != %d", len(competence), len(t.Competence))
	}
	if len(consensus) != len(t.Consensus) {
		return nil, errors.Errorf("Consensus count mismatch %d != %d", len(consensus), len(t.Consensus))
	}
	if len(competence) < 1 {
		return nil, errors.Errorf("No competences to score")
	}

	re := &RecoveryError{}

	var sq float64
	for i, est := range competence {
		d := math.Abs(est - t.Competence[i])
		re.MeanAbsError += d
		re.MaxAbsError = math.Max(d, re.MaxAbsError)
		sq += d * d
	}
	n := float64(len(competence))
	re.MeanAbsError /= n
	re.RMSError = math.Sqrt(sq / n)

	for j, est := range consensus {
		if est == t.Consensus[j] {
			re.ConsensusMatches++
		} else {
			re.ConsensusMismatch = append(re.ConsensusMismatch, j)
		}
	}

	return re, nil
}
