package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoveryError(t *testing.T) {
	assert := assert.New(t)

	truth := &Truth{
		Competence: []float64{0.9, 0.6},
		Consensus:  []int{1, 0, 1},
	}

	re, err := NewRecoveryError(truth, []float64{0.8, 0.65}, []int{1, 1, 1})
	assert.NoError(err)
	assert.InDelta(0.075, re.MeanAbsError, 1e-12)
	assert.InDelta(0.1, re.MaxAbsError, 1e-12)
	assert.InDelta(math.Sqrt((0.01+0.0025)/2), re.RMSError, 1e-12)
	assert.Equal(2, re.ConsensusMatches)
	assert.Equal([]int{1}, re.ConsensusMismatch)

	_, err = NewRecoveryError(truth, []float64{0.8}, []int{1, 1, 1})
	assert.Error(err)
	_, err = NewRecoveryError(truth, []float64{0.8, 0.7}, []int{1})
	assert.Error(err)
	_, err = NewRecoveryError(&Truth{}, nil, nil)
	assert.Error(err)
}
