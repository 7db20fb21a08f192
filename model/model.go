package model

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrInvalidData is the cause of every data validation failure. Use
// errors.Cause to check for it.
var ErrInvalidData = errors.New("invalid response data")

// Reader implementors instantiate a response matrix from a byte stream.
type Reader interface {
	ReadResponses(data []byte) (*Responses, error)
}

// Responses is the N x M binary response matrix: one row per informant, one
// column per item. It is immutable once created, so chains may share it.
type Responses struct {
	Name        string   // Data set name (file name without extension when read from a file)
	Informants  []string // Informant identifiers, len N
	Items       []string // Item names, len M
	data        [][]int
	onesPerItem []int
}

// NewResponses validates and copies the given rows. Informant and item names
// are generated when not supplied.
func NewResponses(rows [][]int, informants []string, items []string) (*Responses, error) {
	n := len(rows)
	if n < 1 {
		return nil, errors.Wrap(ErrInvalidData, "no informants found")
	}
	m := len(rows[0])
	if m < 1 {
		return nil, errors.Wrap(ErrInvalidData, "no items found")
	}

	if informants != nil && len(informants) != n {
		return nil, errors.Wrapf(ErrInvalidData, "%d informant names for %d rows", len(informants), n)
	}
	if items != nil && len(items) != m {
		return nil, errors.Wrapf(ErrInvalidData, "%d item names for %d columns", len(items), m)
	}

	r := &Responses{
		Informants:  make([]string, n),
		Items:       make([]string, m),
		data:        make([][]int, n),
		onesPerItem: make([]int, m),
	}

	for i, row := range rows {
		if len(row) != m {
			return nil, errors.Wrapf(ErrInvalidData, "row %d has %d items, expected %d", i, len(row), m)
		}
		r.data[i] = make([]int, m)
		for j, x := range row {
			if x != 0 && x != 1 {
				return nil, errors.Wrapf(ErrInvalidData, "row %d item %d has non-binary value %d", i, j, x)
			}
			r.data[i][j] = x
			r.onesPerItem[j] += x
		}
	}

	for i := range r.Informants {
		if informants != nil {
			r.Informants[i] = informants[i]
		} else {
			r.Informants[i] = InformantName(i)
		}
	}
	for j := range r.Items {
		if items != nil {
			r.Items[j] = items[j]
		} else {
			r.Items[j] = ItemName(j)
		}
	}

	return r, nil
}

// NewResponsesFromFile reads and validates the response matrix in filename.
func NewResponsesFromFile(r Reader, filename string) (*Responses, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ responses from %s", filename)
	}

	resp, err := NewResponsesFromBuffer(r, data)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not load %s", filename)
	}

	// Name the data set from the file
	var ext = filepath.Ext(filename)
	resp.Name = filepath.Base(filename[0 : len(filename)-len(ext)])

	return resp, nil
}

// NewResponsesFromBuffer creates a response matrix from the given pre-read data
func NewResponsesFromBuffer(r Reader, data []byte) (*Responses, error) {
	resp, err := r.ReadResponses(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not PARSE responses")
	}

	return resp, nil
}

// N is the number of informants
func (r *Responses) N() int {
	return len(r.data)
}

// M is the number of items
func (r *Responses) M() int {
	return len(r.onesPerItem)
}

// At returns informant i's answer to item j
func (r *Responses) At(i, j int) int {
	return r.data[i][j]
}

// Row returns a copy of informant i's answers
func (r *Responses) Row(i int) []int {
	row := make([]int, len(r.data[i]))
	copy(row, r.data[i])
	return row
}

// OnesFraction is the fraction of informants answering 1 on item j
func (r *Responses) OnesFraction(j int) float64 {
	return float64(r.onesPerItem[j]) / float64(r.N())
}

// CheckDims returns an error if D and Z do not fit this matrix.
func (r *Responses) CheckDims(d []float64, z []int) error {
	if len(d) != r.N() {
		return errors.Errorf("Competence vector has %d entries for %d informants", len(d), r.N())
	}
	if len(z) != r.M() {
		return errors.Errorf("Consensus vector has %d entries for %d items", len(z), r.M())
	}
	return nil
}
