package model

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CSVReader reads a response table: a header row, then one row per
// informant. The first column is the informant identifier and every other
// column is a 0/1 answer to one item.
type CSVReader struct {
	Comma rune // Field delimiter, defaults to ','
}

// ReadResponses implements the model.Reader interface
func (r CSVReader) ReadResponses(data []byte) (*Responses, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	if r.Comma != 0 {
		cr.Comma = r.Comma
	}
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Wrap(ErrInvalidData, "empty input")
	}
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidData, "bad header: %v", err)
	}
	if len(header) < 2 {
		return nil, errors.Wrapf(ErrInvalidData, "header has %d columns, need an id column and at least one item", len(header))
	}

	items := make([]string, len(header)-1)
	for j, h := range header[1:] {
		items[j] = strings.TrimSpace(h)
	}

	var rows [][]int
	var ids []string
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Includes csv.ErrFieldCount for ragged rows
			return nil, errors.Wrapf(ErrInvalidData, "line %d: %v", line, err)
		}

		row := make([]int, len(rec)-1)
		for j, field := range rec[1:] {
			v, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil || (v != 0 && v != 1) {
				return nil, errors.Wrapf(ErrInvalidData, "line %d item %s: %q is not 0 or 1", line, items[j], field)
			}
			row[j] = v
		}

		ids = append(ids, strings.TrimSpace(rec[0]))
		rows = append(rows, row)
	}

	if len(rows) < 1 {
		return nil, errors.Wrap(ErrInvalidData, "no informant rows found")
	}

	return NewResponses(rows, ids, items)
}

// WriteCSV writes the response matrix in the format CSVReader reads
func WriteCSV(w io.Writer, x *Responses) error {
	cw := csv.NewWriter(w)

	header := append([]string{"Informant"}, x.Items...)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "Could not write header")
	}

	rec := make([]string, x.M()+1)
	for i := 0; i < x.N(); i++ {
		rec[0] = x.Informants[i]
		for j := 0; j < x.M(); j++ {
			rec[j+1] = strconv.Itoa(x.At(i, j))
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "Could not write row %d", i)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "Could not flush responses")
}
