package report

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/CraigKelly/consensus/sampler"
)

// WriteTraceCSV writes every draw as one row: chain, draw, then one column
// per parameter. This is the long-form input plotting tools expect.
func WriteTraceCSV(w io.Writer, traces []*sampler.Trace) error {
	if len(traces) < 1 {
		return errors.Errorf("No traces to write")
	}

	cw := csv.NewWriter(w)

	header := make([]string, 0, len(traces)+2)
	header = append(header, "chain", "draw")
	for _, t := range traces {
		header = append(header, t.Name)
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "Could not write trace header")
	}

	chains := len(traces[0].Chains)
	rec := make([]string, len(header))
	for k := 0; k < chains; k++ {
		draws := len(traces[0].Chains[k])
		for d := 0; d < draws; d++ {
			rec[0] = strconv.Itoa(k)
			rec[1] = strconv.Itoa(d)
			for p, t := range traces {
				if t.Kind == sampler.Consensus {
					rec[p+2] = strconv.Itoa(int(t.Chains[k][d]))
				} else {
					rec[p+2] = strconv.FormatFloat(t.Chains[k][d], 'f', 6, 64)
				}
			}
			if err := cw.Write(rec); err != nil {
				return errors.Wrapf(err, "Could not write chain %d draw %d", k, d)
			}
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "Could not flush trace")
}

// WriteTraceFile writes the trace CSV to filename
func WriteTraceFile(filename string, traces []*sampler.Trace) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "Could not create trace file %s", filename)
	}

	werr := WriteTraceCSV(f, traces)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return errors.Wrapf(cerr, "Could not close trace file %s", filename)
}
