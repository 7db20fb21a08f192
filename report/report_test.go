package report

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CraigKelly/consensus/diagnostics"
	"github.com/CraigKelly/consensus/model"
	"github.com/CraigKelly/consensus/sampler"
	"github.com/CraigKelly/consensus/summary"
)

func testTraces() []*sampler.Trace {
	return []*sampler.Trace{
		{Name: "D[0]", Kind: sampler.Competence, Index: 0, Chains: [][]float64{{0.9, 0.8, 0.85}, {0.7, 0.95, 0.9}}},
		{Name: "Z[0]", Kind: sampler.Consensus, Index: 0, Chains: [][]float64{{1, 1, 1}, {1, 0, 1}}},
		{Name: "Z[1]", Kind: sampler.Consensus, Index: 1, Chains: [][]float64{{0, 0, 0}, {0, 0, 0}}},
	}
}

func testSummary(t *testing.T) (*summary.Summary, *diagnostics.Report, []*sampler.Trace) {
	x, err := model.NewResponses([][]int{{1, 1}}, []string{"ann"}, nil)
	require.NoError(t, err)

	traces := testTraces()
	s, err := summary.Summarize(traces, x, 0.95)
	require.NoError(t, err)

	return s, diagnostics.NewReport(traces, nil), traces
}

func TestFullReport(t *testing.T) {
	assert := assert.New(t)

	s, diag, traces := testSummary(t)

	var buf bytes.Buffer
	r := New(&buf)
	assert.NoError(r.Full(s, diag, traces, true, 10))

	out := buf.String()
	for _, exp := range []string{
		"Convergence diagnostics",
		"r_hat",
		"D[0]",
		"Z[1]",
		"ann",
		"P(Z=1)",
		"Majority vote",
		"Consensus matches the majority vote on 1/2 items",
		"HDI [",
		"Diagnostics",
	} {
		assert.True(strings.Contains(out, exp), "missing %q in\n%s", exp, out)
	}
}

func TestParametersWithoutDiagnostics(t *testing.T) {
	assert := assert.New(t)

	s, _, _ := testSummary(t)

	var buf bytes.Buffer
	r := New(&buf)
	r.Parameters(s, nil)
	r.Warnings(nil)
	assert.NoError(r.Err())
	assert.True(strings.Contains(buf.String(), "nan"))
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestReportWriteError(t *testing.T) {
	assert := assert.New(t)

	s, diag, traces := testSummary(t)
	r := New(failWriter{})
	err := r.Full(s, diag, traces, false, 10)
	assert.Error(err)
	assert.True(strings.Contains(err.Error(), "disk full"))
}

func TestNum(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("nan", num(math.NaN(), 2))
	assert.Equal("inf", num(math.Inf(1), 2))
	assert.Equal("1.23", num(1.2345, 2))
	assert.Equal("1235", num(1234.6, 0))
}

func TestHistogram(t *testing.T) {
	assert := assert.New(t)

	counts := Histogram([]float64{0.5, 0.6, 0.74, 0.76, 1.0, 1.2, 0.4}, 0.5, 1.0, 2)
	assert.Equal([]int{3, 2}, counts)

	assert.Equal([]int{0, 0}, Histogram([]float64{0.7}, 1.0, 0.5, 2))
	assert.Empty(Histogram([]float64{0.7}, 0.5, 1.0, 0))
}

func TestSparkline(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("  ", Sparkline([]int{0, 0}))
	assert.Equal("█ ▄", Sparkline([]int{8, 0, 4}))
	assert.Equal("▁█", Sparkline([]int{1, 100}))
}

func TestHDIMarks(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(" [──] ", hdiMarks(0, 6, 1.5, 4.5, 6))
	assert.Equal("|     ", hdiMarks(0, 6, 0.1, 0.2, 6))
	assert.Equal("[────]", hdiMarks(0, 6, -1, 9, 6))
	assert.Equal("", hdiMarks(0, 6, math.NaN(), 1, 6))
}

func TestWriteTraceCSV(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	assert.NoError(WriteTraceCSV(&buf, testTraces()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(lines, 7)
	assert.Equal("chain,draw,D[0],Z[0],Z[1]", lines[0])
	assert.Equal("0,0,0.900000,1,0", lines[1])
	assert.Equal("1,1,0.950000,0,0", lines[5])

	assert.Error(WriteTraceCSV(&buf, nil))
}
