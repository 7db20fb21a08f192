// Package report renders summaries and diagnostics for people: tables,
// text density plots, and a CSV export of the pooled draws for external
// plotting. It only consumes derived output, never chain state.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"

	"github.com/CraigKelly/consensus/diagnostics"
	"github.com/CraigKelly/consensus/sampler"
	"github.com/CraigKelly/consensus/summary"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	poorStyle   = cellStyle.Foreground(lipgloss.Color("9"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Reporter writes human readable output
type Reporter struct {
	out io.Writer
	err error
}

// New creates a reporter writing to out
func New(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Err is the first write error seen, if any. Later writes are skipped.
func (r *Reporter) Err() error {
	return r.err
}

func (r *Reporter) printf(format string, args ...interface{}) {
	if r.err != nil {
		return
	}
	if _, err := fmt.Fprintf(r.out, format, args...); err != nil {
		r.err = errors.Wrap(err, "Could not write report")
	}
}

func (r *Reporter) title(s string) {
	r.printf("%s\n", titleStyle.Render(s))
}

func num(f float64, prec int) string {
	if math.IsNaN(f) {
		return "nan"
	}
	if math.IsInf(f, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.*f", prec, f)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// Parameters writes one row per parameter: mean, sd, HDI, R-hat, ESS. The
// diagnostics report may be nil.
func (r *Reporter) Parameters(s *summary.Summary, diag *diagnostics.Report) {
	r.title("Convergence diagnostics and posterior summaries")

	hdi := fmt.Sprintf("%.0f%%", s.HDIProb*100)
	t := newTable("param", "mean", "sd", "hdi "+hdi+" low", "hdi "+hdi+" high", "r_hat", "ess")

	poorRows := make(map[int]bool)
	for k, p := range s.Params {
		rhat, ess := math.NaN(), math.NaN()
		if diag != nil {
			if cs, ok := diag.Lookup(p.Param); ok {
				rhat, ess = cs.RHat, cs.ESS
				poorRows[k] = cs.Status == diagnostics.Poor
			}
		}
		t.Row(p.Param, num(p.Mean, 2), num(p.SD, 2), num(p.HDILow, 2), num(p.HDIHigh, 2), num(rhat, 2), num(ess, 0))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if col == 5 && poorRows[row] {
			return poorStyle
		}
		return cellStyle
	})

	r.printf("%s\n", t.String())
}

// Competence writes the posterior mean competence per informant
func (r *Reporter) Competence(s *summary.Summary) {
	r.title("Posterior mean competence (D) per informant")

	t := newTable("informant", "param", "mean", "sd")
	for _, inf := range s.Informants {
		t.Row(inf.Informant, inf.Param, num(inf.Mean, 2), num(inf.SD, 2))
	}
	r.printf("%s\n", t.String())
}

// Consensus writes P(Z_j = 1) and the decided answer per item
func (r *Reporter) Consensus(s *summary.Summary) {
	r.title("Posterior probability of consensus answer (Z = 1) per item")

	t := newTable("item", "P(Z=1)", "consensus")
	for _, it := range s.Items {
		t.Row(it.Item, num(it.ProbOne, 2), fmt.Sprintf("%d", it.Consensus))
	}
	r.printf("%s\n", t.String())
}

// Majority writes the raw majority vote next to the consensus answer
func (r *Reporter) Majority(s *summary.Summary) {
	r.title("Majority vote vs consensus per item")

	t := newTable("item", "fraction 1", "majority", "consensus", "match")
	for _, it := range s.Items {
		match := "yes"
		if !it.AgreesWithMajority {
			match = "NO"
		}
		t.Row(it.Item, num(it.OnesFraction, 2), fmt.Sprintf("%d", it.Majority), fmt.Sprintf("%d", it.Consensus), match)
	}
	r.printf("%s\n", t.String())
	r.printf("Consensus matches the majority vote on %d/%d items\n", s.Agreement, s.TotalItems)
}

// Warnings writes the diagnostic warnings, or a single line saying there
// are none
func (r *Reporter) Warnings(diag *diagnostics.Report) {
	if diag == nil {
		return
	}
	r.title("Diagnostics")
	if len(diag.Warnings) < 1 {
		r.printf("All %d parameters have R-hat <= %.2f\n", len(diag.Stats), diagnostics.AcceptableRHat)
		return
	}
	for _, w := range diag.Warnings {
		r.printf("%s\n", warnStyle.Render("WARNING: "+w))
	}
}

// Full writes every section
func (r *Reporter) Full(s *summary.Summary, diag *diagnostics.Report, traces []*sampler.Trace, plot bool, bins int) error {
	r.Parameters(s, diag)
	r.Competence(s)
	r.Consensus(s)
	r.Majority(s)
	if plot {
		r.Plots(traces, s, bins)
	}
	r.Warnings(diag)
	return r.Err()
}
