package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/CraigKelly/consensus/model"
	"github.com/CraigKelly/consensus/sampler"
	"github.com/CraigKelly/consensus/summary"
)

var sparks = []rune("▁▂▃▄▅▆▇█")

// Histogram counts draws into bins equal width bins over [lo, hi]. Values
// outside the range are dropped and hi itself lands in the last bin.
func Histogram(draws []float64, lo, hi float64, bins int) []int {
	counts := make([]int, bins)
	if bins < 1 || hi <= lo {
		return counts
	}
	w := (hi - lo) / float64(bins)
	for _, x := range draws {
		if x < lo || x > hi {
			continue
		}
		b := int((x - lo) / w)
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}
	return counts
}

// Sparkline draws one block character per count, scaled to the largest
func Sparkline(counts []int) string {
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}

	var sb strings.Builder
	for _, c := range counts {
		if max == 0 || c == 0 {
			sb.WriteRune(' ')
			continue
		}
		idx := int(math.Ceil(float64(c)/float64(max)*float64(len(sparks)))) - 1
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(sparks[idx])
	}
	return sb.String()
}

// hdiMarks puts [ and ] under the bins holding the HDI ends
func hdiMarks(lo, hi, hdiLow, hdiHigh float64, bins int) string {
	if bins < 1 || hi <= lo || math.IsNaN(hdiLow) || math.IsNaN(hdiHigh) {
		return ""
	}
	w := (hi - lo) / float64(bins)
	pos := func(x float64) int {
		b := int((x - lo) / w)
		if b < 0 {
			return 0
		}
		if b >= bins {
			return bins - 1
		}
		return b
	}

	l, h := pos(hdiLow), pos(hdiHigh)
	marks := []rune(strings.Repeat(" ", bins))
	for b := l; b <= h; b++ {
		marks[b] = '─'
	}
	marks[l] = '['
	marks[h] = ']'
	if l == h {
		marks[l] = '|'
	}
	return string(marks)
}

// Plots writes a text density plot per parameter with its HDI marked
// underneath. Competence is binned over [0.5, 1], consensus over {0, 1}.
func (r *Reporter) Plots(traces []*sampler.Trace, s *summary.Summary, bins int) {
	r.title(fmt.Sprintf("Posterior distributions (%.0f%% HDI marked)", s.HDIProb*100))

	params := make(map[string]summary.ParamSummary, len(s.Params))
	for _, p := range s.Params {
		params[p.Param] = p
	}

	for _, t := range traces {
		p, ok := params[t.Name]
		if !ok {
			continue
		}

		lo, hi, nb := model.MinCompetence, model.MaxCompetence, bins
		if t.Kind == sampler.Consensus {
			lo, hi, nb = -0.5, 1.5, 2
		}

		counts := Histogram(t.Pooled(), lo, hi, nb)
		r.printf("%-8s %g |%s| %g  mean %s  HDI [%s, %s]\n",
			t.Name, lo, Sparkline(counts), hi, num(p.Mean, 2), num(p.HDILow, 2), num(p.HDIHigh, 2))

		pad := strings.Repeat(" ", 8+1+len(fmt.Sprintf("%g", lo))+2)
		r.printf("%s%s\n", pad, hdiMarks(lo, hi, p.HDILow, p.HDIHigh, nb))
	}
}
