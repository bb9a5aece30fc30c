package analysis

import (
	"math"
	"sort"

	"settlement-compare/internal/model"
)

// Summary describes the difference column of a comparison.
type Summary struct {
	Task  model.Task
	Count int

	MinDiff  float64
	MaxDiff  float64
	MeanDiff float64
	P05Diff  float64
	P95Diff  float64

	// TotalA and TotalB sum each series over the compared periods.
	TotalA float64
	TotalB float64

	// AbsDiffTotal is the sum of |B - A|.
	AbsDiffTotal float64

	Green int
	Red   int
}

func Summarize(c *model.Comparison) Summary {
	s := Summary{}
	if c == nil {
		return s
	}
	s.Task = c.Task
	if len(c.Rows) == 0 {
		return s
	}
	s.Count = len(c.Rows)

	sum := 0.0
	minv := math.Inf(1)
	maxv := math.Inf(-1)
	vals := make([]float64, 0, len(c.Rows))
	for _, r := range c.Rows {
		d := r.Difference
		vals = append(vals, d)
		sum += d
		s.TotalA += r.A
		s.TotalB += r.B
		s.AbsDiffTotal += math.Abs(d)
		if d < minv {
			minv = d
		}
		if d > maxv {
			maxv = d
		}
		if r.Label == model.SignGreen {
			s.Green++
		} else {
			s.Red++
		}
	}
	sort.Float64s(vals)
	s.MinDiff = minv
	s.MaxDiff = maxv
	s.MeanDiff = sum / float64(len(vals))
	s.P05Diff = percentileSorted(vals, 0.05)
	s.P95Diff = percentileSorted(vals, 0.95)
	return s
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
