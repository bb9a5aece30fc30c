package analysis

import (
	"math"
	"sort"

	"settlement-compare/internal/model"
)

// LargestDeviations returns up to n rows sorted by |difference| descending.
// Ties keep period order. n <= 0 returns all rows.
func LargestDeviations(c *model.Comparison, n int) []model.ComparisonRow {
	if c == nil {
		return nil
	}
	out := make([]model.ComparisonRow, len(c.Rows))
	copy(out, c.Rows)
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Difference) > math.Abs(out[j].Difference)
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
