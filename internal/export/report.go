package export

import (
	"os"
	"path/filepath"
	"time"

	"settlement-compare/internal/analysis"
	"settlement-compare/internal/model"
)

// Report bundles a comparison with its derived statistics for the
// spreadsheet and PDF exports.
type Report struct {
	Title       string
	Comparison  *model.Comparison
	Summary     analysis.Summary
	Largest     []model.ComparisonRow
	ChartPNG    []byte
	GeneratedAt time.Time
}

// NewReport computes the summary and the n largest deviations of c.
func NewReport(title string, c *model.Comparison, chart []byte, n int) Report {
	return Report{
		Title:       title,
		Comparison:  c,
		Summary:     analysis.Summarize(c),
		Largest:     analysis.LargestDeviations(c, n),
		ChartPNG:    chart,
		GeneratedAt: time.Now().UTC(),
	}
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
