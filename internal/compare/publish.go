package compare

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"settlement-compare/internal/export"
	"settlement-compare/internal/observability/metrics"
	"settlement-compare/internal/plot"
)

// Outputs says where a result is written. CSVPath is required; the chart is
// always rendered in memory and written only when ChartPath is set.
type Outputs struct {
	CSVPath   string
	ChartPath string
	XLSX      bool
	PDF       bool
	// Largest is how many rows the PDF deviation table lists.
	Largest int
}

// Artifacts records what Publish wrote.
type Artifacts struct {
	CSV      string
	Chart    string
	XLSX     string
	PDF      string
	ChartPNG []byte
}

// Publish exports res to CSV, renders its chart and optionally writes the
// workbook and PDF next to the CSV. The first failing export aborts.
func Publish(res *Result, out Outputs, spec plot.ChartSpec) (Artifacts, error) {
	var a Artifacts
	c := res.Comparison

	err := export.WriteComparisonCSV(out.CSVPath, c)
	metrics.ObserveExport("csv", metrics.ResultFor(err))
	if err != nil {
		return a, fmt.Errorf("write csv: %w", err)
	}
	a.CSV = out.CSVPath
	log.Printf("[Export] wrote %s (%d rows)", out.CSVPath, len(c.Rows))

	var png []byte
	if out.ChartPath != "" {
		png, err = plot.WritePNG(out.ChartPath, c, spec)
		metrics.ObserveExport("png", metrics.ResultFor(err))
		if err != nil {
			return a, fmt.Errorf("write chart: %w", err)
		}
		a.Chart = out.ChartPath
		log.Printf("[Export] wrote %s", out.ChartPath)
	} else if png, err = plot.Render(c, spec); err != nil {
		return a, fmt.Errorf("render chart: %w", err)
	}
	a.ChartPNG = png

	if !out.XLSX && !out.PDF {
		return a, nil
	}

	n := out.Largest
	if n <= 0 {
		n = 5
	}
	title := spec.Title
	if title == "" {
		title = c.Name
	}
	report := export.NewReport(title, c, png, n)
	base := strings.TrimSuffix(out.CSVPath, filepath.Ext(out.CSVPath))

	if out.XLSX {
		path := base + ".xlsx"
		err := export.WriteComparisonXLSX(path, report)
		metrics.ObserveExport("xlsx", metrics.ResultFor(err))
		if err != nil {
			return a, fmt.Errorf("write xlsx: %w", err)
		}
		a.XLSX = path
		log.Printf("[Export] wrote %s", path)
	}
	if out.PDF {
		path := base + ".pdf"
		err := export.WriteComparisonPDF(path, report)
		metrics.ObserveExport("pdf", metrics.ResultFor(err))
		if err != nil {
			return a, fmt.Errorf("write pdf: %w", err)
		}
		a.PDF = path
		log.Printf("[Export] wrote %s", path)
	}
	return a, nil
}
