package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"settlement-compare/internal/model"
)

// BuildComparisonPDF renders a one-document report: summary block, the chart
// when present, the largest deviations and the full period table.
func BuildComparisonPDF(r Report) ([]byte, error) {
	c := r.Comparison
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(r.Title))
	pdf.Ln(10)

	s := r.Summary
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{
		fmt.Sprintf("%s: %s", c.LabelA, c.DateA),
		fmt.Sprintf("%s: %s", c.LabelB, c.DateB),
		fmt.Sprintf("Generated: %s", r.GeneratedAt.Format(time.RFC3339)),
		fmt.Sprintf("Periods compared: %d (green %d, red %d)", s.Count, s.Green, s.Red),
		fmt.Sprintf("Difference min / mean / max: %.3f / %.3f / %.3f", s.MinDiff, s.MeanDiff, s.MaxDiff),
		fmt.Sprintf("Difference P05 / P95: %.3f / %.3f", s.P05Diff, s.P95Diff),
		fmt.Sprintf("Totals: %.3f vs %.3f, sum |difference| %.3f", s.TotalA, s.TotalB, s.AbsDiffTotal),
	} {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(5)
	}
	pdf.Ln(3)

	if len(r.ChartPNG) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("chart", opts, bytes.NewReader(r.ChartPNG))
		pdf.ImageOptions("chart", 10, pdf.GetY(), 190, 0, true, opts, 0, "")
		pdf.Ln(4)
	}

	header := CSVHeader(c)
	table := func(title string, rows []rowCells) {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, title)
		pdf.Ln(7)
		for _, h := range header {
			pdf.CellFormat(40, 6, h, "1", 0, "C", false, 0, "")
		}
		pdf.CellFormat(20, 6, "Label", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, row := range rows {
			pdf.CellFormat(40, 6, row[0], "1", 0, "C", false, 0, "")
			for _, v := range row[1:4] {
				pdf.CellFormat(40, 6, v, "1", 0, "R", false, 0, "")
			}
			pdf.CellFormat(20, 6, row[4], "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	if len(r.Largest) > 0 {
		table("Largest deviations", cellsFor(r.Largest))
	}
	table("Settlement periods", cellsFor(c.Rows))

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteComparisonPDF renders the report to path.
func WriteComparisonPDF(path string, r Report) error {
	data, err := BuildComparisonPDF(r)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

type rowCells [5]string

func cellsFor(rows []model.ComparisonRow) []rowCells {
	out := make([]rowCells, len(rows))
	for i, r := range rows {
		out[i] = rowCells{
			fmt.Sprintf("%d", r.Period),
			fmt.Sprintf("%.3f", r.A),
			fmt.Sprintf("%.3f", r.B),
			fmt.Sprintf("%.3f", r.Difference),
			string(r.Label),
		}
	}
	return out
}
