package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	dataSheet    = "data"
	summarySheet = "summary"
)

// BuildComparisonXLSX renders the comparison rows on a data sheet with a line
// chart of both series and a column chart of the difference, plus a summary
// sheet.
func BuildComparisonXLSX(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}

	c := r.Comparison
	header := CSVHeader(c)
	cells := make([]interface{}, 0, len(header)+1)
	for _, h := range header {
		cells = append(cells, h)
	}
	cells = append(cells, "Label")
	if err := f.SetSheetRow(dataSheet, "A1", &cells); err != nil {
		return nil, err
	}
	for i, row := range c.Rows {
		vals := []interface{}{int(row.Period), row.A, row.B, row.Difference, string(row.Label)}
		if err := f.SetSheetRow(dataSheet, fmt.Sprintf("A%d", i+2), &vals); err != nil {
			return nil, err
		}
	}

	if n := len(c.Rows); n > 0 {
		last := n + 1
		ref := func(col string) string { return fmt.Sprintf("%s!$%s$2:$%s$%d", dataSheet, col, col, last) }
		categories := ref("A")

		if err := f.AddChart(dataSheet, "G2", &excelize.Chart{
			Type: excelize.Line,
			Series: []excelize.ChartSeries{
				{Name: dataSheet + "!$B$1", Categories: categories, Values: ref("B")},
				{Name: dataSheet + "!$C$1", Categories: categories, Values: ref("C")},
			},
			Title: []excelize.RichTextRun{{Text: r.Title}},
		}); err != nil {
			return nil, fmt.Errorf("line chart: %w", err)
		}
		if err := f.AddChart(dataSheet, "G20", &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{
				{Name: dataSheet + "!$D$1", Categories: categories, Values: ref("D")},
			},
			Title: []excelize.RichTextRun{{Text: header[3]}},
		}); err != nil {
			return nil, fmt.Errorf("column chart: %w", err)
		}
	}

	s := r.Summary
	summary := [][]interface{}{
		{"Title", r.Title},
		{"Task", string(c.Task)},
		{c.LabelA, c.DateA},
		{c.LabelB, c.DateB},
		{"Generated", r.GeneratedAt.Format(time.RFC3339)},
		{"Periods", s.Count},
		{"Min difference", s.MinDiff},
		{"Max difference", s.MaxDiff},
		{"Mean difference", s.MeanDiff},
		{"P05 difference", s.P05Diff},
		{"P95 difference", s.P95Diff},
		{"Total " + c.LabelA, s.TotalA},
		{"Total " + c.LabelB, s.TotalB},
		{"Sum |difference|", s.AbsDiffTotal},
		{"Green periods", s.Green},
		{"Red periods", s.Red},
	}
	for i, vals := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &vals); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteComparisonXLSX renders the workbook to path.
func WriteComparisonXLSX(path string, r Report) error {
	data, err := BuildComparisonXLSX(r)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}
