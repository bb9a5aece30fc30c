package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"settlement-compare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func comparison(task model.Task, name string) *model.Comparison {
	c := &model.Comparison{
		Task:   task,
		Name:   name,
		LabelA: "A",
		LabelB: "B",
		DateA:  "2025-10-22",
		DateB:  "2025-11-13",
		Policy: model.StrictPositive,
	}
	for _, r := range []struct {
		p    model.SettlementPeriod
		a, b float64
	}{
		{1, 10.5, 12.25},
		{2, -3, -7.125},
		{48, 0.1, 0.3},
	} {
		d := r.b - r.a
		c.Rows = append(c.Rows, model.ComparisonRow{
			Period: r.p, A: r.a, B: r.b, Difference: d, Label: model.SignLabelFor(d, c.Policy),
		})
	}
	return c
}

func TestCSVRoundTrip(t *testing.T) {
	cases := []struct {
		task   model.Task
		name   string
		header []string
	}{
		{model.TaskImbalance, "Imbalance", []string{"SettlementPeriod", "Imbalance_Ref", "Imbalance_Today", "Delta"}},
		{model.TaskWind, "Wind", []string{"SettlementPeriod", "ForecastWind", "ActualWind", "Difference"}},
		{model.TaskSolar, "Solar", []string{"SettlementPeriod", "ForecastSolar", "ActualSolar", "Difference"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.task), func(t *testing.T) {
			c := comparison(tc.task, tc.name)
			path := filepath.Join(t.TempDir(), "nested", "out.csv")

			require.NoError(t, WriteComparisonCSV(path, c))
			header, rows, err := ReadComparisonCSV(path)
			require.NoError(t, err)

			assert.Equal(t, tc.header, header)
			require.Len(t, rows, len(c.Rows))
			for i, r := range rows {
				assert.Equal(t, c.Rows[i].Period, r.Period)
				assert.Equal(t, c.Rows[i].A, r.A)
				assert.Equal(t, c.Rows[i].B, r.B)
				assert.Equal(t, c.Rows[i].Difference, r.Difference)
			}
		})
	}
}

func TestCSVEmptyComparisonWritesHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeComparisonCSV(&buf, &model.Comparison{Task: model.TaskImbalance}))
	assert.Equal(t, "SettlementPeriod,Imbalance_Ref,Imbalance_Today,Delta\n", buf.String())
}

func TestCSVOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteComparisonCSV(path, comparison(model.TaskWind, "Wind")))
	require.NoError(t, WriteComparisonCSV(path, &model.Comparison{Task: model.TaskWind, Name: "Wind"}))

	_, rows, err := ReadComparisonCSV(path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBuildComparisonXLSX(t *testing.T) {
	c := comparison(model.TaskWind, "Wind")
	data, err := BuildComparisonXLSX(NewReport("Wind", c, nil, 2))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(dataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"SettlementPeriod", "ForecastWind", "ActualWind", "Difference", "Label"}, rows[0])
	assert.Equal(t, "48", rows[3][0])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Periods", "3"}, summary[5])
}

func TestBuildComparisonXLSXEmpty(t *testing.T) {
	_, err := BuildComparisonXLSX(NewReport("empty", &model.Comparison{Task: model.TaskSolar, Name: "Solar"}, nil, 5))
	require.NoError(t, err)
}

func TestWriteComparisonPDF(t *testing.T) {
	c := comparison(model.TaskImbalance, "Imbalance")
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, WriteComparisonPDF(path, NewReport("Imbalance — comparison", c, nil, 2)))

	data, err := BuildComparisonPDF(NewReport("Imbalance", c, nil, 2))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestBuildComparisonPDFWithChart(t *testing.T) {
	var png bytes.Buffer
	require.NoError(t, pngEncode(&png))

	data, err := BuildComparisonPDF(NewReport("Wind", comparison(model.TaskWind, "Wind"), png.Bytes(), 3))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
