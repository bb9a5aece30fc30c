package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"settlement-compare/internal/model"
)

// CSVHeader returns the column names for a comparison:
// imbalance writes Imbalance_Ref/Imbalance_Today/Delta, generation writes
// Forecast<Name>/Actual<Name>/Difference.
func CSVHeader(c *model.Comparison) []string {
	if c.Task == model.TaskImbalance {
		return []string{"SettlementPeriod", "Imbalance_Ref", "Imbalance_Today", "Delta"}
	}
	return []string{"SettlementPeriod", "Forecast" + c.Name, "Actual" + c.Name, "Difference"}
}

// WriteComparisonCSV overwrites path with a header row and one row per period.
func WriteComparisonCSV(path string, c *model.Comparison) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return EncodeComparisonCSV(f, c)
}

func EncodeComparisonCSV(out io.Writer, c *model.Comparison) error {
	w := csv.NewWriter(out)

	if err := w.Write(CSVHeader(c)); err != nil {
		return err
	}
	for _, r := range c.Rows {
		row := []string{
			strconv.Itoa(int(r.Period)),
			fmtFloat(r.A),
			fmtFloat(r.B),
			fmtFloat(r.Difference),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// ReadComparisonCSV parses a file written by WriteComparisonCSV.
// Sign labels are not stored, so returned rows carry an empty Label.
func ReadComparisonCSV(path string) ([]string, []model.ComparisonRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", path)
	}

	rows := make([]model.ComparisonRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != 4 {
			return nil, nil, fmt.Errorf("%s line %d: expected 4 columns, got %d", path, i+2, len(rec))
		}
		p, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: period: %w", path, i+2, err)
		}
		var vals [3]float64
		for j := range vals {
			vals[j], err = strconv.ParseFloat(rec[j+1], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: column %d: %w", path, i+2, j+2, err)
			}
		}
		rows = append(rows, model.ComparisonRow{
			Period:     model.SettlementPeriod(p),
			A:          vals[0],
			B:          vals[1],
			Difference: vals[2],
		})
	}
	return records[0], rows, nil
}

// fmtFloat writes the shortest representation that parses back exactly.
func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
