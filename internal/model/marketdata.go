package model

// Task names a comparison call site.
type Task string

const (
	TaskImbalance Task = "imbalance"
	TaskWind      Task = "wind"
	TaskSolar     Task = "solar"
)

// ComparisonRow is one settlement period of a comparison.
type ComparisonRow struct {
	Period     SettlementPeriod
	A          float64 // reference / forecast
	B          float64 // today / actual
	Difference float64 // B - A
	Label      SignLabel
}

// Comparison holds two aligned day series and their pointwise difference.
//
// For imbalance, A is the reference day and B is today.
// For generation, A is the forecast and B is the actual.
type Comparison struct {
	Task   Task
	Name   string // series name used in headers, e.g. "Wind"
	LabelA string
	LabelB string
	DateA  string
	DateB  string
	Policy SignPolicy
	Rows   []ComparisonRow
}

// Compare aligns a and b by settlement period and computes b - a.
// Only periods present in both series produce a row; rows are ordered by period.
func Compare(a, b DaySeries, policy SignPolicy) []ComparisonRow {
	rows := make([]ComparisonRow, 0, PeriodsPerDay)
	for _, p := range a.Periods() {
		bv, ok := b.Values[p]
		if !ok {
			continue
		}
		av := a.Values[p]
		d := bv - av
		rows = append(rows, ComparisonRow{
			Period:     p,
			A:          av,
			B:          bv,
			Difference: d,
			Label:      SignLabelFor(d, policy),
		})
	}
	return rows
}

// Differences returns the difference column in row order.
func (c *Comparison) Differences() []float64 {
	out := make([]float64, len(c.Rows))
	for i, r := range c.Rows {
		out[i] = r.Difference
	}
	return out
}
