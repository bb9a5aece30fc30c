package model

import "time"

// RawRecord is one upstream data point after decoding.
// HasValue is false when the upstream numeric field was missing or non-numeric.
type RawRecord struct {
	SettlementDate   string           `json:"settlement_date"`
	SettlementPeriod SettlementPeriod `json:"settlement_period"`
	Category         string           `json:"category,omitempty"` // psrType; empty for imbalance records
	Value            float64          `json:"value"`
	HasValue         bool             `json:"has_value"`
	StartTime        time.Time        `json:"start_time,omitempty"`
}

// Aggregation selects how records sharing a settlement period are combined.
type Aggregation int

const (
	Mean Aggregation = iota
	Sum
)

func (a Aggregation) String() string {
	switch a {
	case Mean:
		return "mean"
	case Sum:
		return "sum"
	default:
		return "unknown"
	}
}

// Aggregate groups records by settlement period.
// Records without a value contribute neither to the sum nor to the count; a
// period whose records all lack a value does not appear in the result.
func Aggregate(date string, records []RawRecord, agg Aggregation) DaySeries {
	sums := map[SettlementPeriod]float64{}
	counts := map[SettlementPeriod]int{}
	for _, r := range records {
		if !r.HasValue {
			continue
		}
		sums[r.SettlementPeriod] += r.Value
		counts[r.SettlementPeriod]++
	}

	out := NewDaySeries(date)
	for p, total := range sums {
		switch agg {
		case Mean:
			out.Values[p] = total / float64(counts[p])
		default:
			out.Values[p] = total
		}
	}
	return out
}

// Reindex returns a copy of s covering exactly periods 1..48. Missing periods
// take fill; periods outside 1..48 are dropped.
func Reindex(s DaySeries, fill float64) DaySeries {
	out := NewDaySeries(s.Date)
	for _, p := range AllPeriods() {
		if v, ok := s.Values[p]; ok {
			out.Values[p] = v
		} else {
			out.Values[p] = fill
		}
	}
	return out
}
