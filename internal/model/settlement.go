package model

import (
	"fmt"
	"sort"
	"time"
)

// SettlementPeriod identifies a half-hour slot within a trading day (1..48).
// Clock-change days (46 or 50 periods) are not modelled.
type SettlementPeriod int

const (
	FirstPeriod    SettlementPeriod = 1
	LastPeriod     SettlementPeriod = 48
	PeriodsPerDay                   = 48
	PeriodDuration                  = 30 * time.Minute

	// DateLayout is the upstream settlementDate format.
	DateLayout = "2006-01-02"
)

func (p SettlementPeriod) Valid() bool {
	return p >= FirstPeriod && p <= LastPeriod
}

// StartOffset is the offset of the period start from the start of its day.
func (p SettlementPeriod) StartOffset() time.Duration {
	return time.Duration(int(p)-1) * PeriodDuration
}

// PeriodAt returns the settlement period containing the wall-clock time of t
// in t's own location.
func PeriodAt(t time.Time) SettlementPeriod {
	mins := t.Hour()*60 + t.Minute()
	return SettlementPeriod(mins/30 + 1)
}

// PeriodRange returns [from, to] inclusive. An inverted range is empty.
func PeriodRange(from, to SettlementPeriod) []SettlementPeriod {
	if to < from {
		return nil
	}
	out := make([]SettlementPeriod, 0, int(to-from)+1)
	for p := from; p <= to; p++ {
		out = append(out, p)
	}
	return out
}

// AllPeriods returns 1..48.
func AllPeriods() []SettlementPeriod {
	return PeriodRange(FirstPeriod, LastPeriod)
}

// ParseDate parses a YYYY-MM-DD settlement date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

// PreviousDate returns the calendar day before s.
func PreviousDate(s string) (string, error) {
	d, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, -1).Format(DateLayout), nil
}

// DaySeries maps settlement periods to an aggregated value for one logical day.
// Periods with no upstream data are simply absent unless the series was reindexed.
type DaySeries struct {
	Date   string
	Values map[SettlementPeriod]float64
}

func NewDaySeries(date string) DaySeries {
	return DaySeries{Date: date, Values: map[SettlementPeriod]float64{}}
}

func (s DaySeries) Get(p SettlementPeriod) (float64, bool) {
	v, ok := s.Values[p]
	return v, ok
}

func (s DaySeries) Len() int { return len(s.Values) }

// Periods returns the populated periods in ascending order.
func (s DaySeries) Periods() []SettlementPeriod {
	out := make([]SettlementPeriod, 0, len(s.Values))
	for p := range s.Values {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Complete reports whether every period 1..48 is present.
func (s DaySeries) Complete() bool {
	for _, p := range AllPeriods() {
		if _, ok := s.Values[p]; !ok {
			return false
		}
	}
	return true
}
