package series

import (
	"context"
	"errors"
	"sync"
	"testing"

	"settlement-compare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource returns records from fixed per-date tables and records calls.
type stubSource struct {
	mu        sync.Mutex
	imbalance map[string][]model.RawRecord
	forecast  map[string][]model.RawRecord
	actual    map[string][]model.RawRecord
	failDate  string
	calls     []string
}

var errUpstream = errors.New("upstream 500")

func (s *stubSource) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubSource) IndicatedImbalance(_ context.Context, date string, periods []model.SettlementPeriod) ([]model.RawRecord, error) {
	s.record("imbalance:" + date)
	if date == s.failDate {
		return nil, errUpstream
	}
	return s.imbalance[date], nil
}

func (s *stubSource) GenerationForecast(_ context.Context, date string, _, _ model.SettlementPeriod) ([]model.RawRecord, error) {
	s.record("forecast:" + date)
	if date == s.failDate {
		return nil, errUpstream
	}
	return s.forecast[date], nil
}

func (s *stubSource) GenerationActual(_ context.Context, date string, _, _ model.SettlementPeriod) ([]model.RawRecord, error) {
	s.record("actual:" + date)
	return s.actual[date], nil
}

// sentinelDay returns one record per period 1..48 with value dateTag*1000+period.
func sentinelDay(date string, dateTag float64) []model.RawRecord {
	out := make([]model.RawRecord, 0, model.PeriodsPerDay)
	for _, p := range model.AllPeriods() {
		out = append(out, model.RawRecord{
			SettlementDate:   date,
			SettlementPeriod: p,
			Value:            dateTag*1000 + float64(p),
			HasValue:         true,
		})
	}
	return out
}

func TestStitcherSourcesPeriodsFromCorrectDates(t *testing.T) {
	src := &stubSource{imbalance: map[string][]model.RawRecord{
		"2025-11-11": sentinelDay("2025-11-11", 1),
		"2025-11-12": sentinelDay("2025-11-12", 2),
	}}
	st := &Stitcher{Source: src}

	day, err := st.LoadFullDay(context.Background(), "2025-11-12")
	require.NoError(t, err)
	require.Equal(t, model.PeriodsPerDay, day.Len())

	for _, p := range model.PeriodRange(1, 46) {
		assert.Equal(t, 2000+float64(p), day.Values[p], "period %d", p)
	}
	assert.Equal(t, 1047.0, day.Values[47])
	assert.Equal(t, 1048.0, day.Values[48])
	assert.ElementsMatch(t, []string{"imbalance:2025-11-11", "imbalance:2025-11-12"}, src.calls)
}

func TestStitcherAveragesAndKeepsGaps(t *testing.T) {
	src := &stubSource{imbalance: map[string][]model.RawRecord{
		"2025-01-01": {
			{SettlementPeriod: 1, Value: 10, HasValue: true},
			{SettlementPeriod: 1, Value: 30, HasValue: true},
			{SettlementPeriod: 2, HasValue: false},
		},
	}}
	day, err := (&Stitcher{Source: src}).LoadFullDay(context.Background(), "2025-01-01")
	require.NoError(t, err)

	assert.Equal(t, 1, day.Len(), "stitcher does not reindex")
	assert.Equal(t, 20.0, day.Values[1])
	assert.ElementsMatch(t, []string{"imbalance:2024-12-31", "imbalance:2025-01-01"}, src.calls)
}

func TestStitcherFailsOnAnyFetchError(t *testing.T) {
	src := &stubSource{
		imbalance: map[string][]model.RawRecord{"2025-11-12": sentinelDay("2025-11-12", 2)},
		failDate:  "2025-11-11",
	}
	_, err := (&Stitcher{Source: src}).LoadFullDay(context.Background(), "2025-11-12")
	require.Error(t, err)
	assert.ErrorIs(t, err, errUpstream)

	_, err = (&Stitcher{Source: src}).LoadFullDay(context.Background(), "not-a-date")
	assert.Error(t, err)
}

func TestCategoryFilterMatching(t *testing.T) {
	wind := MustCategoryFilter("WIND")
	solar := MustCategoryFilter("SOLAR|PV")

	assert.True(t, wind.Match("Wind Onshore"))
	assert.True(t, wind.Match("wind offshore"))
	assert.False(t, wind.Match("Hydro"))
	assert.False(t, wind.Match(""))

	assert.True(t, solar.Match("Solar"))
	assert.True(t, solar.Match("Rooftop PV"))
	assert.False(t, solar.Match("Hydro"))
	assert.False(t, solar.Match("Wind Onshore"))

	_, err := NewCategoryFilter("(")
	assert.Error(t, err)
	_, err = NewCategoryFilter("")
	assert.Error(t, err)
}

func TestAggregatorFiltersAndSums(t *testing.T) {
	day := "2025-11-12"
	var forecast []model.RawRecord
	for _, p := range model.AllPeriods() {
		forecast = append(forecast,
			model.RawRecord{SettlementDate: day, SettlementPeriod: p, Category: "Wind Onshore", Value: 100, HasValue: true},
			model.RawRecord{SettlementDate: day, SettlementPeriod: p, Category: "Solar", Value: 50, HasValue: true},
		)
	}
	forecast = append(forecast,
		model.RawRecord{SettlementDate: day, SettlementPeriod: 2, Category: "Wind Offshore", Value: 25, HasValue: true},
		model.RawRecord{SettlementDate: day, SettlementPeriod: 2, Category: "Wind Offshore", HasValue: false},
	)
	agg := &Aggregator{Source: &stubSource{forecast: map[string][]model.RawRecord{day: forecast}}}

	w, err := agg.Forecast(context.Background(), day, MustCategoryFilter("WIND"))
	require.NoError(t, err)
	assert.Equal(t, 100.0, w.Values[1])
	assert.Equal(t, 125.0, w.Values[2])

	s, err := agg.Forecast(context.Background(), day, MustCategoryFilter("SOLAR|PV"))
	require.NoError(t, err)
	assert.Equal(t, 50.0, s.Values[1])
}

func TestAggregatorEmptyUpstreamYieldsZeros(t *testing.T) {
	agg := &Aggregator{Source: &stubSource{}}
	forecast, actual, err := agg.Build(context.Background(), "2025-11-12", MustCategoryFilter("WIND"))
	require.NoError(t, err)

	for _, s := range []model.DaySeries{forecast, actual} {
		require.Equal(t, model.PeriodsPerDay, s.Len())
		for _, p := range model.AllPeriods() {
			assert.Equal(t, 0.0, s.Values[p])
		}
	}
	for _, r := range model.Compare(forecast, actual, model.NonNegative) {
		assert.Equal(t, 0.0, r.Difference)
	}
}

func TestAggregatorReindexIsComplete(t *testing.T) {
	src := &stubSource{actual: map[string][]model.RawRecord{
		"2025-11-12": {{SettlementPeriod: 10, Category: "Solar", Value: 3, HasValue: true}},
	}}
	s, err := (&Aggregator{Source: src}).Actual(context.Background(), "2025-11-12", MustCategoryFilter("SOLAR|PV"))
	require.NoError(t, err)
	assert.True(t, s.Complete())
	assert.Equal(t, 3.0, s.Values[10])
	assert.Equal(t, 0.0, s.Values[11])
}

func TestAggregatorBuildPropagatesError(t *testing.T) {
	src := &stubSource{failDate: "2025-11-12"}
	_, _, err := (&Aggregator{Source: src}).Build(context.Background(), "2025-11-12", MustCategoryFilter("WIND"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errUpstream)

	_, err = (&Aggregator{Source: src}).Forecast(context.Background(), "2025-11-12", nil)
	assert.Error(t, err)
}
