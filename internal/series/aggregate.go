package series

import (
	"context"
	"fmt"
	"regexp"

	"settlement-compare/internal/model"

	"golang.org/x/sync/errgroup"
)

// CategoryFilter matches psrType labels by case-insensitive regular expression,
// so "WIND" matches "Wind Onshore" and "SOLAR|PV" matches "Solar".
type CategoryFilter struct {
	pattern string
	re      *regexp.Regexp
}

func NewCategoryFilter(pattern string) (*CategoryFilter, error) {
	if pattern == "" {
		return nil, fmt.Errorf("category filter is empty")
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid category filter %q: %w", pattern, err)
	}
	return &CategoryFilter{pattern: pattern, re: re}, nil
}

func MustCategoryFilter(pattern string) *CategoryFilter {
	f, err := NewCategoryFilter(pattern)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *CategoryFilter) String() string { return f.pattern }

// Match reports whether label contains the pattern. Empty labels never match.
func (f *CategoryFilter) Match(label string) bool {
	return label != "" && f.re.MatchString(label)
}

func (f *CategoryFilter) Apply(recs []model.RawRecord) []model.RawRecord {
	out := make([]model.RawRecord, 0, len(recs))
	for _, r := range recs {
		if f.Match(r.Category) {
			out = append(out, r)
		}
	}
	return out
}

// Aggregator builds full-day generation series: one fetch for periods 1..48,
// category filter, sum per period, then reindex to 1..48 filling 0.
type Aggregator struct {
	Source Source
}

type fetchFunc func(ctx context.Context, date string, from, to model.SettlementPeriod) ([]model.RawRecord, error)

func (a *Aggregator) Forecast(ctx context.Context, date string, filter *CategoryFilter) (model.DaySeries, error) {
	return a.build(ctx, a.Source.GenerationForecast, date, filter)
}

func (a *Aggregator) Actual(ctx context.Context, date string, filter *CategoryFilter) (model.DaySeries, error) {
	return a.build(ctx, a.Source.GenerationActual, date, filter)
}

// Build returns the forecast and actual series for date. The two fetches run
// concurrently; either failing fails the call.
func (a *Aggregator) Build(ctx context.Context, date string, filter *CategoryFilter) (forecast, actual model.DaySeries, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var ferr error
		forecast, ferr = a.Forecast(gctx, date, filter)
		if ferr != nil {
			return fmt.Errorf("forecast: %w", ferr)
		}
		return nil
	})
	g.Go(func() error {
		var aerr error
		actual, aerr = a.Actual(gctx, date, filter)
		if aerr != nil {
			return fmt.Errorf("actual: %w", aerr)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.DaySeries{}, model.DaySeries{}, err
	}
	return forecast, actual, nil
}

func (a *Aggregator) build(ctx context.Context, fetch fetchFunc, date string, filter *CategoryFilter) (model.DaySeries, error) {
	if filter == nil {
		return model.DaySeries{}, fmt.Errorf("category filter is required")
	}
	if _, err := model.ParseDate(date); err != nil {
		return model.DaySeries{}, err
	}
	recs, err := fetch(ctx, date, model.FirstPeriod, model.LastPeriod)
	if err != nil {
		return model.DaySeries{}, err
	}
	summed := model.Aggregate(date, filter.Apply(recs), model.Sum)
	return model.Reindex(summed, 0), nil
}
