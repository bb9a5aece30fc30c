package compare

import (
	"context"
	"fmt"
	"log"

	"settlement-compare/internal/analysis"
	"settlement-compare/internal/model"
	"settlement-compare/internal/series"

	"golang.org/x/sync/errgroup"
)

// GenerationJob names one forecast-vs-actual comparison.
type GenerationJob struct {
	Task   model.Task
	Label  string // "Wind"; used in headers and legends
	Filter *series.CategoryFilter
}

type Engine struct {
	stitcher   *series.Stitcher
	aggregator *series.Aggregator
}

func New(src series.Source) *Engine {
	return &Engine{
		stitcher:   &series.Stitcher{Source: src},
		aggregator: &series.Aggregator{Source: src},
	}
}

// RunImbalance compares the stitched imbalance day of today against ref.
// Both days are loaded concurrently; either failing fails the run.
func (e *Engine) RunImbalance(ctx context.Context, ref, today string, fillMissing bool) (*Result, error) {
	if _, err := model.ParseDate(ref); err != nil {
		return nil, fmt.Errorf("reference date: %w", err)
	}
	if _, err := model.ParseDate(today); err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	var refDay, todayDay model.DaySeries
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		refDay, err = e.stitcher.LoadFullDay(gctx, ref)
		if err != nil {
			return fmt.Errorf("reference %s: %w", ref, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		todayDay, err = e.stitcher.LoadFullDay(gctx, today)
		if err != nil {
			return fmt.Errorf("today %s: %w", today, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if fillMissing {
		log.Printf("[Compare] fill_missing enabled: reindexing imbalance to 1..48 with 0 (ref had %d periods, today %d)",
			refDay.Len(), todayDay.Len())
		refDay = model.Reindex(refDay, 0)
		todayDay = model.Reindex(todayDay, 0)
	}

	c := &model.Comparison{
		Task:   model.TaskImbalance,
		Name:   "Imbalance",
		LabelA: "Example " + ref,
		LabelB: "Today " + today,
		DateA:  ref,
		DateB:  today,
		Policy: model.StrictPositive,
		Rows:   model.Compare(refDay, todayDay, model.StrictPositive),
	}
	return newResult(c), nil
}

// RunGeneration compares forecast and actual generation for one category
// group on date.
func (e *Engine) RunGeneration(ctx context.Context, date string, job GenerationJob) (*Result, error) {
	if job.Filter == nil {
		return nil, fmt.Errorf("generation %s: category filter is nil", job.Task)
	}
	forecast, actual, err := e.aggregator.Build(ctx, date, job.Filter)
	if err != nil {
		return nil, fmt.Errorf("generation %s %s: %w", job.Task, date, err)
	}

	c := &model.Comparison{
		Task:   job.Task,
		Name:   job.Label,
		LabelA: "Forecast " + job.Label,
		LabelB: "Actual " + job.Label,
		DateA:  date,
		DateB:  date,
		Policy: model.NonNegative,
		Rows:   model.Compare(forecast, actual, model.NonNegative),
	}
	return newResult(c), nil
}

func newResult(c *model.Comparison) *Result {
	return &Result{Comparison: c, Summary: analysis.Summarize(c)}
}
