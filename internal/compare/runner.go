package compare

import (
	"context"
	"time"

	"settlement-compare/internal/config"
	"settlement-compare/internal/model"
	"settlement-compare/internal/plot"
	"settlement-compare/internal/series"
)

// Runner runs configured tasks end to end: fetch, compare, publish.
type Runner struct {
	Engine *Engine
	Config *config.Config

	now func() time.Time
}

func NewRunner(cfg *config.Config, src series.Source) *Runner {
	return &Runner{Engine: New(src), Config: cfg, now: time.Now}
}

// Today resolves the imbalance comparison date: an explicit date, then the
// configured one, then the current UTC date.
func (r *Runner) Today(date string) string {
	if date != "" {
		return date
	}
	if r.Config.Imbalance.Date != "" {
		return r.Config.Imbalance.Date
	}
	return r.now().UTC().Format(model.DateLayout)
}

// Imbalance compares today against ref (the configured reference date when
// empty) and publishes the result. updated and next feed the chart
// annotation.
func (r *Runner) Imbalance(ctx context.Context, ref, today string, updated, next time.Time) (*Result, Artifacts, error) {
	ic := r.Config.Imbalance
	if ref == "" {
		ref = ic.ReferenceDate
	}
	res, err := r.Engine.RunImbalance(ctx, ref, r.Today(today), ic.FillMissing)
	if err != nil {
		return nil, Artifacts{}, err
	}
	spec := plot.ImbalanceSpec(res.Comparison, ic.RefColor, ic.TodayColor, updated, next)
	a, err := Publish(res, r.outputs(ic.CSVFile, ic.ChartFile), spec)
	return res, a, err
}

// Generation runs the named generation task for date (the configured date
// when empty) and publishes the result.
func (r *Runner) Generation(ctx context.Context, name, date string) (*Result, Artifacts, error) {
	gc := r.Config.Generation
	task, err := gc.Task(name)
	if err != nil {
		return nil, Artifacts{}, err
	}
	filter, err := series.NewCategoryFilter(task.Filter)
	if err != nil {
		return nil, Artifacts{}, err
	}
	if date == "" {
		date = gc.Date
	}
	res, err := r.Engine.RunGeneration(ctx, date, GenerationJob{
		Task:   model.Task(task.Name),
		Label:  task.Label,
		Filter: filter,
	})
	if err != nil {
		return nil, Artifacts{}, err
	}
	spec := plot.GenerationSpec(res.Comparison, gc.Location(), task.ForecastColor, task.ActualColor)
	a, err := Publish(res, r.outputs(task.CSVFile, task.ChartFile), spec)
	return res, a, err
}

func (r *Runner) outputs(csvFile, chartFile string) Outputs {
	o := r.Config.Output
	out := Outputs{
		CSVPath: o.Path(csvFile),
		XLSX:    o.XLSX,
		PDF:     o.PDF,
	}
	if o.PNG {
		out.ChartPath = o.Path(chartFile)
	}
	return out
}
