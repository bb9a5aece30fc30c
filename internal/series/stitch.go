package series

import (
	"context"
	"fmt"

	"settlement-compare/internal/model"

	"golang.org/x/sync/errgroup"
)

const stitchBoundary model.SettlementPeriod = 46

// Stitcher builds the imbalance business day: periods 47-48 come from the
// previous calendar date, periods 1-46 from the requested date.
type Stitcher struct {
	Source Source
}

// LoadFullDay fetches both halves and averages records per period.
// The result only holds periods the source returned data for. Either fetch
// failing fails the whole call.
func (s *Stitcher) LoadFullDay(ctx context.Context, date string) (model.DaySeries, error) {
	prev, err := model.PreviousDate(date)
	if err != nil {
		return model.DaySeries{}, err
	}

	var prevRecs, dayRecs []model.RawRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := s.Source.IndicatedImbalance(gctx, prev, model.PeriodRange(stitchBoundary+1, model.LastPeriod))
		if err != nil {
			return fmt.Errorf("fetch %s periods 47-48: %w", prev, err)
		}
		prevRecs = keepPeriods(recs, stitchBoundary+1, model.LastPeriod)
		return nil
	})
	g.Go(func() error {
		recs, err := s.Source.IndicatedImbalance(gctx, date, model.PeriodRange(model.FirstPeriod, stitchBoundary))
		if err != nil {
			return fmt.Errorf("fetch %s periods 1-46: %w", date, err)
		}
		dayRecs = keepPeriods(recs, model.FirstPeriod, stitchBoundary)
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.DaySeries{}, err
	}

	all := make([]model.RawRecord, 0, len(prevRecs)+len(dayRecs))
	all = append(all, prevRecs...)
	all = append(all, dayRecs...)
	return model.Aggregate(date, all, model.Mean), nil
}

// keepPeriods drops records outside [from, to]. The upstream honours the
// period filter; this guards against sources that do not.
func keepPeriods(recs []model.RawRecord, from, to model.SettlementPeriod) []model.RawRecord {
	out := recs[:0:0]
	for _, r := range recs {
		if r.SettlementPeriod >= from && r.SettlementPeriod <= to {
			out = append(out, r)
		}
	}
	return out
}
