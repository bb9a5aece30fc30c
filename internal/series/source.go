package series

import (
	"context"

	"settlement-compare/internal/model"
)

// Source supplies raw upstream records. data.ElexonClient and data.FileSource
// implement it; tests use in-memory stubs.
type Source interface {
	IndicatedImbalance(ctx context.Context, date string, periods []model.SettlementPeriod) ([]model.RawRecord, error)
	GenerationForecast(ctx context.Context, date string, from, to model.SettlementPeriod) ([]model.RawRecord, error)
	GenerationActual(ctx context.Context, date string, from, to model.SettlementPeriod) ([]model.RawRecord, error)
}
