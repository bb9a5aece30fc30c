package compare

import (
	"settlement-compare/internal/analysis"
	"settlement-compare/internal/model"
)

// Result is one finished comparison.
// Comparison.Rows is the primary artifact; Summary is derived from it.
type Result struct {
	Comparison *model.Comparison
	Summary    analysis.Summary
}
