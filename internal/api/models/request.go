package models

// SummaryQuery holds query parameters for GET /api/v1/summary.
type SummaryQuery struct {
	Largest int `form:"largest" binding:"omitempty,min=0,max=48"` // number of largest deviations to include
}
