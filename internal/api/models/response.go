package models

import "time"

// ComparisonResponse is the latest published comparison.
type ComparisonResponse struct {
	CycleID     string    `json:"cycle_id"`
	Task        string    `json:"task"`
	Name        string    `json:"name"`
	LabelA      string    `json:"label_a"`
	LabelB      string    `json:"label_b"`
	DateA       string    `json:"date_a"`
	DateB       string    `json:"date_b"`
	Policy      string    `json:"sign_policy"`
	UpdatedAt   time.Time `json:"updated_at"`
	NextRefresh time.Time `json:"next_refresh"`
	Rows        []Row     `json:"rows"`
}

// Row is one settlement period of a comparison.
type Row struct {
	Period     int     `json:"settlement_period"`
	A          float64 `json:"a"`
	B          float64 `json:"b"`
	Difference float64 `json:"difference"`
	Label      string  `json:"label"` // "green" or "red"
}

// SummaryResponse carries summary statistics of the latest comparison.
type SummaryResponse struct {
	CycleID      string    `json:"cycle_id"`
	Task         string    `json:"task"`
	UpdatedAt    time.Time `json:"updated_at"`
	Count        int       `json:"count"`
	MinDiff      float64   `json:"min_difference"`
	MaxDiff      float64   `json:"max_difference"`
	MeanDiff     float64   `json:"mean_difference"`
	P05Diff      float64   `json:"p05_difference"`
	P95Diff      float64   `json:"p95_difference"`
	TotalA       float64   `json:"total_a"`
	TotalB       float64   `json:"total_b"`
	AbsDiffTotal float64   `json:"abs_difference_total"`
	Green        int       `json:"green"`
	Red          int       `json:"red"`
	Largest      []Row     `json:"largest_deviations,omitempty"`
}

// HealthResponse reports liveness and display state.
type HealthResponse struct {
	Status     string     `json:"status"`
	Closed     bool       `json:"closed"`
	LastUpdate *time.Time `json:"last_update,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
