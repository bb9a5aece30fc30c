package handlers

import (
	"html/template"
	"net/http"
	"time"

	"settlement-compare/internal/analysis"
	"settlement-compare/internal/api/models"
	"settlement-compare/internal/dashboard"
	"settlement-compare/internal/model"

	"github.com/gin-gonic/gin"
)

// ComparisonHandler serves the latest snapshot of a Display.
type ComparisonHandler struct {
	display *dashboard.Display
	// RefreshSeconds is the page auto-refresh period.
	RefreshSeconds int
}

// NewComparisonHandler creates a new comparison handler
func NewComparisonHandler(d *dashboard.Display) *ComparisonHandler {
	return &ComparisonHandler{display: d, RefreshSeconds: 60}
}

// PageTemplate renders GET /.
var PageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.Refresh}}">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Ready}}
<p>Last update: {{.UpdatedAt}} &middot; Next refresh: {{.NextRefresh}} &middot; cycle {{.CycleID}}</p>
<img src="/chart.png?cycle={{.CycleID}}" alt="comparison chart" style="max-width:100%">
<p>{{.LabelA}} vs {{.LabelB}}: {{.Count}} periods, {{.Green}} green, {{.Red}} red, mean difference {{printf "%.2f" .MeanDiff}}</p>
{{else}}
<p>Waiting for the first update.</p>
{{end}}
</body>
</html>`))

type pageData struct {
	Title       string
	Refresh     int
	Ready       bool
	CycleID     string
	UpdatedAt   string
	NextRefresh string
	LabelA      string
	LabelB      string
	Count       int
	Green       int
	Red         int
	MeanDiff    float64
}

// Page handles GET /
func (h *ComparisonHandler) Page(c *gin.Context) {
	data := pageData{Title: "Settlement comparison", Refresh: h.RefreshSeconds}
	if s, ok := h.display.Snapshot(); ok {
		cmp := s.Result.Comparison
		data.Ready = true
		data.CycleID = s.CycleID
		data.UpdatedAt = s.UpdatedAt.UTC().Format("15:04:05 UTC")
		data.NextRefresh = s.NextRefresh.UTC().Format("15:04 UTC")
		data.LabelA = cmp.LabelA
		data.LabelB = cmp.LabelB
		data.Count = s.Result.Summary.Count
		data.Green = s.Result.Summary.Green
		data.Red = s.Result.Summary.Red
		data.MeanDiff = s.Result.Summary.MeanDiff
	}
	c.HTML(http.StatusOK, "page", data)
}

// Chart handles GET /chart.png
func (h *ComparisonHandler) Chart(c *gin.Context) {
	s, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", s.ChartPNG)
}

// GetComparison handles GET /api/v1/comparison
func (h *ComparisonHandler) GetComparison(c *gin.Context) {
	s, ok := h.snapshot(c)
	if !ok {
		return
	}
	cmp := s.Result.Comparison
	c.JSON(http.StatusOK, models.ComparisonResponse{
		CycleID:     s.CycleID,
		Task:        string(cmp.Task),
		Name:        cmp.Name,
		LabelA:      cmp.LabelA,
		LabelB:      cmp.LabelB,
		DateA:       cmp.DateA,
		DateB:       cmp.DateB,
		Policy:      cmp.Policy.String(),
		UpdatedAt:   s.UpdatedAt,
		NextRefresh: s.NextRefresh,
		Rows:        toRows(cmp.Rows),
	})
}

// GetSummary handles GET /api/v1/summary
func (h *ComparisonHandler) GetSummary(c *gin.Context) {
	var q models.SummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}
	s, ok := h.snapshot(c)
	if !ok {
		return
	}
	sum := s.Result.Summary
	resp := models.SummaryResponse{
		CycleID:      s.CycleID,
		Task:         string(sum.Task),
		UpdatedAt:    s.UpdatedAt,
		Count:        sum.Count,
		MinDiff:      sum.MinDiff,
		MaxDiff:      sum.MaxDiff,
		MeanDiff:     sum.MeanDiff,
		P05Diff:      sum.P05Diff,
		P95Diff:      sum.P95Diff,
		TotalA:       sum.TotalA,
		TotalB:       sum.TotalB,
		AbsDiffTotal: sum.AbsDiffTotal,
		Green:        sum.Green,
		Red:          sum.Red,
	}
	if q.Largest > 0 {
		resp.Largest = toRows(analysis.LargestDeviations(s.Result.Comparison, q.Largest))
	}
	c.JSON(http.StatusOK, resp)
}

// Close handles POST /api/v1/close
func (h *ComparisonHandler) Close(c *gin.Context) {
	h.display.Close()
	c.JSON(http.StatusAccepted, gin.H{"status": "closing"})
}

// Health handles GET /health
func (h *ComparisonHandler) Health(c *gin.Context) {
	resp := models.HealthResponse{Status: "ok", Closed: h.display.IsClosed()}
	if s, ok := h.display.Snapshot(); ok {
		t := s.UpdatedAt
		resp.LastUpdate = &t
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComparisonHandler) snapshot(c *gin.Context) (dashboard.Snapshot, bool) {
	s, ok := h.display.Snapshot()
	if !ok || s.Result == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_READY",
				Message: "no comparison has been published yet",
				Details: map[string]interface{}{"checked_at": time.Now().UTC()},
			},
		})
		return dashboard.Snapshot{}, false
	}
	return s, true
}

func toRows(rows []model.ComparisonRow) []models.Row {
	out := make([]models.Row, len(rows))
	for i, r := range rows {
		out[i] = models.Row{
			Period:     int(r.Period),
			A:          r.A,
			B:          r.B,
			Difference: r.Difference,
			Label:      string(r.Label),
		}
	}
	return out
}
