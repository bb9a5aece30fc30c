package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"settlement-compare/internal/analysis"
	"settlement-compare/internal/api/models"
	"settlement-compare/internal/compare"
	"settlement-compare/internal/dashboard"
	"settlement-compare/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func publishedDisplay() *dashboard.Display {
	c := &model.Comparison{
		Task:   model.TaskImbalance,
		Name:   "Imbalance",
		LabelA: "Example 2025-10-22",
		LabelB: "Today 2025-11-13",
		DateA:  "2025-10-22",
		DateB:  "2025-11-13",
		Policy: model.StrictPositive,
		Rows: []model.ComparisonRow{
			{Period: 1, A: 10, B: 15, Difference: 5, Label: model.SignGreen},
			{Period: 2, A: 10, B: -30, Difference: -40, Label: model.SignRed},
		},
	}
	d := dashboard.NewDisplay()
	d.Update(dashboard.Snapshot{
		CycleID:     "cycle-1",
		Result:      &compare.Result{Comparison: c, Summary: analysis.Summarize(c)},
		ChartPNG:    []byte("\x89PNGfake"),
		UpdatedAt:   time.Date(2025, 11, 13, 10, 0, 0, 0, time.UTC),
		NextRefresh: time.Date(2025, 11, 13, 10, 30, 0, 0, time.UTC),
	})
	return d
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNotReadyBeforeFirstUpdate(t *testing.T) {
	r := NewRouter(dashboard.NewDisplay())

	for _, path := range []string{"/chart.png", "/api/v1/comparison", "/api/v1/summary"} {
		w := do(t, r, http.MethodGet, path)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)

		var resp models.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "NOT_READY", resp.Error.Code)
	}

	w := do(t, r, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Waiting for the first update")
}

func TestComparisonEndpoint(t *testing.T) {
	r := NewRouter(publishedDisplay())

	w := do(t, r, http.MethodGet, "/api/v1/comparison")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ComparisonResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cycle-1", resp.CycleID)
	assert.Equal(t, "imbalance", resp.Task)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, models.Row{Period: 2, A: 10, B: -30, Difference: -40, Label: "red"}, resp.Rows[1])
}

func TestSummaryEndpoint(t *testing.T) {
	r := NewRouter(publishedDisplay())

	w := do(t, r, http.MethodGet, "/api/v1/summary?largest=1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 1, resp.Green)
	assert.Equal(t, 1, resp.Red)
	require.Len(t, resp.Largest, 1)
	assert.Equal(t, 2, resp.Largest[0].Period)

	w = do(t, r, http.MethodGet, "/api/v1/summary?largest=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChartAndPage(t *testing.T) {
	r := NewRouter(publishedDisplay())

	w := do(t, r, http.MethodGet, "/chart.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = do(t, r, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Last update: 10:00:00 UTC")
	assert.Contains(t, w.Body.String(), "/chart.png?cycle=cycle-1")
}

func TestCloseEndpoint(t *testing.T) {
	d := publishedDisplay()
	r := NewRouter(d)

	w := do(t, r, http.MethodPost, "/api/v1/close")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, d.IsClosed())

	w = do(t, r, http.MethodGet, "/health")
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Closed)
	require.NotNil(t, resp.LastUpdate)
}

func TestMetricsAndCORS(t *testing.T) {
	srv := NewServer(":0", []string{"http://example.test"}, publishedDisplay())

	w := do(t, srv.Handler, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.test")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, "http://example.test", rec.Header().Get("Access-Control-Allow-Origin"))
}
