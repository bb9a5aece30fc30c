// Package api exposes a dashboard.Display over HTTP.
package api

import (
	"net/http"
	"time"

	"settlement-compare/internal/api/handlers"
	"settlement-compare/internal/api/middleware"
	"settlement-compare/internal/dashboard"
	"settlement-compare/internal/observability/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the dashboard routes.
func NewRouter(d *dashboard.Display) *gin.Engine {
	metrics.Init()

	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.SetHTMLTemplate(handlers.PageTemplate)

	h := handlers.NewComparisonHandler(d)

	router.GET("/", h.Page)
	router.GET("/chart.png", h.Chart)
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/comparison", h.GetComparison)
		api.GET("/summary", h.GetSummary)
		api.POST("/close", h.Close)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router
}

// NewServer builds the dashboard HTTP server with CORS applied.
func NewServer(addr string, allowedOrigins []string, d *dashboard.Display) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           middleware.CORS(NewRouter(d), allowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
