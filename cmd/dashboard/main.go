package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"settlement-compare/internal/api"
	"settlement-compare/internal/compare"
	"settlement-compare/internal/config"
	"settlement-compare/internal/dashboard"
	"settlement-compare/internal/model"
	"settlement-compare/internal/observability/metrics"
	"settlement-compare/internal/poller"

	"github.com/gin-gonic/gin"
)

// dashboard polls the imbalance comparison and serves the live chart.
func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	display := dashboard.NewDisplay()
	srv := api.NewServer(cfg.Dashboard.Addr, cfg.Dashboard.AllowedOrigins, display)
	go func() {
		log.Printf("Starting dashboard on %s", cfg.Dashboard.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Dashboard] server error: %v", err)
			display.Close()
		}
	}()

	runner := compare.NewRunner(cfg, cfg.Upstream.NewClient())
	log.Printf("Reference date %s, polling every %s", cfg.Imbalance.ReferenceDate, cfg.Imbalance.PollInterval)

	loop := &poller.Loop{
		Task:     string(model.TaskImbalance),
		Interval: cfg.Imbalance.PollInterval,
		Display:  display,
		Cycle: func(ctx context.Context, tick poller.Tick) error {
			res, a, err := runner.Imbalance(ctx, "", "", tick.Started, tick.NextRefresh)
			if err != nil {
				return err
			}
			updated := time.Now()
			display.Update(dashboard.Snapshot{
				CycleID:     tick.ID,
				Result:      res,
				ChartPNG:    a.ChartPNG,
				UpdatedAt:   updated,
				NextRefresh: tick.NextRefresh,
			})
			log.Printf("Updated at %s", updated.UTC().Format("15:04:05 UTC"))
			return nil
		},
	}
	loopErr := loop.Run(ctx)

	display.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Dashboard] shutdown: %v", err)
	}

	if loopErr != nil {
		log.Fatalf("Polling stopped: %v", loopErr)
	}
	log.Printf("Dashboard closed")
}
