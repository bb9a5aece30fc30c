package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"settlement-compare/internal/config"
	"settlement-compare/internal/data"
	"settlement-compare/internal/model"
)

// snapshot saves raw BMRS records to JSON so cmd/demo can replay them offline.
func main() {
	var (
		cfgPath = flag.String("config", "", "Path to YAML config (optional)")
		dates   = flag.String("dates", "", "Comma-separated settlement dates, YYYY-MM-DD (default: imbalance reference date and generation date)")
		outDir  = flag.String("out", "data/snapshots", "Snapshot directory")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	list := splitDates(*dates)
	if len(list) == 0 {
		list = []string{cfg.Imbalance.ReferenceDate, cfg.Generation.Date}
	}

	client := cfg.Upstream.NewClient()
	fmt.Printf("Saving snapshots for %s to %s\n", strings.Join(list, ", "), *outDir)

	saved := 0
	for _, date := range dedupe(withPreviousDays(list)) {
		if _, err := model.ParseDate(date); err != nil {
			log.Fatalf("Invalid date %q: %v", date, err)
		}
		for _, ep := range []struct {
			name  string
			fetch func() ([]model.RawRecord, error)
		}{
			{data.EndpointImbalance, func() ([]model.RawRecord, error) {
				return client.IndicatedImbalance(ctx, date, model.AllPeriods())
			}},
			{data.EndpointForecast, func() ([]model.RawRecord, error) {
				return client.GenerationForecast(ctx, date, model.FirstPeriod, model.LastPeriod)
			}},
			{data.EndpointActual, func() ([]model.RawRecord, error) {
				return client.GenerationActual(ctx, date, model.FirstPeriod, model.LastPeriod)
			}},
		} {
			recs, err := ep.fetch()
			if err != nil {
				log.Fatalf("Failed to fetch %s for %s: %v", ep.name, date, err)
			}
			path := data.SnapshotPath(*outDir, ep.name, date)
			snap := &data.Snapshot{
				Endpoint:  ep.name,
				Date:      date,
				FetchedAt: time.Now().UTC().Format(time.RFC3339),
				Records:   recs,
			}
			if err := data.SaveSnapshot(snap, path); err != nil {
				log.Fatalf("Failed to save snapshot: %v", err)
			}
			saved++
			fmt.Printf("  ✓ %s %s: %d records -> %s\n", ep.name, date, len(recs), path)
		}
	}

	fmt.Printf("Saved %d snapshots\n", saved)
}

func splitDates(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// withPreviousDays adds the day before each date, which the imbalance stitch
// reads periods 47-48 from.
func withPreviousDays(dates []string) []string {
	out := make([]string, 0, 2*len(dates))
	for _, d := range dates {
		if prev, err := model.PreviousDate(d); err == nil {
			out = append(out, prev)
		}
		out = append(out, d)
	}
	return out
}

func dedupe(dates []string) []string {
	seen := make(map[string]bool, len(dates))
	out := dates[:0]
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}
