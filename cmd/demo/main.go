package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"settlement-compare/internal/analysis"
	"settlement-compare/internal/compare"
	"settlement-compare/internal/config"
	"settlement-compare/internal/data"
)

// Demo:
// - Replay snapshots saved by cmd/snapshot (no network)
// - Run every configured generation task and the imbalance comparison
// - Print the largest deviations of each
func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	dir := flag.String("snapshots", "data/snapshots", "Directory of snapshot JSON files")
	today := flag.String("date", "", "Imbalance date to compare (default: generation date)")
	out := flag.String("out", "results", "Output directory")
	n := flag.Int("n", 5, "Number of largest deviations to print")
	skipImbalance := flag.Bool("skip-imbalance", false, "Only run generation tasks")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.Output.Dir = *out

	runner := compare.NewRunner(cfg, &data.FileSource{Dir: *dir})
	ctx := context.Background()

	for _, t := range cfg.Generation.Tasks {
		res, _, err := runner.Generation(ctx, t.Name, "")
		if err != nil {
			log.Fatalf("Generation %s: %v", t.Name, err)
		}
		show(res, *n)
	}

	if *skipImbalance {
		return
	}
	date := *today
	if date == "" {
		date = cfg.Generation.Date
	}
	now := time.Now()
	res, _, err := runner.Imbalance(ctx, "", date, now, now.Add(cfg.Imbalance.PollInterval))
	if err != nil {
		log.Fatalf("Imbalance: %v", err)
	}
	show(res, *n)
}

func show(res *compare.Result, n int) {
	c := res.Comparison
	fmt.Printf("\n%s (%s vs %s), %d periods\n", c.Name, c.LabelA, c.LabelB, len(c.Rows))
	for _, r := range analysis.LargestDeviations(c, n) {
		fmt.Printf("  SP %2d  %12.2f  %12.2f  diff=%10.2f  %s\n", r.Period, r.A, r.B, r.Difference, r.Label)
	}
}
