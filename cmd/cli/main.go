package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"settlement-compare/internal/analysis"
	"settlement-compare/internal/compare"
	"settlement-compare/internal/config"
	"settlement-compare/internal/export"
	"settlement-compare/internal/model"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "imbalance":
		cmdImbalance(ctx, os.Args[2:])
	case "generation":
		cmdGeneration(ctx, os.Args[2:])
	case "summary":
		cmdSummary(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli imbalance [--config cfg.yaml] [--date 2025-11-13] [--ref 2025-11-12]")
	fmt.Println("  cli generation --task wind|solar [--config cfg.yaml] [--date 2025-11-12]")
	fmt.Println("  cli summary --csv imbalance_table.csv [--n 5]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - imbalance stitches periods 47-48 of the previous day onto periods 1-46")
	fmt.Println("  - generation sums forecast and actual per period over matching psrType values")
	fmt.Println("  - environment variables prefixed BMRS_ override the config file")
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func cmdImbalance(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("imbalance", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	date := fs.String("date", "", "Date to compare, YYYY-MM-DD (default: today UTC)")
	ref := fs.String("ref", "", "Reference date, YYYY-MM-DD (default: imbalance.reference_date)")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	runner := compare.NewRunner(cfg, cfg.Upstream.NewClient())

	now := time.Now()
	res, a, err := runner.Imbalance(ctx, *ref, *date, now, now.Add(cfg.Imbalance.PollInterval))
	if err != nil {
		log.Fatalf("Imbalance comparison failed: %v", err)
	}
	report(res, a)
}

func cmdGeneration(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("generation", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	task := fs.String("task", "", "Generation task name (wind, solar, ...); empty runs every task")
	date := fs.String("date", "", "Settlement date, YYYY-MM-DD (default: generation.date)")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	runner := compare.NewRunner(cfg, cfg.Upstream.NewClient())

	names := []string{*task}
	if *task == "" {
		names = names[:0]
		for _, t := range cfg.Generation.Tasks {
			names = append(names, t.Name)
		}
	}
	for _, name := range names {
		res, a, err := runner.Generation(ctx, name, *date)
		if err != nil {
			log.Fatalf("Generation comparison %q failed: %v", name, err)
		}
		report(res, a)
	}
}

func cmdSummary(args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	csvPath := fs.String("csv", "imbalance_table.csv", "Comparison CSV written by imbalance or generation")
	n := fs.Int("n", 5, "Number of largest deviations to print")
	_ = fs.Parse(args)

	header, rows, err := export.ReadComparisonCSV(*csvPath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *csvPath, err)
	}
	if len(header) != 4 {
		log.Fatalf("%s: expected 4 columns, got %d", *csvPath, len(header))
	}

	policy := model.NonNegative
	task := model.Task("generation")
	if header[1] == "Imbalance_Ref" {
		policy = model.StrictPositive
		task = model.TaskImbalance
	}
	for i := range rows {
		rows[i].Label = model.SignLabelFor(rows[i].Difference, policy)
	}
	c := &model.Comparison{Task: task, Policy: policy, Rows: rows}

	s := analysis.Summarize(c)
	fmt.Printf("%s: %d periods, %d green, %d red\n", *csvPath, s.Count, s.Green, s.Red)
	fmt.Printf("%s min=%.3f mean=%.3f max=%.3f p05=%.3f p95=%.3f\n",
		header[len(header)-1], s.MinDiff, s.MeanDiff, s.MaxDiff, s.P05Diff, s.P95Diff)
	fmt.Printf("Totals %s=%.3f %s=%.3f sum|diff|=%.3f\n", header[1], s.TotalA, header[2], s.TotalB, s.AbsDiffTotal)

	fmt.Println("")
	fmt.Printf("%-6s %-16s %-16s %-16s %s\n", "SP", header[1], header[2], header[3], "label")
	for _, r := range analysis.LargestDeviations(c, *n) {
		fmt.Printf("%-6d %-16.3f %-16.3f %-16.3f %s\n", r.Period, r.A, r.B, r.Difference, r.Label)
	}
}

func report(res *compare.Result, a compare.Artifacts) {
	c := res.Comparison
	fmt.Printf("%s: %s vs %s, %d periods\n", c.Name, c.LabelA, c.LabelB, len(c.Rows))
	for _, p := range []string{a.CSV, a.Chart, a.XLSX, a.PDF} {
		if p != "" {
			fmt.Printf("  wrote %s\n", p)
		}
	}
	s := res.Summary
	fmt.Printf("  difference min=%.2f mean=%.2f max=%.2f (green %d, red %d)\n", s.MinDiff, s.MeanDiff, s.MaxDiff, s.Green, s.Red)
}
