// Package main runs many headless forests across seeds and reports how long
// they last and how their populations settle.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/forest/config"
)

// formatDuration formats a duration as minutes and zero-padded seconds, e.g. 3m07s.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d - m*time.Minute) / time.Second
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	seeds := flag.Int("seeds", 20, "Number of seeds to run")
	firstSeed := flag.Int64("first-seed", 1, "Seed of the first run; later runs count up")
	workers := flag.Int("workers", 4, "Runs simulated in parallel")
	outputDir := flag.String("output", "", "Output directory for survey.csv (empty = stdout)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	// Per-run logs are noise here; only the survey result matters.
	quiet := slog.New(slog.NewJSONHandler(io.Discard, nil))

	runSeeds := make([]int64, *seeds)
	for i := range runSeeds {
		runSeeds[i] = *firstSeed + int64(i)
	}

	start := time.Now()
	results, err := Survey(context.Background(), baseCfg, runSeeds, *workers, quiet)
	if err != nil {
		log.Fatalf("survey failed: %v", err)
	}

	out := io.Writer(os.Stdout)
	if *outputDir != "" {
		if err := os.MkdirAll(*outputDir, 0755); err != nil {
			log.Fatalf("failed to create output directory: %v", err)
		}
		f, err := os.Create(filepath.Join(*outputDir, "survey.csv"))
		if err != nil {
			log.Fatalf("failed to create survey.csv: %v", err)
		}
		defer f.Close()
		out = f
	}
	if err := gocsv.Marshal(results, out); err != nil {
		log.Fatalf("failed to write results: %v", err)
	}

	agg := Aggregate(results)
	fmt.Fprintf(os.Stderr, "\n%d runs in %s\n", len(results), formatDuration(time.Since(start)))
	fmt.Fprintf(os.Stderr, "forest cleared in %d runs\n", agg.Cleared)
	fmt.Fprintf(os.Stderr, "ticks:        mean=%.1f std=%.1f\n", agg.Ticks.Mean, agg.Ticks.Std)
	fmt.Fprintf(os.Stderr, "lumberjacks:  mean=%.1f std=%.1f\n", agg.Lumberjacks.Mean, agg.Lumberjacks.Std)
	fmt.Fprintf(os.Stderr, "bears:        mean=%.1f std=%.1f\n", agg.Bears.Mean, agg.Bears.Std)
	fmt.Fprintf(os.Stderr, "lumber:       mean=%.1f std=%.1f\n", agg.Lumber.Mean, agg.Lumber.Std)
}
