package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/forest/config"
	"github.com/pthm-cable/forest/game"
)

// RunResult is the outcome of one seeded run.
type RunResult struct {
	Seed        int64   `csv:"seed"`
	Ticks       int32   `csv:"ticks"`
	EndReason   string  `csv:"end_reason"`
	Years       int     `csv:"years"`
	Lumberjacks int     `csv:"lumberjacks"`
	Bears       int     `csv:"bears"`
	Vegetated   int     `csv:"vegetated"`
	Lumber      int     `csv:"lumber"`
	Maulings    int     `csv:"maulings"`
	MeanBears   float64 `csv:"mean_bears"`
}

// Survey runs one headless game per seed, at most workers at a time.
// Results are returned in seed order.
func Survey(ctx context.Context, cfg *config.Config, seeds []int64, workers int, logger *slog.Logger) ([]RunResult, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]RunResult, len(seeds))
	errs := make([]error, len(seeds))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, seed := range seeds {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, seed int64) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = runOne(ctx, cfg, seed, logger)
		}(i, seed)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", seeds[i], err)
		}
	}
	return results, nil
}

func runOne(ctx context.Context, cfg *config.Config, seed int64, logger *slog.Logger) (RunResult, error) {
	g, err := game.NewGame(cfg, game.Options{Seed: seed, Headless: true, Logger: logger})
	if err != nil {
		return RunResult{}, err
	}
	defer g.Close()

	for g.Step() {
		if ctx.Err() != nil {
			return RunResult{}, ctx.Err()
		}
	}

	summary := g.Summary()
	return RunResult{
		Seed:        seed,
		Ticks:       g.Tick(),
		EndReason:   string(g.EndReason()),
		Years:       summary.Years,
		Lumberjacks: g.Lumberjacks().Len(),
		Bears:       g.Bears().Len(),
		Vegetated:   g.Grid().Census().Vegetated(),
		Lumber:      summary.Lumber,
		Maulings:    summary.Maulings,
		MeanBears:   summary.Bears.Mean,
	}, nil
}

// Moments is a mean with its sample standard deviation.
type Moments struct {
	Mean float64
	Std  float64
}

// Aggregated summarizes a survey.
type Aggregated struct {
	Cleared     int
	Ticks       Moments
	Lumberjacks Moments
	Bears       Moments
	Lumber      Moments
}

// Aggregate computes moments of the final state across runs.
func Aggregate(results []RunResult) Aggregated {
	var agg Aggregated
	ticks := make([]float64, len(results))
	lumberjacks := make([]float64, len(results))
	bears := make([]float64, len(results))
	lumber := make([]float64, len(results))
	for i, r := range results {
		if r.EndReason == string(game.EndForestCleared) {
			agg.Cleared++
		}
		ticks[i] = float64(r.Ticks)
		lumberjacks[i] = float64(r.Lumberjacks)
		bears[i] = float64(r.Bears)
		lumber[i] = float64(r.Lumber)
	}
	agg.Ticks = moments(ticks)
	agg.Lumberjacks = moments(lumberjacks)
	agg.Bears = moments(bears)
	agg.Lumber = moments(lumber)
	return agg
}

func moments(x []float64) Moments {
	switch len(x) {
	case 0:
		return Moments{}
	case 1:
		return Moments{Mean: x[0]}
	}
	mean, std := stat.MeanStdDev(x, nil)
	return Moments{Mean: mean, Std: std}
}
