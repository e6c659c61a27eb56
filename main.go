package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/pthm-cable/forest/config"
	"github.com/pthm-cable/forest/game"
	"github.com/pthm-cable/forest/render"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without rendering or frame delay")
	window := flag.Bool("gui", false, "Render in a window instead of the terminal")
	logStats := flag.Bool("log-stats", false, "Log tick timing once per year")
	outputDir := flag.String("output-dir", "", "Output directory for years.csv, config snapshot and log")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", -1, "Override sim.time_max (-1 = use config)")
	size := flag.Int("size", 0, "Override forest.size (0 = use config)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *maxTicks >= 0 {
		cfg.Sim.TimeMax = *maxTicks
	}
	if *size > 0 {
		cfg.Forest.Size = *size
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid flags", "error", err)
		os.Exit(1)
	}
	cfg.ComputeDerived()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	mode := "terminal"
	switch {
	case *headless:
		mode = "headless"
	case *window:
		mode = "gui"
	}

	logOut, closeLog, err := logDestination(mode, *outputDir)
	if err != nil {
		slog.Error("failed to open log", "error", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	if err := run(cfg, mode, game.Options{
		Seed:      rngSeed,
		OutputDir: *outputDir,
		Headless:  *headless,
		LogStats:  *logStats,
	}); err != nil {
		slog.Error("simulation failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, mode string, opts game.Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, err := game.NewGame(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Close()

	slog.Info("starting simulation", "mode", mode, "seed", opts.Seed)

	switch mode {
	case "headless":
		return g.Run(ctx, render.Headless{})

	case "gui":
		w := render.NewWindow(ctx, cfg)
		defer w.Close()
		if err := g.Run(ctx, w); err != nil {
			return err
		}
		if g.EndReason() != game.EndClosed && ctx.Err() == nil {
			w.WaitForKey()
		}
		return nil

	default:
		t := render.NewTerminal(os.Stdout)
		runErr := g.Run(ctx, t)
		if err := t.Close(); err != nil && runErr == nil {
			runErr = err
		}
		if runErr != nil {
			return runErr
		}
		if ctx.Err() == nil {
			return render.WaitForKey(os.Stdin)
		}
		return nil
	}
}

// logDestination picks where structured logs go. The terminal renderer owns
// stdout, so its logs go to a file in the output directory or nowhere.
func logDestination(mode, outputDir string) (io.Writer, func(), error) {
	if mode != "terminal" {
		return os.Stdout, func() {}, nil
	}
	if outputDir == "" {
		return io.Discard, func() {}, nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(outputDir, "forest.log"))
	if err != nil {
		return nil, nil, fmt.Errorf("creating log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
