// Package game runs the forest simulation: the board, the lumberjack and
// bear populations, and the per-tick update order.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forest/components"
	"github.com/pthm-cable/forest/config"
	"github.com/pthm-cable/forest/systems"
	"github.com/pthm-cable/forest/telemetry"
)

// State is the lifecycle state of a simulation.
type State uint8

const (
	StateRunning State = iota
	StateEnded
)

// String returns the state's name.
func (s State) String() string {
	if s == StateEnded {
		return "ended"
	}
	return "running"
}

// EndReason records why a simulation stopped.
type EndReason string

const (
	EndNone          EndReason = ""
	EndTimeMax       EndReason = "time_max"
	EndForestCleared EndReason = "forest_cleared"
	EndCancelled     EndReason = "cancelled"
	EndClosed        EndReason = "window_closed"
)

// ErrRendererClosed is returned by a Renderer whose display was closed by
// the user. Run treats it as a normal end of the simulation.
var ErrRendererClosed = errors.New("renderer closed")

// Renderer draws a frame after every tick. It must not retain the frame's
// slices beyond the call if it mutates them.
type Renderer interface {
	Render(f Frame) error
}

// Options configures a Game.
type Options struct {
	Seed      int64        // RNG seed, used when Rand is nil
	Rand      systems.Rand // Random source override
	Logger    *slog.Logger // Defaults to slog.Default()
	OutputDir string       // Directory for years.csv and config.yaml (empty = disabled)
	Headless  bool         // Skip the frame delay
	LogStats  bool         // Log tick timing once per year
}

// Game holds the complete simulation state.
type Game struct {
	cfg    *config.Config
	rng    systems.Rand
	logger *slog.Logger

	world       *ecs.World
	agentFilter *ecs.Filter1[components.Agent]
	grid        *systems.Grid
	lumberjacks *systems.Population
	bears       *systems.Population

	// State
	tick        int32
	bearAttacks int
	state       State
	endReason   EndReason
	frameDelay  time.Duration
	logStats    bool

	// Telemetry
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	history   []telemetry.YearStats
}

// newGame builds a game with a blank board and empty populations.
func newGame(cfg *config.Config, opts Options) *Game {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(opts.Seed))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	size := cfg.Forest.Size
	world := ecs.NewWorld()

	g := &Game{
		cfg:         cfg,
		rng:         rng,
		logger:      logger,
		world:       world,
		agentFilter: ecs.NewFilter1[components.Agent](world),
		grid:        systems.NewGrid(size, rng),
		lumberjacks: systems.NewPopulation(world, components.KindLumberjack, size, rng),
		bears:       systems.NewPopulation(world, components.KindBear, size, rng),
		frameDelay:  cfg.Derived.FrameDelay,
		logStats:    opts.LogStats,
		collector:   telemetry.NewCollector(),
		perf:        telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
	}
	if opts.Headless {
		g.frameDelay = 0
	}
	return g
}

// NewGame seeds the forest and bootstraps both populations.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	g := newGame(cfg, opts)
	size := cfg.Forest.Size

	g.grid.Seed(cfg.Derived.InitialTrees)

	lumberjacks, err := systems.Bootstrap(g.world, components.KindLumberjack, size,
		cfg.Derived.InitialLumberjacks, nil, g.rng)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping lumberjacks: %w", err)
	}
	bears, err := systems.Bootstrap(g.world, components.KindBear, size,
		cfg.Derived.InitialBears, lumberjacks, g.rng)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping bears: %w", err)
	}
	g.lumberjacks = lumberjacks
	g.bears = bears

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}
	g.output = output

	g.updateState()
	g.logger.Info("forest seeded",
		"size", size,
		"trees", cfg.Derived.InitialTrees,
		"lumberjacks", g.lumberjacks.Len(),
		"bears", g.bears.Len(),
		"time_max", cfg.Sim.TimeMax,
	)
	return g, nil
}

// Step runs one tick. It returns false once the simulation has ended.
func (g *Game) Step() bool {
	if g.state == StateEnded {
		return false
	}
	g.tick++

	g.perf.StartTick()

	g.perf.StartPhase(telemetry.PhaseGrowth)
	g.updateGrowth()

	g.perf.StartPhase(telemetry.PhaseLumberjacks)
	g.updateLumberjacks()

	g.perf.StartPhase(telemetry.PhaseBears)
	g.updateBears()

	g.perf.StartPhase(telemetry.PhaseRebalance)
	g.ensureLumberjack()
	if int(g.tick)%g.cfg.Population.RebalanceInterval == 0 {
		g.rebalance()
		g.closeYear()
	}

	g.perf.EndTick()

	g.updateState()
	return g.state == StateRunning
}

// Run steps the simulation until it ends, handing each tick's frame to r
// and pacing ticks by the configured frame delay. Cancelling ctx ends the
// simulation between ticks.
func (g *Game) Run(ctx context.Context, r Renderer) error {
	for g.state == StateRunning {
		if ctx.Err() != nil {
			g.end(EndCancelled)
			break
		}

		g.Step()

		if err := r.Render(g.Frame()); err != nil {
			if errors.Is(err, ErrRendererClosed) {
				g.end(EndClosed)
				break
			}
			return fmt.Errorf("rendering tick %d: %w", g.tick, err)
		}

		if g.frameDelay > 0 && g.state == StateRunning {
			timer := time.NewTimer(g.frameDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}

	g.logSummary()
	return nil
}

// updateState moves the simulation to Ended once the tick budget is spent
// or the forest is gone.
func (g *Game) updateState() {
	if g.state == StateEnded {
		return
	}
	switch {
	case int(g.tick) >= g.cfg.Sim.TimeMax:
		g.end(EndTimeMax)
	case !g.grid.NonEmpty():
		g.end(EndForestCleared)
	}
}

func (g *Game) end(reason EndReason) {
	if g.state == StateEnded {
		return
	}
	g.state = StateEnded
	g.endReason = reason
}

// Close releases output files.
func (g *Game) Close() error {
	return g.output.Close()
}

// Tick returns the number of ticks run so far.
func (g *Game) Tick() int32 {
	return g.tick
}

// State returns the lifecycle state.
func (g *Game) State() State {
	return g.state
}

// EndReason returns why the simulation ended, or EndNone while running.
func (g *Game) EndReason() EndReason {
	return g.endReason
}

// BearAttacks returns the attacks counted since the last rebalance.
func (g *Game) BearAttacks() int {
	return g.bearAttacks
}

// Grid returns the board.
func (g *Game) Grid() *systems.Grid {
	return g.grid
}

// Lumberjacks returns the lumberjack population.
func (g *Game) Lumberjacks() *systems.Population {
	return g.lumberjacks
}

// Bears returns the bear population.
func (g *Game) Bears() *systems.Population {
	return g.bears
}

// History returns the yearly records collected so far.
func (g *Game) History() []telemetry.YearStats {
	return g.history
}

// Summary aggregates the yearly records collected so far.
func (g *Game) Summary() telemetry.Summary {
	return telemetry.Summarize(g.history)
}
