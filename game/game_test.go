package game

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pthm-cable/forest/components"
	"github.com/pthm-cable/forest/config"
	"github.com/pthm-cable/forest/systems"
	"github.com/pthm-cable/forest/telemetry"
)

// constRand always draws the same value, reduced modulo n.
type constRand int

func (r constRand) Intn(n int) int {
	return int(r) % n
}

// cycleRand repeats its draws forever, each reduced modulo n.
type cycleRand struct {
	draws []int
	next  int
}

func (r *cycleRand) Intn(n int) int {
	v := r.draws[r.next%len(r.draws)] % n
	r.next++
	return v
}

// countingRenderer counts the frames it is given.
type countingRenderer struct {
	frames int
	last   Frame
}

func (r *countingRenderer) Render(f Frame) error {
	r.frames++
	r.last = f
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testConfig(size, timeMax int) *config.Config {
	cfg := config.Default()
	cfg.Forest.Size = size
	cfg.Sim.TimeMax = timeMax
	cfg.Sim.FrameDelayMS = 0
	cfg.ComputeDerived()
	return cfg
}

func emptyGame(t *testing.T, cfg *config.Config, rng systems.Rand) *Game {
	t.Helper()
	return newGame(cfg, Options{Rand: rng, Logger: quietLogger(), Headless: true})
}

func TestBearKillsAdjacentLumberjack(t *testing.T) {
	g := emptyGame(t, testConfig(4, 100), constRand(0))
	g.lumberjacks.PlaceAt(components.Position{X: 0, Y: 0})
	bear := g.bears.PlaceAt(components.Position{X: 1, Y: 1})

	// Draws of 0 give the offset (-1,-1), straight onto the lumberjack.
	g.updateBears()

	if g.lumberjacks.Len() != 0 {
		t.Errorf("lumberjacks = %d, want 0", g.lumberjacks.Len())
	}
	if g.BearAttacks() != 1 {
		t.Errorf("bear attacks = %d, want 1", g.BearAttacks())
	}
	if got := g.bears.Position(bear); got != (components.Position{X: 0, Y: 0}) {
		t.Errorf("bear at %v, want (0,0)", got)
	}
	if got := g.bears.Agent(bear).Kills; got != 1 {
		t.Errorf("bear kills = %d, want 1", got)
	}
}

func TestLumberjackWalkingIntoBearDies(t *testing.T) {
	g := emptyGame(t, testConfig(4, 100), constRand(0))
	g.lumberjacks.PlaceAt(components.Position{X: 1, Y: 1})
	bear := g.bears.PlaceAt(components.Position{X: 0, Y: 0})

	g.updateLumberjacks()

	if g.lumberjacks.Len() != 0 {
		t.Errorf("lumberjacks = %d, want 0", g.lumberjacks.Len())
	}
	if g.BearAttacks() != 1 {
		t.Errorf("bear attacks = %d, want 1", g.BearAttacks())
	}
	if got := g.bears.Agent(bear).Kills; got != 1 {
		t.Errorf("bear kills = %d, want 1", got)
	}
}

func TestMoveBudgets(t *testing.T) {
	tests := []struct {
		name  string
		kind  components.Kind
		moves int
	}{
		{"lumberjack", components.KindLumberjack, 3},
		{"bear", components.KindBear, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Every step draws dx=+1, dy=0 on an empty, blank board, so no
			// move resolves the turn and each one shifts the agent right.
			cfg := testConfig(10, 100)
			g := emptyGame(t, cfg, &cycleRand{draws: []int{2, 1}})

			pop, update := g.lumberjacks, g.updateLumberjacks
			budget := cfg.Population.LumberjackMoves
			if tt.kind == components.KindBear {
				pop, update = g.bears, g.updateBears
				budget = cfg.Population.BearMoves
			}
			if budget != tt.moves {
				t.Fatalf("configured moves = %d, want %d", budget, tt.moves)
			}

			e := pop.PlaceAt(components.Position{X: 0, Y: 4})
			update()

			want := components.Position{X: tt.moves, Y: 4}
			if got := pop.Position(e); got != want {
				t.Errorf("position after one tick = %v, want %v", got, want)
			}
			if g.BearAttacks() != 0 {
				t.Errorf("bear attacks = %d, want 0", g.BearAttacks())
			}
		})
	}
}

func TestLumberjackHarvestEndsTurn(t *testing.T) {
	g := emptyGame(t, testConfig(4, 100), constRand(0))
	lj := g.lumberjacks.PlaceAt(components.Position{X: 2, Y: 2})
	g.grid.Set(components.Position{X: 1, Y: 1}, systems.NewCell(systems.ElderTree))

	g.updateLumberjacks()

	if got := g.lumberjacks.Position(lj); got != (components.Position{X: 1, Y: 1}) {
		t.Errorf("lumberjack at %v, want (1,1) after one move", got)
	}
	if got := g.lumberjacks.Agent(lj).Lumber; got != components.InitialValue+2 {
		t.Errorf("lumber = %d, want %d", got, components.InitialValue+2)
	}
	if g.grid.Cell(components.Position{X: 1, Y: 1}).Kind != systems.Blank {
		t.Error("harvested cell not cleared")
	}
}

func TestRebalanceHiresByLumberPerHead(t *testing.T) {
	g := emptyGame(t, testConfig(20, 100), rand.New(rand.NewSource(42)))
	lj := g.lumberjacks.PlaceAt(components.Position{X: 5, Y: 5})
	g.lumberjacks.Agent(lj).Lumber = 20

	g.rebalance()

	if got := g.lumberjacks.Len(); got != 21 {
		t.Errorf("lumberjacks = %d, want 21", got)
	}
	if got := g.bears.Len(); got != 1 {
		t.Errorf("bears = %d, want 1 after a year without attacks", got)
	}
}

func TestRebalanceAfterAttacks(t *testing.T) {
	g := emptyGame(t, testConfig(6, 100), rand.New(rand.NewSource(42)))
	for i := range 3 {
		g.bears.PlaceAt(components.Position{X: i, Y: 0})
		g.lumberjacks.PlaceAt(components.Position{X: i, Y: 3})
	}
	lastBear := g.bears.Last()
	lastLumberjack := g.lumberjacks.Last()
	g.bearAttacks = 2

	g.rebalance()

	if g.BearAttacks() != 0 {
		t.Errorf("attack counter = %d, want reset to 0", g.BearAttacks())
	}
	if g.bears.Len() != 2 || g.bears.Contains(lastBear) {
		t.Errorf("bears = %d, want the tail bear removed", g.bears.Len())
	}
	// Lumber per head is exactly one, so one lumberjack is laid off.
	if g.lumberjacks.Len() != 2 || g.lumberjacks.Contains(lastLumberjack) {
		t.Errorf("lumberjacks = %d, want the tail lumberjack removed", g.lumberjacks.Len())
	}
}

func TestRebalanceKeepsLastAgents(t *testing.T) {
	g := emptyGame(t, testConfig(6, 100), rand.New(rand.NewSource(42)))
	g.bears.PlaceAt(components.Position{X: 0, Y: 0})
	g.lumberjacks.PlaceAt(components.Position{X: 3, Y: 3})
	g.bearAttacks = 1

	g.rebalance()

	if g.bears.Len() != 1 || g.lumberjacks.Len() != 1 {
		t.Errorf("sizes = %d/%d, want 1/1", g.lumberjacks.Len(), g.bears.Len())
	}
}

func TestEnsureLumberjack(t *testing.T) {
	g := emptyGame(t, testConfig(5, 100), rand.New(rand.NewSource(1)))
	g.bears.PlaceAt(components.Position{X: 2, Y: 2})

	g.ensureLumberjack()
	if g.lumberjacks.Len() != 1 {
		t.Fatalf("lumberjacks = %d, want 1", g.lumberjacks.Len())
	}
	if g.lumberjacks.Positions()[0] == (components.Position{X: 2, Y: 2}) {
		t.Error("lumberjack hired onto a bear")
	}

	g.ensureLumberjack()
	if g.lumberjacks.Len() != 1 {
		t.Errorf("lumberjacks = %d, want 1 when one already exists", g.lumberjacks.Len())
	}
}

func TestNewGameBootstrap(t *testing.T) {
	cfg := testConfig(20, 100)
	g, err := NewGame(cfg, Options{Seed: 42, Logger: quietLogger(), Headless: true})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	defer g.Close()

	census := g.Grid().Census()
	if census.Trees != cfg.Derived.InitialTrees {
		t.Errorf("trees = %d, want %d", census.Trees, cfg.Derived.InitialTrees)
	}
	if g.Lumberjacks().Len() != cfg.Derived.InitialLumberjacks {
		t.Errorf("lumberjacks = %d, want %d", g.Lumberjacks().Len(), cfg.Derived.InitialLumberjacks)
	}
	if g.Bears().Len() != cfg.Derived.InitialBears {
		t.Errorf("bears = %d, want %d", g.Bears().Len(), cfg.Derived.InitialBears)
	}
	for _, p := range g.Bears().Positions() {
		if g.Lumberjacks().Collides(p) {
			t.Errorf("bear and lumberjack share %v", p)
		}
	}
	if g.State() != StateRunning {
		t.Errorf("state = %v, want running", g.State())
	}
}

func TestNewGameUsesDerivedCounts(t *testing.T) {
	cfg := testConfig(10, 100)
	cfg.Derived.InitialLumberjacks = 7
	cfg.Derived.InitialBears = 3

	g, err := NewGame(cfg, Options{Seed: 11, Logger: quietLogger(), Headless: true})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	defer g.Close()

	if g.Lumberjacks().Len() != 7 || g.Bears().Len() != 3 {
		t.Errorf("sizes = %d/%d, want 7/3", g.Lumberjacks().Len(), g.Bears().Len())
	}
}

func TestRunWithZeroTimeMax(t *testing.T) {
	g, err := NewGame(testConfig(8, 0), Options{Seed: 3, Logger: quietLogger(), Headless: true})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	defer g.Close()

	cells := g.Grid().Cells()
	lumberjacks := g.Lumberjacks().Positions()
	bears := g.Bears().Positions()

	r := &countingRenderer{}
	if err := g.Run(context.Background(), r); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if g.Tick() != 0 {
		t.Errorf("tick = %d, want 0", g.Tick())
	}
	if r.frames != 0 {
		t.Errorf("rendered %d frames, want 0", r.frames)
	}
	if g.EndReason() != EndTimeMax {
		t.Errorf("end reason = %q, want %q", g.EndReason(), EndTimeMax)
	}
	if !slices.Equal(cells, g.Grid().Cells()) {
		t.Error("board changed")
	}
	if !slices.Equal(lumberjacks, g.Lumberjacks().Positions()) || !slices.Equal(bears, g.Bears().Positions()) {
		t.Error("agents moved")
	}
}

func TestRunToCompletion(t *testing.T) {
	const timeMax = 240
	g, err := NewGame(testConfig(8, timeMax), Options{Seed: 7, Logger: quietLogger(), Headless: true})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	defer g.Close()

	r := &countingRenderer{}
	if err := g.Run(context.Background(), r); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if g.State() != StateEnded {
		t.Fatalf("state = %v, want ended", g.State())
	}
	switch g.EndReason() {
	case EndTimeMax:
		if g.Tick() != timeMax {
			t.Errorf("tick = %d, want %d", g.Tick(), timeMax)
		}
	case EndForestCleared:
		if g.Grid().NonEmpty() {
			t.Error("forest_cleared with vegetation left")
		}
	default:
		t.Fatalf("unexpected end reason %q", g.EndReason())
	}

	if r.frames != int(g.Tick()) {
		t.Errorf("rendered %d frames over %d ticks", r.frames, g.Tick())
	}
	if r.last.State != StateEnded {
		t.Error("last frame not marked as ended")
	}
	if got, want := len(g.History()), int(g.Tick())/12; got != want {
		t.Errorf("history has %d years, want %d", got, want)
	}
	if g.Lumberjacks().Len() < 1 {
		t.Error("lumberjack population empty at the end of a tick")
	}
	if g.Step() {
		t.Error("Step after the end should report false")
	}
}

func TestRunCancelled(t *testing.T) {
	g, err := NewGame(testConfig(8, 1000), Options{Seed: 1, Logger: quietLogger(), Headless: true})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	defer g.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := g.Run(ctx, &countingRenderer{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if g.EndReason() != EndCancelled {
		t.Errorf("end reason = %q, want %q", g.EndReason(), EndCancelled)
	}
	if g.Tick() != 0 {
		t.Errorf("tick = %d, want 0", g.Tick())
	}
}

// closingRenderer reports a closed display after a number of frames.
type closingRenderer struct {
	remaining int
}

func (r *closingRenderer) Render(Frame) error {
	r.remaining--
	if r.remaining <= 0 {
		return ErrRendererClosed
	}
	return nil
}

func TestRunRendererClosed(t *testing.T) {
	g, err := NewGame(testConfig(8, 1000), Options{Seed: 1, Logger: quietLogger(), Headless: true})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	defer g.Close()

	if err := g.Run(context.Background(), &closingRenderer{remaining: 3}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if g.EndReason() != EndClosed {
		t.Errorf("end reason = %q, want %q", g.EndReason(), EndClosed)
	}
	if g.Tick() != 3 {
		t.Errorf("tick = %d, want 3", g.Tick())
	}
}

func TestForestClearedEndsRun(t *testing.T) {
	g := emptyGame(t, testConfig(4, 100), rand.New(rand.NewSource(1)))
	g.lumberjacks.PlaceAt(components.Position{X: 0, Y: 0})

	if g.Step() {
		t.Error("Step on a blank board should end the run")
	}
	if g.EndReason() != EndForestCleared {
		t.Errorf("end reason = %q, want %q", g.EndReason(), EndForestCleared)
	}
}

func TestFrameIsSnapshot(t *testing.T) {
	g := emptyGame(t, testConfig(4, 100), rand.New(rand.NewSource(1)))
	g.grid.Set(components.Position{X: 1, Y: 2}, systems.NewCell(systems.Tree))
	g.lumberjacks.PlaceAt(components.Position{X: 3, Y: 3})

	f := g.Frame()
	if f.Cell(1, 2).Kind != systems.Tree {
		t.Errorf("frame cell = %v, want tree", f.Cell(1, 2).Kind)
	}

	f.Cells[0] = systems.NewCell(systems.ElderTree)
	f.Lumberjacks[0] = components.Position{}

	if g.grid.Cell(components.Position{}).Kind != systems.Blank {
		t.Error("frame shares the board")
	}
	if g.lumberjacks.Positions()[0] != (components.Position{X: 3, Y: 3}) {
		t.Error("frame shares agent positions")
	}
}

func TestOutputWritesYears(t *testing.T) {
	dir := t.TempDir()
	g, err := NewGame(testConfig(10, 36), Options{Seed: 5, Logger: quietLogger(), Headless: true, OutputDir: dir})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if err := g.Run(context.Background(), &countingRenderer{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}

	years, err := telemetry.ReadYears(filepath.Join(dir, "years.csv"))
	if err != nil {
		t.Fatalf("ReadYears: %v", err)
	}
	if len(years) != len(g.History()) {
		t.Fatalf("years.csv has %d rows, history has %d", len(years), len(g.History()))
	}
	for i, y := range years {
		if y != g.History()[i] {
			t.Errorf("row %d = %+v, want %+v", i, y, g.History()[i])
		}
		if y.Year != i+1 {
			t.Errorf("row %d year = %d, want %d", i, y.Year, i+1)
		}
	}
}

func TestAgentIndexMatchesPopulations(t *testing.T) {
	g, err := NewGame(testConfig(10, 100), Options{Seed: 9, Logger: quietLogger(), Headless: true})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	defer g.Close()

	for range 30 {
		g.Step()
	}
	lumberjacks, bears := g.agentCounts()
	if lumberjacks != g.Lumberjacks().Len() || bears != g.Bears().Len() {
		t.Errorf("world holds %d/%d agents, populations %d/%d",
			lumberjacks, bears, g.Lumberjacks().Len(), g.Bears().Len())
	}
}
