// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Forest     ForestConfig     `yaml:"forest"`
	Growth     GrowthConfig     `yaml:"growth"`
	Population PopulationConfig `yaml:"population"`
	Sim        SimConfig        `yaml:"sim"`
	Screen     ScreenConfig     `yaml:"screen"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ForestConfig holds board dimensions and initial vegetation.
type ForestConfig struct {
	Size         int     `yaml:"size"`          // Board side length in cells
	TreeCoverage float64 `yaml:"tree_coverage"` // Fraction of cells seeded as trees
}

// GrowthConfig holds aging thresholds and propagation chances.
type GrowthConfig struct {
	SaplingMaturity int `yaml:"sapling_maturity"` // Sapling -> Tree at this age
	ElderMaturity   int `yaml:"elder_maturity"`   // Tree -> ElderTree at this age
	TreeSpread      int `yaml:"tree_spread"`      // Chance denominator for trees
	ElderSpread     int `yaml:"elder_spread"`     // Chance denominator for elder trees
}

// PopulationConfig holds agent population parameters.
type PopulationConfig struct {
	LumberjackFraction float64 `yaml:"lumberjack_fraction"` // Initial lumberjacks as a fraction of cells
	BearFraction       float64 `yaml:"bear_fraction"`       // Initial bears as a fraction of cells
	LumberjackMoves    int     `yaml:"lumberjack_moves"`    // Move attempts per tick
	BearMoves          int     `yaml:"bear_moves"`          // Move attempts per tick
	RebalanceInterval  int     `yaml:"rebalance_interval"`  // Ticks between population rebalances
}

// SimConfig holds loop parameters.
type SimConfig struct {
	TimeMax      int `yaml:"time_max"`       // Tick budget
	FrameDelayMS int `yaml:"frame_delay_ms"` // Delay between rendered ticks
}

// ScreenConfig holds window renderer settings.
type ScreenConfig struct {
	CellSize  int `yaml:"cell_size"`
	TargetFPS int `yaml:"target_fps"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // Ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Cells              int           // Forest.Size squared
	InitialTrees       int           // Trees placed by seeding
	InitialLumberjacks int           // Bootstrap lumberjack count
	InitialBears       int           // Bootstrap bear count
	FrameDelay         time.Duration // Sim.FrameDelayMS as a duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Forest.Size < 2 {
		errs = append(errs, fmt.Errorf("forest.size must be at least 2, got %d", c.Forest.Size))
	}
	if c.Forest.TreeCoverage < 0 || c.Forest.TreeCoverage > 1 {
		errs = append(errs, fmt.Errorf("forest.tree_coverage must be in [0,1], got %g", c.Forest.TreeCoverage))
	}
	if c.Growth.TreeSpread < 1 || c.Growth.ElderSpread < 1 {
		errs = append(errs, errors.New("growth spread chances must be at least 1"))
	}
	if c.Growth.SaplingMaturity < 1 || c.Growth.ElderMaturity < 1 {
		errs = append(errs, errors.New("growth maturity ages must be at least 1"))
	}
	if c.Population.LumberjackFraction < 0 || c.Population.BearFraction < 0 ||
		c.Population.LumberjackFraction+c.Population.BearFraction > 1 {
		errs = append(errs, errors.New("population fractions must be non-negative and sum to at most 1"))
	}
	if c.Population.LumberjackMoves < 0 || c.Population.BearMoves < 0 {
		errs = append(errs, errors.New("population move attempts must be non-negative"))
	}
	if c.Population.RebalanceInterval < 1 {
		errs = append(errs, fmt.Errorf("population.rebalance_interval must be at least 1, got %d", c.Population.RebalanceInterval))
	}
	if c.Sim.TimeMax < 0 || c.Sim.FrameDelayMS < 0 {
		errs = append(errs, errors.New("sim.time_max and sim.frame_delay_ms must be non-negative"))
	}
	if c.Sim.TimeMax > math.MaxInt32 {
		errs = append(errs, fmt.Errorf("sim.time_max must be at most %d, got %d", math.MaxInt32, c.Sim.TimeMax))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Call it again after changing fields programmatically.
func (c *Config) ComputeDerived() {
	cells := c.Forest.Size * c.Forest.Size
	c.Derived.Cells = cells
	c.Derived.InitialTrees = int(math.Ceil(float64(cells) * c.Forest.TreeCoverage))
	c.Derived.InitialLumberjacks = populationSize(cells, c.Population.LumberjackFraction)
	c.Derived.InitialBears = populationSize(cells, c.Population.BearFraction)
	c.Derived.FrameDelay = time.Duration(c.Sim.FrameDelayMS) * time.Millisecond
}

// populationSize is round(cells * fraction), never less than one agent.
func populationSize(cells int, fraction float64) int {
	n := int(math.Round(float64(cells) * fraction))
	if n < 1 {
		n = 1
	}
	return n
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
