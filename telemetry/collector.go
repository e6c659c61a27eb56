// Package telemetry provides yearly population reports, CSV output, run
// summaries and tick timing.
package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/forest/components"
)

// YearStats holds one year of the simulation: the census at year end plus
// the events counted during the year.
type YearStats struct {
	Year    int   `csv:"year"`
	EndTick int32 `csv:"tick"`

	// Census at year end
	Saplings    int `csv:"saplings"`
	Trees       int `csv:"trees"`
	ElderTrees  int `csv:"elder_trees"`
	Lumberjacks int `csv:"lumberjacks"`
	Bears       int `csv:"bears"`

	// Events during the year
	Sprouted       int `csv:"sprouted"`
	Matured        int `csv:"matured"`
	Elders         int `csv:"elders"`
	Harvests       int `csv:"harvests"`
	Lumber         int `csv:"lumber"`
	Maulings       int `csv:"maulings"`
	Hired          int `csv:"hired"`
	LaidOff        int `csv:"laid_off"`
	BearsArrived   int `csv:"bears_arrived"`
	BearsRemoved   int `csv:"bears_removed"`
	LumberjackPool int `csv:"total_lumber"`
}

// Census is the population state sampled when a year closes.
type Census struct {
	Saplings    int
	Trees       int
	ElderTrees  int
	Lumberjacks int
	Bears       int
	TotalLumber int
}

// Collector accumulates events within a year and produces YearStats.
type Collector struct {
	year int

	sprouted     int
	matured      int
	elders       int
	harvests     int
	lumber       int
	maulings     int
	hired        int
	laidOff      int
	bearsArrived int
	bearsRemoved int
}

// NewCollector creates a collector starting at year one.
func NewCollector() *Collector {
	return &Collector{year: 1}
}

// RecordGrowth records saplings planted and stage transitions.
func (c *Collector) RecordGrowth(sprouted, matured, elders int) {
	c.sprouted += sprouted
	c.matured += matured
	c.elders += elders
}

// RecordHarvest records a harvested tree and the lumber it yielded.
func (c *Collector) RecordHarvest(lumber int) {
	c.harvests++
	c.lumber += lumber
}

// RecordMauling records a lumberjack killed by a bear.
func (c *Collector) RecordMauling() {
	c.maulings++
}

// RecordArrival records an agent added to a population.
func (c *Collector) RecordArrival(kind components.Kind) {
	if kind == components.KindLumberjack {
		c.hired++
	} else {
		c.bearsArrived++
	}
}

// RecordDeparture records an agent removed by rebalancing.
func (c *Collector) RecordDeparture(kind components.Kind) {
	if kind == components.KindLumberjack {
		c.laidOff++
	} else {
		c.bearsRemoved++
	}
}

// Year returns the year currently being collected.
func (c *Collector) Year() int {
	return c.year
}

// Flush produces the YearStats of the current year and starts the next.
func (c *Collector) Flush(tick int32, census Census) YearStats {
	stats := YearStats{
		Year:    c.year,
		EndTick: tick,

		Saplings:    census.Saplings,
		Trees:       census.Trees,
		ElderTrees:  census.ElderTrees,
		Lumberjacks: census.Lumberjacks,
		Bears:       census.Bears,

		Sprouted:       c.sprouted,
		Matured:        c.matured,
		Elders:         c.elders,
		Harvests:       c.harvests,
		Lumber:         c.lumber,
		Maulings:       c.maulings,
		Hired:          c.hired,
		LaidOff:        c.laidOff,
		BearsArrived:   c.bearsArrived,
		BearsRemoved:   c.bearsRemoved,
		LumberjackPool: census.TotalLumber,
	}

	// Reset for next year
	*c = Collector{year: c.year + 1}

	return stats
}

// LogValue implements slog.LogValuer for structured logging.
func (s YearStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("year", s.Year),
		slog.Int("tick", int(s.EndTick)),
		slog.Int("saplings", s.Saplings),
		slog.Int("trees", s.Trees),
		slog.Int("elder_trees", s.ElderTrees),
		slog.Int("lumberjacks", s.Lumberjacks),
		slog.Int("bears", s.Bears),
		slog.Int("lumber", s.Lumber),
		slog.Int("maulings", s.Maulings),
		slog.Int("hired", s.Hired),
		slog.Int("laid_off", s.LaidOff),
		slog.Int("bears_arrived", s.BearsArrived),
		slog.Int("bears_removed", s.BearsRemoved),
	)
}
