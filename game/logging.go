package game

import "github.com/pthm-cable/forest/telemetry"

// logYear logs the yearly report, plus tick timing when enabled.
func (g *Game) logYear(stats telemetry.YearStats) {
	g.logger.Info("year", "report", stats)

	if g.logStats && g.perf.SampleCount() > 0 {
		g.logger.Info("perf", "tick", g.tick, "stats", g.perf.Stats())
	}
}

// logSummary logs the end of the run.
func (g *Game) logSummary() {
	census := g.grid.Census()
	g.logger.Info("simulation ended",
		"tick", g.tick,
		"reason", string(g.endReason),
		"vegetated", census.Vegetated(),
		"lumberjacks", g.lumberjacks.Len(),
		"bears", g.bears.Len(),
		"summary", g.Summary(),
	)
}
