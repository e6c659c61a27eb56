package game

import (
	"errors"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forest/components"
	"github.com/pthm-cable/forest/systems"
	"github.com/pthm-cable/forest/telemetry"
)

// updateGrowth ages every growth stage, then lets mature trees spread.
func (g *Game) updateGrowth() {
	growth := &g.cfg.Growth

	matured := g.grid.Age(systems.Sapling, systems.Tree, growth.SaplingMaturity)
	elders := g.grid.Age(systems.Tree, systems.ElderTree, growth.ElderMaturity)

	sprouted := g.grid.Propagate(systems.Tree, growth.TreeSpread)
	sprouted += g.grid.Propagate(systems.ElderTree, growth.ElderSpread)

	g.collector.RecordGrowth(sprouted, matured, elders)
}

// updateLumberjacks moves every lumberjack up to LumberjackMoves times.
// A lumberjack stops early when it harvests a tree or walks into a bear.
func (g *Game) updateLumberjacks() {
	moves := g.cfg.Population.LumberjackMoves
	g.lumberjacks.Each(func(e ecs.Entity) bool {
		for range moves {
			if g.stepLumberjack(e) {
				break
			}
		}
		return true
	})
}

// stepLumberjack makes one move and reports whether it ended the
// lumberjack's turn.
func (g *Game) stepLumberjack(e ecs.Entity) bool {
	pos, ok := g.lumberjacks.RandomStep(e)
	if !ok {
		return false
	}
	g.lumberjacks.MoveTo(e, pos)

	if bear, ok := g.bears.At(pos); ok {
		g.bears.Agent(bear).Kills++
		g.lumberjacks.Remove(e)
		g.recordAttack()
		return true
	}

	if lumber := g.grid.Harvest(pos); lumber > 0 {
		g.lumberjacks.Agent(e).Lumber += lumber
		g.collector.RecordHarvest(lumber)
		return true
	}
	return false
}

// updateBears moves every bear up to BearMoves times. A bear that lands on
// a lumberjack kills it and stops for the tick.
func (g *Game) updateBears() {
	moves := g.cfg.Population.BearMoves
	g.bears.Each(func(b ecs.Entity) bool {
		for range moves {
			pos, ok := g.bears.RandomStep(b)
			if !ok {
				break
			}
			g.bears.MoveTo(b, pos)

			if victim, ok := g.lumberjacks.At(pos); ok {
				g.lumberjacks.Remove(victim)
				g.bears.Agent(b).Kills++
				g.recordAttack()
				break
			}
		}
		return true
	})
}

func (g *Game) recordAttack() {
	g.bearAttacks++
	g.collector.RecordMauling()
}

// ensureLumberjack hires a lumberjack when none are left.
func (g *Game) ensureLumberjack() {
	if g.lumberjacks.Len() == 0 {
		g.appendAgent(g.lumberjacks, g.bears)
	}
}

// rebalance is the yearly population adjustment. Bears pay for attacks by
// losing a member and grow by one otherwise. Lumberjacks are hired in
// proportion to lumber per head, or one is laid off.
func (g *Game) rebalance() {
	if g.bearAttacks > 0 {
		g.bearAttacks = 0
		g.removeTail(g.bears)
	} else {
		g.appendAgent(g.bears, g.lumberjacks)
	}

	total := g.lumberjacks.TotalLumber()
	count := g.lumberjacks.Len()
	if count > 0 && total > count {
		for range total / count {
			if !g.appendAgent(g.lumberjacks, g.bears) {
				break
			}
		}
	} else {
		g.removeTail(g.lumberjacks)
	}
}

// appendAgent adds one agent to pop on a cell free of both populations.
func (g *Game) appendAgent(pop, avoid *systems.Population) bool {
	if _, err := pop.Append(avoid); err != nil {
		if errors.Is(err, systems.ErrBoardFull) {
			g.logger.Debug("no room for new agent", "kind", pop.Kind().String(), "tick", g.tick)
		}
		return false
	}
	g.collector.RecordArrival(pop.Kind())
	return true
}

func (g *Game) removeTail(pop *systems.Population) {
	if pop.RemoveTail() {
		g.collector.RecordDeparture(pop.Kind())
	}
}

// closeYear records the year's statistics and writes them out.
func (g *Game) closeYear() {
	census := g.grid.Census()
	stats := g.collector.Flush(g.tick, telemetry.Census{
		Saplings:    census.Saplings,
		Trees:       census.Trees,
		ElderTrees:  census.ElderTrees,
		Lumberjacks: g.lumberjacks.Len(),
		Bears:       g.bears.Len(),
		TotalLumber: g.lumberjacks.TotalLumber(),
	})
	g.history = append(g.history, stats)
	g.logYear(stats)

	if err := g.output.WriteYear(stats); err != nil {
		g.logger.Error("failed to write year", "year", stats.Year, "error", err)
	}

	g.checkAgentIndex()
}

// agentCounts counts agent entities in the ECS world by kind.
func (g *Game) agentCounts() (lumberjacks, bears int) {
	query := g.agentFilter.Query()
	for query.Next() {
		agent := query.Get()
		if agent.Kind == components.KindBear {
			bears++
		} else {
			lumberjacks++
		}
	}
	return lumberjacks, bears
}

// checkAgentIndex verifies that every agent entity belongs to a population.
func (g *Game) checkAgentIndex() {
	lumberjacks, bears := g.agentCounts()
	if lumberjacks != g.lumberjacks.Len() || bears != g.bears.Len() {
		g.logger.Error("agent index out of sync",
			"world_lumberjacks", lumberjacks, "lumberjacks", g.lumberjacks.Len(),
			"world_bears", bears, "bears", g.bears.Len(),
		)
	}
}
