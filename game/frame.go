package game

import (
	"github.com/pthm-cable/forest/components"
	"github.com/pthm-cable/forest/systems"
)

// Frame is a read-only snapshot of the simulation after a tick.
// It owns copies of the board and agent positions.
type Frame struct {
	Tick        int32
	Year        int
	Size        int
	Cells       []systems.Cell // row-major
	Lumberjacks []components.Position
	Bears       []components.Position
	State       State
	EndReason   EndReason
}

// Cell returns the board cell at column x, row y.
func (f Frame) Cell(x, y int) systems.Cell {
	return f.Cells[y*f.Size+x]
}

// Frame captures the current state for rendering.
func (g *Game) Frame() Frame {
	return Frame{
		Tick:        g.tick,
		Year:        g.collector.Year(),
		Size:        g.grid.Size(),
		Cells:       g.grid.Cells(),
		Lumberjacks: g.lumberjacks.Positions(),
		Bears:       g.bears.Positions(),
		State:       g.state,
		EndReason:   g.endReason,
	}
}
