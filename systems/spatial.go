// Package systems provides the board, agent populations and the geometry
// helpers the simulation is built from.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forest/components"
)

// OccupancyGrid maps board cells to the entity standing on them.
// One grid serves one population; cells hold the zero entity when empty.
type OccupancyGrid struct {
	size  int
	cells []ecs.Entity
	count int
}

// NewOccupancyGrid creates an empty grid for a square board.
func NewOccupancyGrid(size int) *OccupancyGrid {
	return &OccupancyGrid{
		size:  size,
		cells: make([]ecs.Entity, size*size),
	}
}

func (g *OccupancyGrid) index(p components.Position) int {
	return p.Y*g.size + p.X
}

// At returns the entity at p, if any.
func (g *OccupancyGrid) At(p components.Position) (ecs.Entity, bool) {
	if !p.InBounds(g.size) {
		return ecs.Entity{}, false
	}
	e := g.cells[g.index(p)]
	return e, !e.IsZero()
}

// Occupied reports whether any entity stands on p.
func (g *OccupancyGrid) Occupied(p components.Position) bool {
	_, ok := g.At(p)
	return ok
}

// Insert records e at p.
func (g *OccupancyGrid) Insert(e ecs.Entity, p components.Position) {
	i := g.index(p)
	if g.cells[i].IsZero() {
		g.count++
	}
	g.cells[i] = e
}

// Remove clears p if it still holds e.
func (g *OccupancyGrid) Remove(e ecs.Entity, p components.Position) {
	i := g.index(p)
	if g.cells[i] == e {
		g.cells[i] = ecs.Entity{}
		g.count--
	}
}

// Count returns the number of occupied cells.
func (g *OccupancyGrid) Count() int {
	return g.count
}

// Clear empties the grid.
func (g *OccupancyGrid) Clear() {
	clear(g.cells)
	g.count = 0
}
