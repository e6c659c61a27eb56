package systems

import "github.com/pthm-cable/forest/components"

// CellKind is the vegetation state of a board cell.
type CellKind uint8

const (
	Blank CellKind = iota
	Sapling
	Tree
	ElderTree
)

// NewCellAge is the age a growth stage starts at.
const NewCellAge = 1

// String returns the kind's name.
func (k CellKind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Sapling:
		return "sapling"
	case Tree:
		return "tree"
	case ElderTree:
		return "elder_tree"
	}
	return "unknown"
}

// Glyph returns the character drawn for the kind.
func (k CellKind) Glyph() byte {
	switch k {
	case Sapling:
		return ','
	case Tree:
		return '|'
	case ElderTree:
		return '%'
	}
	return '.'
}

// Cell is one board location.
type Cell struct {
	Kind CellKind
	Age  int // Ticks in the current growth stage, starting at NewCellAge
}

// NewCell returns a cell of the given kind at the start of its stage.
func NewCell(kind CellKind) Cell {
	if kind == Blank {
		return Cell{}
	}
	return Cell{Kind: kind, Age: NewCellAge}
}

// Census counts cells per kind.
type Census struct {
	Blank      int
	Saplings   int
	Trees      int
	ElderTrees int
}

// Vegetated returns the number of non-blank cells.
func (c Census) Vegetated() int {
	return c.Saplings + c.Trees + c.ElderTrees
}

// Grid is the square board of cells. Cells are stored row-major.
type Grid struct {
	size  int
	cells []Cell
	rng   Rand
}

// NewGrid creates an all-blank board.
func NewGrid(size int, rng Rand) *Grid {
	return &Grid{
		size:  size,
		cells: make([]Cell, size*size),
		rng:   rng,
	}
}

// Size returns the board side length.
func (g *Grid) Size() int {
	return g.size
}

func (g *Grid) index(p components.Position) int {
	return p.Y*g.size + p.X
}

// Cell returns the cell at p.
func (g *Grid) Cell(p components.Position) Cell {
	return g.cells[g.index(p)]
}

// Set replaces the cell at p.
func (g *Grid) Set(p components.Position, c Cell) {
	g.cells[g.index(p)] = c
}

// Cells returns a copy of the board, row-major.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// Seed blanks the board, then plants trees on random blank cells until
// count cells are trees. count is clamped to the board size.
func (g *Grid) Seed(count int) {
	clear(g.cells)
	if count > len(g.cells) {
		count = len(g.cells)
	}
	for planted := 0; planted < count; {
		p := RandomCell(g.rng, g.size)
		if g.Cell(p).Kind == Blank {
			g.Set(p, NewCell(Tree))
			planted++
		}
	}
}

// Age advances every cell of kind from by one tick. A cell whose age has
// reached threshold becomes kind to, starting its new stage.
// Returns the number of cells that transitioned.
func (g *Grid) Age(from, to CellKind, threshold int) int {
	transitions := 0
	for i := range g.cells {
		c := &g.cells[i]
		if c.Kind != from {
			continue
		}
		if c.Age >= threshold {
			*c = NewCell(to)
			transitions++
		} else {
			c.Age++
		}
	}
	return transitions
}

// Propagate gives each cell of kind a 1/chance chance to drop a sapling on
// a random adjacent cell. Only blank targets take the sapling. Saplings
// planted during the pass do not propagate themselves.
// Returns the number of saplings planted.
func (g *Grid) Propagate(kind CellKind, chance int) int {
	planted := 0
	for i := range g.cells {
		if g.cells[i].Kind != kind {
			continue
		}
		if g.rng.Intn(chance) != 0 {
			continue
		}
		origin := components.Position{X: i % g.size, Y: i / g.size}
		target := RandomAdjacent(g.rng, origin, g.size)
		if g.Cell(target).Kind == Blank {
			g.Set(target, NewCell(Sapling))
			planted++
		}
	}
	return planted
}

// NonEmpty reports whether any cell is not blank.
func (g *Grid) NonEmpty() bool {
	for _, c := range g.cells {
		if c.Kind != Blank {
			return true
		}
	}
	return false
}

// Harvest clears a tree or elder tree at p and returns the lumber it
// yields (1 or 2). Any other cell yields 0 and is left unchanged.
func (g *Grid) Harvest(p components.Position) int {
	var yield int
	switch g.Cell(p).Kind {
	case Tree:
		yield = 1
	case ElderTree:
		yield = 2
	default:
		return 0
	}
	g.Set(p, Cell{})
	return yield
}

// Census counts the cells of each kind.
func (g *Grid) Census() Census {
	var c Census
	for _, cell := range g.cells {
		switch cell.Kind {
		case Blank:
			c.Blank++
		case Sapling:
			c.Saplings++
		case Tree:
			c.Trees++
		case ElderTree:
			c.ElderTrees++
		}
	}
	return c
}
