// Package render draws simulation frames: to an ANSI terminal, to a raylib
// window, or nowhere at all.
package render

import (
	"github.com/pthm-cable/forest/components"
	"github.com/pthm-cable/forest/game"
	"github.com/pthm-cable/forest/systems"
)

// Tone is the colour class of a drawn glyph.
type Tone uint8

const (
	ToneGround Tone = iota
	ToneVegetation
	ToneLumberjack
	ToneBear
)

// Glyph is one drawn board position.
type Glyph struct {
	Char byte
	Tone Tone
}

// Compose lays out the frame as rows of glyphs. Agents are drawn over the
// board, bears last.
func Compose(f game.Frame) [][]Glyph {
	rows := make([][]Glyph, f.Size)
	for y := range rows {
		rows[y] = make([]Glyph, f.Size)
		for x := range rows[y] {
			rows[y][x] = cellGlyph(f.Cell(x, y))
		}
	}
	for _, p := range f.Lumberjacks {
		rows[p.Y][p.X] = Glyph{Char: components.KindLumberjack.Glyph(), Tone: ToneLumberjack}
	}
	for _, p := range f.Bears {
		rows[p.Y][p.X] = Glyph{Char: components.KindBear.Glyph(), Tone: ToneBear}
	}
	return rows
}

func cellGlyph(c systems.Cell) Glyph {
	tone := ToneVegetation
	if c.Kind == systems.Blank {
		tone = ToneGround
	}
	return Glyph{Char: c.Kind.Glyph(), Tone: tone}
}

// Headless discards frames.
type Headless struct{}

// Render implements game.Renderer.
func (Headless) Render(game.Frame) error {
	return nil
}
