package render

import (
	"context"
	"fmt"
	"image/color"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/forest/config"
	"github.com/pthm-cable/forest/game"
)

const hudHeight = 70

var toneRGBA = map[Tone]color.RGBA{
	ToneGround:     rl.Brown,
	ToneVegetation: rl.Lime,
	ToneLumberjack: rl.Red,
	ToneBear:       rl.Gold,
}

// Window draws frames in a raylib window with a pause control.
type Window struct {
	ctx      context.Context
	cellSize int32
	width    int32
	height   int32
	paused   bool
	last     game.Frame

	shouldClose func() bool
	present     func(f game.Frame, controls bool)
}

// NewWindow opens a window sized to the board. Cancelling ctx releases a
// paused or waiting window.
func NewWindow(ctx context.Context, cfg *config.Config) *Window {
	cellSize := int32(cfg.Screen.CellSize)
	boardPx := int32(cfg.Forest.Size) * cellSize
	width := max(boardPx, 320)
	height := boardPx + hudHeight

	rl.InitWindow(width, height, "Forest")
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	w := &Window{ctx: ctx, cellSize: cellSize, width: width, height: height}
	w.shouldClose = rl.WindowShouldClose
	w.present = w.draw
	return w
}

// Render implements game.Renderer. While paused it keeps redrawing the
// frame until the user resumes, closes the window, or ctx is cancelled.
func (w *Window) Render(f game.Frame) error {
	w.last = f
	for {
		if w.shouldClose() {
			return game.ErrRendererClosed
		}
		w.present(f, true)
		if !w.paused || w.ctx.Err() != nil {
			return nil
		}
	}
}

// WaitForKey keeps showing the last frame until a key is pressed, the
// window is closed, or ctx is cancelled.
func (w *Window) WaitForKey() {
	for !w.shouldClose() && w.ctx.Err() == nil {
		w.present(w.last, false)
		if rl.GetKeyPressed() != 0 {
			return
		}
	}
}

// Close closes the window.
func (w *Window) Close() error {
	rl.CloseWindow()
	return nil
}

func (w *Window) draw(f game.Frame, controls bool) {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	fontSize := w.cellSize - 4
	for y, row := range Compose(f) {
		for x, g := range row {
			text := string(g.Char)
			px := int32(x)*w.cellSize + (w.cellSize-rl.MeasureText(text, fontSize))/2
			py := int32(y)*w.cellSize + 2
			rl.DrawText(text, px, py, fontSize, toneRGBA[g.Tone])
		}
	}

	hudY := int32(f.Size) * w.cellSize
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Year: %d | Lumberjacks: %d | Bears: %d", f.Tick, f.Year, len(f.Lumberjacks), len(f.Bears)),
		10, hudY+8, 16, rl.LightGray,
	)

	status := "Running"
	switch {
	case f.State == game.StateEnded:
		status = fmt.Sprintf("Ended (%s) - press any key", f.EndReason)
	case w.paused:
		status = "PAUSED"
	}
	rl.DrawText(status, 10, hudY+32, 16, rl.Yellow)

	if controls && f.State == game.StateRunning {
		label := "Pause"
		if w.paused {
			label = "Resume"
		}
		bounds := rl.Rectangle{X: float32(w.width - 110), Y: float32(hudY + 28), Width: 100, Height: 30}
		if gui.Button(bounds, label) {
			w.paused = !w.paused
		}
	}

	rl.EndDrawing()
}
