package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/pthm-cable/forest/game"
)

// ANSI escape sequences
const (
	escHome       = "\x1b[H"
	escClear      = "\x1b[2J"
	escReset      = "\x1b[0m"
	escHideCursor = "\x1b[?25l"
	escShowCursor = "\x1b[?25h"
)

var toneColors = map[Tone]string{
	ToneGround:     "\x1b[33m", // yellow
	ToneVegetation: "\x1b[32m", // green
	ToneLumberjack: "\x1b[31m", // red
	ToneBear:       "\x1b[1;33m",
}

// Terminal draws frames as a coloured character grid.
type Terminal struct {
	out   *bufio.Writer
	color bool
	init  bool
}

// NewTerminal creates a terminal renderer writing to w. Colour is disabled
// when w is not a terminal.
func NewTerminal(w io.Writer) *Terminal {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Terminal{out: bufio.NewWriter(w), color: color}
}

// Render implements game.Renderer.
func (t *Terminal) Render(f game.Frame) error {
	if !t.init {
		t.out.WriteString(escClear + escHideCursor)
		t.init = true
	}
	t.out.WriteString(escHome)

	for _, row := range Compose(f) {
		current := Tone(255)
		for _, g := range row {
			if t.color && g.Tone != current {
				t.out.WriteString(toneColors[g.Tone])
				current = g.Tone
			}
			t.out.WriteByte(g.Char)
		}
		if t.color {
			t.out.WriteString(escReset)
		}
		t.out.WriteByte('\n')
	}
	fmt.Fprintf(t.out, "\ntick %-5d year %-4d lumberjacks %-4d bears %-4d\x1b[K\n",
		f.Tick, f.Year, len(f.Lumberjacks), len(f.Bears))
	if f.State == game.StateEnded {
		fmt.Fprintf(t.out, "ended: %s - press any key\x1b[K\n", f.EndReason)
	}

	return t.out.Flush()
}

// Close restores the cursor.
func (t *Terminal) Close() error {
	if t.init {
		t.out.WriteString(escReset + escShowCursor)
	}
	return t.out.Flush()
}

// WaitForKey blocks until a single byte can be read from in. A terminal is
// switched to raw mode so the key does not need Enter.
func WaitForKey(in io.Reader) error {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("entering raw mode: %w", err)
		}
		defer term.Restore(fd, state)
	}

	var buf [1]byte
	if _, err := in.Read(buf[:]); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading key: %w", err)
	}
	return nil
}
