package render

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"go.klb.dev/clipview/internal/classify"
	"go.klb.dev/clipview/internal/clip"
)

// Frame is one complete redraw of the viewer.
type Frame struct {
	Title    string
	Snapshot clip.Snapshot
	Runs     []classify.Run
}

// Terminal shows frames on a terminal or any other writer.
type Terminal struct {
	out   *termenv.Output
	r     *Renderer
	clear bool
}

// NewTerminal returns a display writing to w. With clearScreen every frame
// replaces the previous one; otherwise frames are appended, separated by a
// blank line.
func NewTerminal(w io.Writer, r *Renderer, clearScreen bool) *Terminal {
	return &Terminal{out: termenv.NewOutput(w), r: r, clear: clearScreen}
}

// Show draws f.
func (t *Terminal) Show(f Frame) error {
	if t.clear {
		t.out.ClearScreen()
	}
	if f.Title != "" {
		if _, err := fmt.Fprintln(t.out, t.r.title.Render(f.Title)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(t.out, t.r.Snapshot(f.Snapshot, f.Runs)); err != nil {
		return err
	}
	if !t.clear {
		_, err := fmt.Fprintln(t.out)
		return err
	}
	return nil
}
