// Package viewer ties the clipboard viewer together: it joins the chain when
// its window is ready, redraws on every clipboard change and leaves the chain
// when the window closes.
package viewer

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"go.klb.dev/clipview/internal/chain"
	"go.klb.dev/clipview/internal/classify"
	"go.klb.dev/clipview/internal/clip"
	"go.klb.dev/clipview/internal/render"
	"go.klb.dev/clipview/internal/settings"
)

// Title is the base window title.
const Title = "clipview"

// Display shows rendered frames. A Show error is treated like a failed
// change callback: the viewer leaves the chain and the error is returned.
type Display interface {
	Show(render.Frame) error
}

// Config holds the collaborators shared by every platform.
type Config struct {
	Reader   clip.Reader
	Display  Display
	Settings settings.Settings
	Logger   *slog.Logger
}

// Viewer is the orchestrator. Like chain.Monitor it is not safe for
// concurrent use.
type Viewer struct {
	cfg      Config
	monitor  *chain.Monitor
	classify func(clip.Snapshot) []classify.Run
	refresh  int
}

// New returns a viewer that joins the chain through t.
func New(t chain.Transport, cfg Config) *Viewer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Viewer{
		cfg:      cfg,
		monitor:  chain.NewMonitor(t, chain.WithLogger(cfg.Logger)),
		classify: classifySnapshot,
	}
}

// Open registers self in the chain. The transport delivers an initial
// change notification during registration, which draws the first frame.
func (v *Viewer) Open(self chain.Handle) error {
	if _, err := v.monitor.Register(self, v.Refresh); err != nil {
		return err
	}
	return nil
}

// Close leaves the chain. It is safe to call more than once.
func (v *Viewer) Close() error {
	return v.monitor.Deregister()
}

// Registered reports whether the viewer is in the chain.
func (v *Viewer) Registered() bool { return v.monitor.IsRegistered() }

// Monitor returns the chain monitor, whose HandleMessage must receive every
// chain message addressed to the viewer.
func (v *Viewer) Monitor() *chain.Monitor { return v.monitor }

// Refreshes returns how many times the clipboard has been read.
func (v *Viewer) Refreshes() int { return v.refresh }

// Refresh reads the clipboard, classifies text if there is any and shows the
// result.
func (v *Viewer) Refresh() error {
	v.refresh++
	snap := clip.Read(v.cfg.Reader)

	var runs []classify.Run
	switch snap.Status {
	case clip.HasText:
		runs = v.classify(snap)
	case clip.ReadError:
		v.cfg.Logger.Warn("clipboard read failed", "backend", v.cfg.Reader.Name(), "err", snap.Err)
	}
	logSnapshot(v.cfg.Logger, snap, runs)

	return v.cfg.Display.Show(render.Frame{
		Title:    render.TitleText(Title, v.cfg.Settings.Topmost),
		Snapshot: snap,
		Runs:     runs,
	})
}

func classifySnapshot(snap clip.Snapshot) []classify.Run {
	if snap.Units != nil {
		return classify.ClassifyUTF16(snap.Units)
	}
	return classify.Classify(snap.Text)
}

// previewLen caps the text logged at debug level.
const previewLen = 120

// logSnapshot logs each change at debug level with a short text preview.
func logSnapshot(l *slog.Logger, snap clip.Snapshot, runs []classify.Run) {
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	if snap.Status != clip.HasText {
		l.Debug("clipboard changed", "status", snap.Status)
		return
	}
	preview := snap.Text
	if utf8.RuneCountInString(preview) > previewLen {
		preview = string([]rune(preview)[:previewLen]) + "..."
	}
	l.Debug("clipboard changed", "status", snap.Status, "runs", len(runs), "preview", preview)
}
