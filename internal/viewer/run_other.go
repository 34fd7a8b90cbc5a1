//go:build !windows

package viewer

import (
	"context"

	"go.klb.dev/clipview/internal/chain/memchain"
	"go.klb.dev/clipview/internal/clip"
)

// Run shows the clipboard until ctx is cancelled. Without a native viewer
// chain the viewer joins an in-process chain, and changes reported by the
// backend's watcher are delivered through it as clipboard writes.
func Run(ctx context.Context, cfg Config) error {
	bus := memchain.New()
	v := New(bus, cfg)
	if err := v.Open(bus.NewWindow()); err != nil {
		return err
	}
	defer v.Close()

	var changes <-chan struct{}
	if w, ok := cfg.Reader.(clip.Watcher); ok {
		changes = w.Watch(ctx)
	}
	return pump(ctx, bus, changes)
}
