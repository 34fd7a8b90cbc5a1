//go:build windows

package viewer

import (
	"context"
	"log/slog"

	"go.klb.dev/clipview/internal/winhost"
)

// Run shows the clipboard until ctx is cancelled, taking part in the system
// clipboard viewer chain through a hidden window.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	host := winhost.New(winhost.WithLogger(cfg.Logger))
	v := New(host, cfg)
	return host.Run(ctx, v.Open, v.Close)
}
