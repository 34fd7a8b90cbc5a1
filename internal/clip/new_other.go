//go:build !windows

package clip

import (
	"log/slog"

	"github.com/atotto/clipboard"
	design "golang.design/x/clipboard"
)

// New returns the best available backend: golang.design/x/clipboard when it
// initialises, the atotto exec backend when a clipboard tool is installed,
// and a headless no-op backend otherwise. clipboard.Init is called here rather
// than in init() so that sub-commands that never read the clipboard don't log
// spurious warnings on headless systems.
func New() Reader {
	err := design.Init()
	if err == nil {
		return designBackend{}
	}
	if !clipboard.Unsupported {
		slog.Warn("clipboard init failed, falling back to clipboard tools", "err", err)
		return atottoBackend{}
	}
	slog.Warn("clipboard unavailable, running headless", "err", err)
	return headlessBackend{}
}
