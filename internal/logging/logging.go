// Package logging builds the slog loggers used by clipview.
//
// Logs always go to a stream separate from the viewer output: the watch
// command redraws stdout on every clipboard change, so diagnostics default to
// stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a string to a Format. Unknown values are an error so
// that a typo in clipview.toml is reported instead of silently ignored.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "text", "tint", "human":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatAuto, fmt.Errorf("unknown log format %q (want auto, text or json)", s)
	}
}

// ParseLevel converts a string such as "debug" or "WARN+2" to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q: %w", s, err)
	}
	return l, nil
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// Options configures New.
type Options struct {
	Format Format
	Level  slog.Level
	// NoColor disables ANSI colour in text output.
	NoColor bool
}

// New returns a logger writing to w. FormatAuto picks coloured text when w is
// a terminal and JSON otherwise.
func New(w io.Writer, opts Options) *slog.Logger {
	tty := IsTTY(w)
	useTint := opts.Format == FormatText || (opts.Format == FormatAuto && tty)

	var h slog.Handler
	if useTint {
		h = tinter.NewHandler(w, &tinter.Options{
			Level:      opts.Level,
			TimeFormat: "15:04:05.000",
			NoColor:    opts.NoColor || !tty,
		})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: opts.Level,
		})
	}
	return slog.New(h)
}

// Setup installs a stderr logger as the slog default and returns it.
func Setup(opts Options) *slog.Logger {
	l := New(os.Stderr, opts)
	slog.SetDefault(l)
	return l
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
