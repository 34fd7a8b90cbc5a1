// Package clip reads the system clipboard as text and reports the result as
// a Snapshot. Build constraints select the backend:
//
//	native_windows.go  Windows via user32 (raw UTF-16, lock errors surfaced)
//	design.go          macOS / Linux via golang.design/x/clipboard, polled
//	atotto.go          fallback via github.com/atotto/clipboard (xclip, xsel, wl-paste)
//	headless.go        no display available
package clip

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf16"
)

// ErrUnavailable is wrapped by read errors caused by the clipboard being
// inaccessible, typically because another process holds it open.
var ErrUnavailable = errors.New("clipboard unavailable")

// Reader is the clipboard read API.
type Reader interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ContainsText reports whether the clipboard currently holds text.
	ContainsText() bool

	// Text returns the clipboard text. It may fail even after ContainsText
	// returned true, for example when the clipboard is locked.
	Text() (string, error)
}

// UTF16Reader is implemented by backends whose native text format is UTF-16.
// Raw code units keep lone surrogates observable.
type UTF16Reader interface {
	TextUTF16() ([]uint16, error)
}

// Watcher is implemented by backends that detect changes themselves. The
// returned channel receives a signal after each change and is never closed;
// sends are coalesced, so a burst of writes may produce a single signal.
type Watcher interface {
	Watch(ctx context.Context) <-chan struct{}
}

// Status is the outcome of one read.
type Status int

const (
	HasText Status = iota + 1
	EmptyText
	NotText
	ReadError
)

func (s Status) String() string {
	switch s {
	case HasText:
		return "has_text"
	case EmptyText:
		return "empty_text"
	case NotText:
		return "not_text"
	case ReadError:
		return "read_error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Snapshot is the result of one read. Text is set only for HasText; Units
// additionally holds the raw UTF-16 text when the backend provides it. Err is
// set only for ReadError.
type Snapshot struct {
	Status Status
	Text   string
	Units  []uint16
	Err    error
}

// Detail returns the error message of a ReadError snapshot.
func (s Snapshot) Detail() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Read takes one snapshot of r. Text is only requested when r reports that
// the clipboard holds text. Read never fails: errors, including panics in the
// backend, become a ReadError snapshot.
func Read(r Reader) (snap Snapshot) {
	defer func() {
		if p := recover(); p != nil {
			snap = Snapshot{Status: ReadError, Err: fmt.Errorf("%w: %s: %v", ErrUnavailable, r.Name(), p)}
		}
	}()

	if !r.ContainsText() {
		return Snapshot{Status: NotText}
	}

	var (
		text  string
		units []uint16
		err   error
	)
	if ur, ok := r.(UTF16Reader); ok {
		units, err = ur.TextUTF16()
		text = string(utf16.Decode(units))
	} else {
		text, err = r.Text()
	}
	if err != nil {
		return Snapshot{Status: ReadError, Err: err}
	}
	if text == "" {
		return Snapshot{Status: EmptyText}
	}
	return Snapshot{Status: HasText, Text: text, Units: units}
}
