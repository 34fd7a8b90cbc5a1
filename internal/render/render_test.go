package render

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"go.klb.dev/clipview/internal/classify"
	"go.klb.dev/clipview/internal/clip"
)

func plain() *Renderer { return New(io.Discard, WithColor(false)) }

func TestRuns(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tabs and spaces", "foo\tbar  baz\n", "foo↦ bar␣␣baz⏎\n"},
		{"line endings", "a\r\nb\rc\nd", "a⏎\nb⏎\nc⏎\nd"},
		{"consecutive breaks", "a\n\n\nb", "a⏎\n⏎\n⏎\nb"},
		{"double tab", "\t\tx", "↦ ↦ x"},
		{"ideographic space", "a\u3000\u3000b", "a□□b"},
		{"controls", "\x01\x7f\u00A0", `^A^?\u00A0`},
		{"emoji", "\U0001F600", `\u{01F600}`},
		{"plain", "hello", "hello"},
	}
	r := plain()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Runs(classify.Classify(tt.in)))
		})
	}
}

func TestRunsBreakMarkersMatchUnits(t *testing.T) {
	out := plain().Runs(classify.Classify("a\r\nb\rc\nd"))
	assert.Equal(t, 3, strings.Count(out, MarkLineBreak))
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestSnapshotPlaceholders(t *testing.T) {
	r := plain()

	notText := r.Snapshot(clip.Snapshot{Status: clip.NotText}, nil)
	empty := r.Snapshot(clip.Snapshot{Status: clip.EmptyText}, nil)
	failed := r.Snapshot(clip.Snapshot{Status: clip.ReadError, Err: errors.New("clipboard\nlocked")}, nil)
	text := r.Snapshot(clip.Snapshot{Status: clip.HasText, Text: "x"}, classify.Classify("x"))

	assert.Equal(t, PlaceholderNotText, notText)
	assert.Equal(t, PlaceholderEmpty, empty)
	assert.Equal(t, "(error: clipboard locked)", failed)
	assert.Equal(t, "x", text)

	seen := map[string]bool{}
	for _, s := range []string{notText, empty, failed, text} {
		assert.NotEmpty(t, s)
		assert.False(t, seen[s], "duplicate rendering %q", s)
		seen[s] = true
	}
}

func TestErrorMessageWithoutDetail(t *testing.T) {
	assert.Equal(t, "(error: unknown)", ErrorMessage("  "))
}

func TestColorProfile(t *testing.T) {
	r := New(io.Discard, WithProfile(termenv.ANSI256))
	out := r.Runs(classify.Classify(" "))
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, MarkSpace)

	out = r.Snapshot(clip.Snapshot{Status: clip.NotText}, nil)
	assert.Contains(t, out, PlaceholderNotText)
	assert.Contains(t, out, "\x1b[3;", "placeholder is italic")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "clipview", TitleText("clipview", false))
	assert.Equal(t, "clipview (Top Most)", TitleText("clipview", true))
	assert.Equal(t, "clipview (Top Most)", plain().Title("clipview", true))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestTerminalShow(t *testing.T) {
	var buf strings.Builder
	term := NewTerminal(&buf, plain(), false)

	err := term.Show(Frame{
		Title:    TitleText("clipview", true),
		Snapshot: clip.Snapshot{Status: clip.HasText, Text: "a b"},
		Runs:     classify.Classify("a b"),
	})
	assert.NoError(t, err)
	assert.NoError(t, term.Show(Frame{Snapshot: clip.Snapshot{Status: clip.NotText}}))

	assert.Equal(t, "clipview (Top Most)\na␣b\n\n(not text)\n\n", buf.String())
}

func TestTerminalShowWriteError(t *testing.T) {
	term := NewTerminal(failingWriter{}, plain(), false)
	assert.Error(t, term.Show(Frame{Snapshot: clip.Snapshot{Status: clip.EmptyText}}))
}
