// Package render draws classified clipboard text on a terminal, making
// invisible characters visible with coloured markers.
package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"go.klb.dev/clipview/internal/classify"
	"go.klb.dev/clipview/internal/clip"
)

// Markers drawn in place of invisible characters.
const (
	MarkLineBreak        = "⏎"
	MarkTab              = "↦"
	MarkSpace            = "␣"
	MarkIdeographicSpace = "□"
)

// Placeholders for snapshots that carry no text.
const (
	PlaceholderNotText = "(not text)"
	PlaceholderEmpty   = "(empty)"
)

// TopmostSuffix is appended to the title while the topmost setting is on.
const TopmostSuffix = " (Top Most)"

// Theme holds the colours used by a Renderer.
type Theme struct {
	Marker  lipgloss.TerminalColor
	NotText lipgloss.TerminalColor
	Empty   lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Title   lipgloss.TerminalColor
}

// DefaultTheme draws every marker red and the placeholders in three
// different colours.
func DefaultTheme() Theme {
	return Theme{
		Marker:  lipgloss.Color("#FF0000"),
		NotText: lipgloss.Color("#B22222"),
		Empty:   lipgloss.Color("#808080"),
		Error:   lipgloss.Color("#FF8C00"),
		Title:   lipgloss.AdaptiveColor{Light: "#343433", Dark: "#C1C6B2"},
	}
}

// Renderer turns runs and snapshots into styled strings.
type Renderer struct {
	marker  lipgloss.Style
	notText lipgloss.Style
	empty   lipgloss.Style
	errMsg  lipgloss.Style
	title   lipgloss.Style
}

type config struct {
	theme   Theme
	profile *termenv.Profile
}

// Option configures New.
type Option func(*config)

// WithTheme replaces DefaultTheme.
func WithTheme(t Theme) Option { return func(c *config) { c.theme = t } }

// WithColor forces colour on or off instead of detecting it from the writer.
func WithColor(on bool) Option {
	return func(c *config) {
		p := termenv.Ascii
		if on {
			p = termenv.TrueColor
		}
		c.profile = &p
	}
}

// WithProfile forces a specific colour profile.
func WithProfile(p termenv.Profile) Option { return func(c *config) { c.profile = &p } }

// New returns a Renderer for output written to w. The colour profile is
// detected from w unless overridden.
func New(w io.Writer, opts ...Option) *Renderer {
	cfg := config{theme: DefaultTheme()}
	for _, o := range opts {
		o(&cfg)
	}

	lr := lipgloss.NewRenderer(w)
	if cfg.profile != nil {
		lr.SetColorProfile(*cfg.profile)
	}

	return &Renderer{
		marker:  lr.NewStyle().Foreground(cfg.theme.Marker),
		notText: lr.NewStyle().Italic(true).Foreground(cfg.theme.NotText),
		empty:   lr.NewStyle().Italic(true).Foreground(cfg.theme.Empty),
		errMsg:  lr.NewStyle().Italic(true).Foreground(cfg.theme.Error),
		title:   lr.NewStyle().Bold(true).Foreground(cfg.theme.Title),
	}
}

// Runs renders a classified run sequence. Each line break unit becomes a
// marker followed by a real newline; a tab becomes a marker padded to double
// width.
func (r *Renderer) Runs(runs []classify.Run) string {
	var b strings.Builder
	for _, run := range runs {
		switch run.Kind {
		case classify.Visible:
			b.WriteString(run.Text)
		case classify.LineBreak:
			for range run.Count {
				b.WriteString(r.marker.Render(MarkLineBreak))
				b.WriteByte('\n')
			}
		case classify.Tab:
			b.WriteString(r.marker.Render(strings.Repeat(MarkTab+" ", run.Count)))
		case classify.Space:
			b.WriteString(r.marker.Render(strings.Repeat(MarkSpace, run.Count)))
		case classify.IdeographicSpace:
			b.WriteString(r.marker.Render(strings.Repeat(MarkIdeographicSpace, run.Count)))
		case classify.OtherControl:
			b.WriteString(r.marker.Render(run.Literal))
		}
	}
	return b.String()
}

// Snapshot renders one clipboard read. runs is only consulted for a HasText
// snapshot. The result is never empty.
func (r *Renderer) Snapshot(snap clip.Snapshot, runs []classify.Run) string {
	switch snap.Status {
	case clip.HasText:
		return r.Runs(runs)
	case clip.EmptyText:
		return r.empty.Render(PlaceholderEmpty)
	case clip.ReadError:
		return r.errMsg.Render(ErrorMessage(snap.Detail()))
	default:
		return r.notText.Render(PlaceholderNotText)
	}
}

// Title renders the header line.
func (r *Renderer) Title(base string, topmost bool) string {
	return r.title.Render(TitleText(base, topmost))
}

// TitleText returns the undecorated title.
func TitleText(base string, topmost bool) string {
	if topmost {
		return base + TopmostSuffix
	}
	return base
}

// ErrorMessage formats a read error placeholder on a single line.
func ErrorMessage(detail string) string {
	detail = strings.Join(strings.Fields(detail), " ")
	if detail == "" {
		detail = "unknown"
	}
	return "(error: " + detail + ")"
}
