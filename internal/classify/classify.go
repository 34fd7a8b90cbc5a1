// Package classify splits clipboard text into typed runs so that invisible
// characters can be drawn with visible markers.
//
// The scanner walks UTF-16 code units, the clipboard's native text encoding,
// so lone surrogates stay observable. Classify accepts an ordinary Go string
// and converts it first.
package classify

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
)

// Kind identifies the category of a Run.
type Kind int

const (
	Visible Kind = iota
	LineBreak
	Tab
	Space
	IdeographicSpace
	OtherControl
)

var kindNames = map[Kind]string{
	Visible:          "visible",
	LineBreak:        "line_break",
	Tab:              "tab",
	Space:            "space",
	IdeographicSpace: "ideographic_space",
	OtherControl:     "other_control",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown run kind %q", b)
}

// Run is one maximal classified token.
//
// Count is the number of units for the whitespace kinds: logical line breaks
// (CRLF counts once), tabs, spaces or ideographic spaces. It is always 1 for
// OtherControl and Visible. Text is the exact source text covered by the run.
// Literal is what a display draws for Visible (the text itself) and
// OtherControl (its escape); it is empty for the whitespace kinds, whose
// markers belong to the display.
type Run struct {
	Kind    Kind   `json:"kind"`
	Count   int    `json:"count"`
	Text    string `json:"text"`
	Literal string `json:"literal,omitempty"`
}

const ideographicSpace = 0x3000

// Classify splits s into runs. Invalid UTF-8 bytes in s are read as U+FFFD.
func Classify(s string) []Run {
	return ClassifyUTF16(utf16.Encode([]rune(s)))
}

// ClassifyUTF16 splits a sequence of UTF-16 code units into runs.
// A lone surrogate becomes an OtherControl run whose Literal is its \uXXXX
// escape and whose Text is U+FFFD.
func ClassifyUTF16(u []uint16) []Run {
	var runs []Run
	for i := 0; i < len(u); {
		c := u[i]
		switch {
		case c == '\r' || c == '\n':
			j, n := scanBreaks(u, i)
			runs = append(runs, Run{Kind: LineBreak, Count: n, Text: decode(u[i:j])})
			i = j
		case c == '\t':
			i = appendRepeat(&runs, u, i, Tab)
		case c == ' ':
			i = appendRepeat(&runs, u, i, Space)
		case c == ideographicSpace:
			i = appendRepeat(&runs, u, i, IdeographicSpace)
		case hidden(c):
			r, width := decodeAt(u, i)
			text := string(r)
			if width == 1 && utf16.IsSurrogate(r) {
				text = string(unicode.ReplacementChar)
			}
			runs = append(runs, Run{Kind: OtherControl, Count: 1, Text: text, Literal: Escape(r)})
			i += width
		default:
			j := i + 1
			for j < len(u) && !special(u[j]) {
				j++
			}
			text := decode(u[i:j])
			runs = append(runs, Run{Kind: Visible, Count: 1, Text: text, Literal: text})
			i = j
		}
	}
	return runs
}

// scanBreaks consumes a maximal run of CR, LF and CRLF starting at i and
// returns the end index and the number of logical breaks.
func scanBreaks(u []uint16, i int) (int, int) {
	n := 0
	for i < len(u) {
		switch u[i] {
		case '\r':
			if i+1 < len(u) && u[i+1] == '\n' {
				i++
			}
		case '\n':
		default:
			return i, n
		}
		i++
		n++
	}
	return i, n
}

func appendRepeat(runs *[]Run, u []uint16, i int, k Kind) int {
	j := i + 1
	for j < len(u) && u[j] == u[i] {
		j++
	}
	*runs = append(*runs, Run{Kind: k, Count: j - i, Text: decode(u[i:j])})
	return j
}

// decodeAt returns the code point at u[i] and how many units it occupies.
func decodeAt(u []uint16, i int) (rune, int) {
	r := rune(u[i])
	if utf16.IsSurrogate(r) && r < 0xDC00 && i+1 < len(u) {
		if p := utf16.DecodeRune(r, rune(u[i+1])); p != unicode.ReplacementChar {
			return p, 2
		}
	}
	return r, 1
}

// special reports whether c cannot continue a Visible run.
func special(c uint16) bool {
	switch c {
	case '\r', '\n', '\t', ' ', ideographicSpace:
		return true
	}
	return hidden(c)
}

// hidden reports whether c starts an OtherControl run. Every surrogate code
// unit counts: a pair is escaped as one supplementary code point.
func hidden(c uint16) bool {
	r := rune(c)
	if utf16.IsSurrogate(r) {
		return true
	}
	return unicode.In(r, unicode.Cc, unicode.Cf, unicode.Zs, unicode.Zl, unicode.Zp)
}

func decode(u []uint16) string {
	return string(utf16.Decode(u))
}

// Escape renders r the way an OtherControl run displays it: caret notation
// for C0 controls and DEL, \uXXXX for other BMP code points and \u{XXXXXX}
// for supplementary code points.
func Escape(r rune) string {
	switch {
	case r >= 0 && r <= 0x1F:
		return "^" + string(rune(0x40+r))
	case r == 0x7F:
		return "^?"
	case r > 0xFFFF:
		return fmt.Sprintf(`\u{%06X}`, r)
	default:
		return fmt.Sprintf(`\u%04X`, r)
	}
}

// Join concatenates the source text of runs. For any valid UTF-8 input s,
// Join(Classify(s)) == s.
func Join(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
