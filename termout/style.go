package termout

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Color is a basic terminal foreground color.
//
// The zero value is NoColor, which leaves the foreground at the terminal's
// default.
type Color uint8

const (
	NoColor Color = iota
	Black
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
)

var colorNames = [...]string{
	NoColor: "none",
	Black:   "black",
	Red:     "red",
	Green:   "green",
	Yellow:  "yellow",
	Blue:    "blue",
	Magenta: "magenta",
	Cyan:    "cyan",
	White:   "white",
}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("Color(%d)", uint8(c))
}

// ParseColor returns the Color with the given (case-insensitive) name, as
// produced by Color.String.
func ParseColor(name string) (Color, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range colorNames {
		if n == name {
			return Color(c), nil
		}
	}
	return NoColor, fmt.Errorf("termout: unknown color %q", name)
}

// basic maps c onto the ANSI palette. NoColor and out-of-range values have no
// mapping.
func (c Color) basic() (ansi.BasicColor, bool) {
	if c == NoColor || c > White {
		return 0, false
	}
	return ansi.BasicColor(c - 1), true
}

// Style describes how the text that follows a style directive is rendered.
//
// The zero Style is plain text: not bold, default foreground.
type Style struct {
	Bold bool
	Fg   Color
}

// Sequence renders s as a single SGR escape sequence.
//
// The sequence always starts by resetting every attribute, so that a Style
// replaces the current one rather than adding to it. Setting Style{Bold: true}
// after Style{Fg: Red} produces bold text in the default color.
func (s Style) Sequence() string {
	st := ansi.Style{}.Reset()
	if s.Bold {
		st = st.Bold()
	}
	if c, ok := s.Fg.basic(); ok {
		st = st.ForegroundColor(c)
	}
	return st.String()
}

func (s Style) String() string {
	switch {
	case s.Bold && s.Fg != NoColor:
		return "bold " + s.Fg.String()
	case s.Bold:
		return "bold"
	default:
		return s.Fg.String()
	}
}

// resetSequence clears every attribute set by previous style directives.
var resetSequence = ansi.ResetStyle
