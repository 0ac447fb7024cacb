package termout

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"
)

// ColorChoice controls whether a Stream emits style directives.
type ColorChoice int

const (
	// Auto enables color when the destination is a terminal that is expected
	// to understand escape sequences.
	Auto ColorChoice = iota
	// Always enables color unconditionally.
	Always
	// Never disables color unconditionally.
	Never
)

func (c ColorChoice) String() string {
	switch c {
	case Auto:
		return "auto"
	case Always:
		return "always"
	case Never:
		return "never"
	}
	return fmt.Sprintf("ColorChoice(%d)", int(c))
}

// ParseColorChoice parses "auto", "always" or "never".
func ParseColorChoice(s string) (ColorChoice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "always":
		return Always, nil
	case "never":
		return Never, nil
	}
	return Auto, fmt.Errorf("termout: invalid color choice %q", s)
}

func (c ColorChoice) enabled(w io.Writer) bool {
	switch c {
	case Always:
		return true
	case Never:
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return envAllowsColor() && term.IsTerminal(int(f.Fd()))
}

// envAllowsColor honours NO_COLOR and the TERM conventions for terminals that
// cannot render escape sequences.
func envAllowsColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch os.Getenv("TERM") {
	case "dumb":
		return false
	case "":
		return runtime.GOOS == "windows"
	}
	return true
}

// Stdout returns a Stream writing to os.Stdout.
func Stdout(choice ColorChoice) *Stream {
	return NewStream(os.Stdout, choice)
}

// Stderr returns a Stream writing to os.Stderr.
func Stderr(choice ColorChoice) *Stream {
	return NewStream(os.Stderr, choice)
}
