package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether w is a terminal. Anything with an Fd method
// (os.File and its wrappers) is checked.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SupportsColor reports whether w should receive ANSI colors: it must be a
// terminal, and neither NO_COLOR, CLICOLOR=0 nor TERM=dumb may be set.
func SupportsColor(w io.Writer) bool {
	return colorAllowed() && IsTTY(w)
}

// colorAllowed applies the environment conventions from https://no-color.org
// and https://bixense.com/clicolors.
func colorAllowed() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}
