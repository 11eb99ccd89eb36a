// Package external provides terminal-detection helpers used to decide
// when to apply ANSI coloring.
package external

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether the shell's stdout is attached to a
// terminal. Coloring (the prompt, "jobs" state coloring) is applied only
// when this is true.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
