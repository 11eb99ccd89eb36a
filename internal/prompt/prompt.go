// Package prompt builds the interactive shell's prompt string: exactly
// "[user@host]cwd$ ", with ANSI coloring applied by the active
// painter.Painter.
package prompt

import (
	"fmt"
	"os"

	"github.com/ant0ine/gosh/internal/painter"
)

// Update builds the prompt string using p's active color theme. It
// returns an error if USER is unset or the current directory or hostname
// cannot be resolved; both are fatal at prompt-build time.
func Update(p painter.Painter) (string, error) {
	user, ok := os.LookupEnv("USER")
	if !ok || user == "" {
		return "", fmt.Errorf("gosh: prompt: USER is not set")
	}

	host, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("gosh: prompt: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("gosh: prompt: %w", err)
	}

	bracket := p.Paint(p.BracketBold, p.BracketColour, fmt.Sprintf("[%s@%s]", user, host))
	path := p.Paint(p.PathBold, p.PathColour, cwd)

	return bracket + path + "$ ", nil
}
