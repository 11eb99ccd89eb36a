// Package painter provides functionality to render colored and styled
// text for the shell prompt and job listings. It supports path and
// bracket coloring with optional bold formatting, per-state job coloring,
// and predefined themes.
package painter

import (
	"strings"

	"github.com/ant0ine/gosh/internal/config"
)

const (
	reset    = "\033[0m"
	makeBold = "\033[1m"
)

// Painter holds styling information for the shell prompt and job
// listings.
type Painter struct {
	PathColour       string // ANSI escape code for the cwd portion of the prompt
	PathBold         bool
	BracketColour    string // ANSI escape code for the "[user@host]" prefix
	BracketBold      bool
	JobStoppedColour string // ANSI escape code for a Stopped job in "jobs" listings
	JobActiveColour  string // ANSI escape code for a Running/Done job
}

// NewPainter creates a new Painter based on the provided config.Prompt.
// If a theme is set in the config, it overrides the colors below;
// otherwise colors are taken directly from the config fields.
func NewPainter(cfg config.Prompt) Painter {
	if theme := strings.TrimSpace(cfg.Theme); theme != "" && theme != "none" {
		resolveTheme(&cfg)
	}
	return Painter{
		PathColour:       resolveColor(cfg.PathColour),
		PathBold:         cfg.PathColourBold,
		BracketColour:    resolveColor(cfg.BracketColour),
		BracketBold:      cfg.BracketColourBold,
		JobStoppedColour: resolveColor(cfg.JobStoppedColour),
		JobActiveColour:  resolveColor(cfg.JobActiveColour),
	}
}

// resolveTheme applies a predefined theme to the provided Prompt config.
func resolveTheme(cfg *config.Prompt) {
	theme := strings.TrimSpace(cfg.Theme)
	if theme == "" {
		return
	}

	switch strings.ToLower(theme) {
	case "gosh":
		setGosh(cfg)
	case "wildberries":
		setWildberries(cfg)
	case "monokai":
		setMonokai(cfg)
	case "ohmybash":
		setOhMyBash(cfg)
	}
}

// setGosh applies the default gosh theme: a bold magenta bracket and the
// default job-state colors (yellow for Stopped, green for Running/Done).
func setGosh(cfg *config.Prompt) {
	cfg.PathColour = "blue"
	cfg.PathColourBold = false
	cfg.BracketColour = "magenta"
	cfg.BracketColourBold = true
	cfg.JobStoppedColour = "yellow"
	cfg.JobActiveColour = "green"
}

// setWildberries applies the Wildberries theme.
func setWildberries(cfg *config.Prompt) {
	cfg.PathColour = "\u001b[38;2;203;17;171m"
	cfg.PathColourBold = true
	cfg.BracketColour = "default"
	cfg.BracketColourBold = true
	cfg.JobStoppedColour = "yellow"
	cfg.JobActiveColour = "green"
}

// setMonokai applies the Monokai theme.
func setMonokai(cfg *config.Prompt) {
	cfg.PathColour = "\u001b[38;2;249;38;114m"
	cfg.PathColourBold = true
	cfg.BracketColour = "\u001b[38;2;166;226;46m"
	cfg.BracketColourBold = false
	cfg.JobStoppedColour = "\u001b[38;2;230;219;116m"
	cfg.JobActiveColour = "\u001b[38;2;166;226;46m"
}

// setOhMyBash applies the OhMyBash theme.
func setOhMyBash(cfg *config.Prompt) {
	cfg.PathColour = "green"
	cfg.PathColourBold = false
	cfg.BracketColour = "blue"
	cfg.BracketColourBold = true
	cfg.JobStoppedColour = "yellow"
	cfg.JobActiveColour = "green"
}

// resolveColor converts a color name or escape sequence string into a
// valid ANSI escape code. If the input is already an escape sequence, it
// is returned unchanged.
func resolveColor(colour string) string {
	colour = strings.TrimSpace(colour)
	if colour == "" {
		return ""
	}

	switch strings.ToLower(colour) {
	case "default":
		return "\u001b[39m"
	case "black":
		return "\033[30m"
	case "red":
		return "\033[31m"
	case "green":
		return "\033[32m"
	case "yellow":
		return "\033[33m"
	case "bright yellow":
		return "\u001b[93m"
	case "blue":
		return "\033[94m"
	case "magenta":
		return "\033[35m"
	case "cyan":
		return "\033[36m"
	case "white":
		return "\033[37m"
	default:
		return colour
	}
}

// Paint applies the provided bold and color settings to the given text
// and returns the formatted string with ANSI escape sequences. An empty
// colour with bold false returns text unchanged.
func (p Painter) Paint(bold bool, colour, text string) string {
	if colour == "" && !bold {
		return text
	}
	style := ""
	if bold {
		style = makeBold
	}
	return style + colour + text + reset
}

// JobState colors text according to a job state name from job.State's
// String method: "Stopped" gets JobStoppedColour, anything else
// (Running, Done) gets JobActiveColour.
func (p Painter) JobState(stateName, text string) string {
	if stateName == "Stopped" {
		return p.Paint(false, p.JobStoppedColour, text)
	}
	return p.Paint(false, p.JobActiveColour, text)
}
