package painter

import (
	"strings"
	"testing"

	"github.com/ant0ine/gosh/internal/config"
)

func TestPaintEmptyColourNoBoldReturnsTextUnchanged(t *testing.T) {
	p := Painter{}
	if got := p.Paint(false, "", "hello"); got != "hello" {
		t.Errorf("Paint(false, \"\", hello) = %q, want unchanged %q", got, "hello")
	}
}

func TestPaintWrapsColourAndReset(t *testing.T) {
	p := Painter{}
	got := p.Paint(false, "\033[31m", "hello")
	if !strings.HasPrefix(got, "\033[31m") || !strings.HasSuffix(got, reset) {
		t.Errorf("Paint = %q, want wrapped in colour and reset", got)
	}
	if !strings.Contains(got, "hello") {
		t.Errorf("Paint = %q, missing text", got)
	}
}

func TestPaintBoldWithoutColourStillStyles(t *testing.T) {
	p := Painter{}
	got := p.Paint(true, "", "hello")
	if !strings.HasPrefix(got, makeBold) {
		t.Errorf("Paint(true, \"\", hello) = %q, want bold prefix even with no colour", got)
	}
}

func TestJobStateUsesStoppedColourForStopped(t *testing.T) {
	p := Painter{JobStoppedColour: "\033[33m", JobActiveColour: "\033[32m"}
	got := p.JobState("Stopped", "Stopped")
	if !strings.Contains(got, "\033[33m") {
		t.Errorf("JobState(Stopped) = %q, want the stopped colour", got)
	}
}

func TestJobStateUsesActiveColourForRunningAndDone(t *testing.T) {
	p := Painter{JobStoppedColour: "\033[33m", JobActiveColour: "\033[32m"}
	for _, state := range []string{"Running", "Done"} {
		got := p.JobState(state, state)
		if !strings.Contains(got, "\033[32m") {
			t.Errorf("JobState(%s) = %q, want the active colour", state, got)
		}
	}
}

func TestResolveColorKnownNames(t *testing.T) {
	cases := map[string]string{
		"red":   "\033[31m",
		"green": "\033[32m",
		"RED":   "\033[31m",
		" blue ": "\033[94m",
	}
	for in, want := range cases {
		if got := resolveColor(in); got != want {
			t.Errorf("resolveColor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveColorPassesThroughUnknown(t *testing.T) {
	raw := "\033[38;2;1;2;3m"
	if got := resolveColor(raw); got != raw {
		t.Errorf("resolveColor(%q) = %q, want unchanged", raw, got)
	}
}

func TestResolveColorEmptyStaysEmpty(t *testing.T) {
	if got := resolveColor("  "); got != "" {
		t.Errorf("resolveColor(whitespace) = %q, want empty", got)
	}
}

func TestNewPainterAppliesNamedTheme(t *testing.T) {
	p := NewPainter(config.Prompt{Theme: "gosh"})
	if p.BracketColour == "" || !p.BracketBold {
		t.Errorf("gosh theme: BracketColour=%q BracketBold=%v, want non-empty+bold", p.BracketColour, p.BracketBold)
	}
	if p.JobStoppedColour == "" || p.JobActiveColour == "" {
		t.Error("gosh theme must set both job state colours")
	}
}

func TestNewPainterNoThemeUsesRawFields(t *testing.T) {
	p := NewPainter(config.Prompt{PathColour: "red", PathColourBold: true})
	if p.PathColour != "\033[31m" {
		t.Errorf("PathColour = %q, want resolved red", p.PathColour)
	}
	if !p.PathBold {
		t.Error("PathBold = false, want true")
	}
}

func TestNewPainterThemeNoneLeavesRawFields(t *testing.T) {
	p := NewPainter(config.Prompt{Theme: "none", PathColour: "green"})
	if p.PathColour != "\033[32m" {
		t.Errorf("PathColour = %q, want resolved green (theme=none should not override)", p.PathColour)
	}
}
