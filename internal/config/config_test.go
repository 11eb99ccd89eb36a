package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestDefaultIsUsable(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	cfg := Default()

	if cfg.MaxJobs <= 0 {
		t.Errorf("MaxJobs = %d, want > 0", cfg.MaxJobs)
	}
	if cfg.MaxStages <= 0 {
		t.Errorf("MaxStages = %d, want > 0", cfg.MaxStages)
	}
	if cfg.Terminal.HistoryFile != filepath.Join("/home/tester", ".gosh_history") {
		t.Errorf("Terminal.HistoryFile = %q", cfg.Terminal.HistoryFile)
	}
	if cfg.Prompt.Theme == "" {
		t.Error("Prompt.Theme is empty")
	}
	if cfg.Prompt.JobStoppedColour == "" || cfg.Prompt.JobActiveColour == "" {
		t.Error("job state colours must be set so jobs output is colorized by default")
	}
}

func TestLoadReadsNestedStructure(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
max_jobs: 5
max_stages: 4

terminal:
  history_file: /tmp/custom_history
  history_limit: 42
  check_interval: 7

prompt:
  theme: monokai
  path_colour: magenta
  bracket_colour_bold: true
  job_stopped_colour: red
  job_active_colour: cyan
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0644); err != nil {
		t.Fatal(err)
	}

	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MaxJobs != 5 {
		t.Errorf("MaxJobs = %d, want 5", cfg.MaxJobs)
	}
	if cfg.MaxStages != 4 {
		t.Errorf("MaxStages = %d, want 4", cfg.MaxStages)
	}
	if cfg.Terminal.HistoryFile != "/tmp/custom_history" {
		t.Errorf("Terminal.HistoryFile = %q, want /tmp/custom_history", cfg.Terminal.HistoryFile)
	}
	if cfg.Terminal.HistoryLimit != 42 {
		t.Errorf("Terminal.HistoryLimit = %d, want 42", cfg.Terminal.HistoryLimit)
	}
	if cfg.Terminal.CheckInterval != 7 {
		t.Errorf("Terminal.CheckInterval = %d, want 7", cfg.Terminal.CheckInterval)
	}
	if cfg.Prompt.Theme != "monokai" {
		t.Errorf("Prompt.Theme = %q, want monokai", cfg.Prompt.Theme)
	}
	if !cfg.Prompt.BracketColourBold {
		t.Error("Prompt.BracketColourBold = false, want true")
	}
	if cfg.Prompt.JobStoppedColour != "red" || cfg.Prompt.JobActiveColour != "cyan" {
		t.Errorf("job colours = %q/%q, want red/cyan", cfg.Prompt.JobStoppedColour, cfg.Prompt.JobActiveColour)
	}
}

func TestLoadMissingConfigReturnsError(t *testing.T) {
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
	t.Cleanup(viper.Reset)

	if _, err := Load(); err == nil {
		t.Error("Load in a directory with no config file: expected an error")
	}
}
