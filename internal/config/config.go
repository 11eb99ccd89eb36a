// Package config provides functionality for loading configuration
// parameters from a config file using the Viper library.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Terminal holds the readline-backed terminal's configurable behavior,
// plus the sysmon descriptor-leak watchdog interval.
type Terminal struct {
	HistoryFile     string `mapstructure:"history_file"`
	HistoryLimit    int    `mapstructure:"history_limit"`
	InterruptPrompt string `mapstructure:"interrupt_prompt"`
	EOFPrompt       string `mapstructure:"exit_message"`
	// CheckInterval is how many pipelines run between sysmon descriptor
	// checks; 0 disables the watchdog.
	CheckInterval uint `mapstructure:"check_interval"`
}

// Prompt holds the prompt's color theme. PathColour paints the working
// directory; BracketColour paints the "[user@host]" prefix; the two
// JobXColour fields paint job state in "jobs" listings (Stopped is
// yellow, Running/Done are green by default).
type Prompt struct {
	Theme             string `mapstructure:"theme"`
	PathColour        string `mapstructure:"path_colour"`
	PathColourBold    bool   `mapstructure:"path_colour_bold"`
	BracketColour     string `mapstructure:"bracket_colour"`
	BracketColourBold bool   `mapstructure:"bracket_colour_bold"`
	JobStoppedColour  string `mapstructure:"job_stopped_colour"`
	JobActiveColour   string `mapstructure:"job_active_colour"`
}

// Config holds user-configurable settings for the shell.
type Config struct {
	Terminal Terminal `mapstructure:"terminal"`
	Prompt   Prompt   `mapstructure:"prompt"`

	// MaxJobs bounds the job table.
	MaxJobs int `mapstructure:"max_jobs"`
	// MaxStages is loaded from the config file but not read by the
	// shell; the per-job stage limit is the constant job.MaxStages (16).
	MaxStages int `mapstructure:"max_stages"`
	// FDCheckInterval is retained for config-file compatibility with
	// older sysmon naming; Terminal.CheckInterval is what the shell
	// actually reads.
	FDCheckInterval int `mapstructure:"fd_check_interval"`
}

// Load reads configuration from a file named "config" in the current
// directory using Viper and unmarshals it into a Config instance. If
// reading or unmarshaling fails an error is returned along with a partial
// Config (which may be zero-valued).
func Load() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	cfg := new(Config)
	if err := viper.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("gosh: boot: failed to load config: %w", err)
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("gosh: boot: failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config populated with sensible defaults. This is used
// as a fallback when loading the configuration file fails.
func Default() *Config {
	return &Config{
		Terminal: Terminal{
			HistoryFile:     filepath.Join(os.Getenv("HOME"), ".gosh_history"),
			HistoryLimit:    1000,
			InterruptPrompt: "^C",
			EOFPrompt:       "\nexit",
			CheckInterval:   50,
		},
		Prompt: Prompt{
			Theme:             "gosh",
			PathColour:        "blue",
			BracketColourBold: true,
			JobStoppedColour:  "yellow",
			JobActiveColour:   "green",
		},
		MaxJobs:         10,
		MaxStages:       16,
		FDCheckInterval: 1,
	}
}
