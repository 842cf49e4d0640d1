// Package config handles configuration loading and validation for rtgrep.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/rtgrep/internal/core/styles"
)

// Output formats for the lines printed on exit.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Defaults applied to zero values after loading.
const (
	DefaultCommand          = "grep -rn --color=always"
	DefaultShell            = "sh"
	DefaultDir              = "."
	DefaultQuietPeriod      = 100 * time.Millisecond
	DefaultMaxLineLength    = 511
	DefaultMaxPatternLength = 255
	DefaultInitialCapacity  = 500
	DefaultMaxDrain         = 256
	DefaultPrompt           = "> "
	DefaultSelectionMarker  = "▶"
	DefaultPageSize         = 10
	DefaultPollInterval     = 10 * time.Millisecond
	DefaultWatchMaxDirs     = 2048
)

// Config holds the application configuration.
type Config struct {
	Search SearchConfig `yaml:"search"`
	UI     UIConfig     `yaml:"ui"`
	Output OutputConfig `yaml:"output"`
	Watch  WatchConfig  `yaml:"watch"`
}

// SearchConfig controls the external search command.
type SearchConfig struct {
	// Command is the search command template. Plain commands get the quoted
	// pattern and the search root appended; commands containing `{{` are
	// rendered as Go templates with .Pattern and .Dir.
	Command          string        `yaml:"command"`
	Shell            string        `yaml:"shell"`
	Dir              string        `yaml:"dir"`
	QuietPeriod      time.Duration `yaml:"quiet_period"`
	MaxLineLength    int           `yaml:"max_line_length"`
	MaxPatternLength int           `yaml:"max_pattern_length"`
	InitialCapacity  int           `yaml:"initial_capacity"`
	// MaxDrain caps the lines moved from the search into the store per loop
	// iteration so that keys stay responsive during large result sets.
	MaxDrain int `yaml:"max_drain"`
}

// UIConfig controls the terminal view.
type UIConfig struct {
	Prompt          string        `yaml:"prompt"`
	SelectionMarker string        `yaml:"selection_marker"`
	PageSize        int           `yaml:"page_size"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	Theme           string        `yaml:"theme"`
	// AltScreen draws on the alternate screen so the shell scrollback is left
	// untouched. Defaults to true.
	AltScreen *bool `yaml:"alt_screen"`
}

// UseAltScreen reports whether the alternate screen should be used.
func (u UIConfig) UseAltScreen() bool {
	return u.AltScreen == nil || *u.AltScreen
}

// OutputConfig controls what is printed to stdout on exit.
type OutputConfig struct {
	Format       string `yaml:"format"`
	SelectedOnly bool   `yaml:"selected_only"`
}

// WatchConfig controls re-running the search when files change.
type WatchConfig struct {
	Enabled bool     `yaml:"enabled"`
	Ignore  []string `yaml:"ignore"`
	MaxDirs int      `yaml:"max_dirs"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Search: SearchConfig{
			Command:          DefaultCommand,
			Shell:            DefaultShell,
			Dir:              DefaultDir,
			QuietPeriod:      DefaultQuietPeriod,
			MaxLineLength:    DefaultMaxLineLength,
			MaxPatternLength: DefaultMaxPatternLength,
			InitialCapacity:  DefaultInitialCapacity,
			MaxDrain:         DefaultMaxDrain,
		},
		UI: UIConfig{
			Prompt:          DefaultPrompt,
			SelectionMarker: DefaultSelectionMarker,
			PageSize:        DefaultPageSize,
			PollInterval:    DefaultPollInterval,
			Theme:           styles.DefaultTheme,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Watch: WatchConfig{
			Ignore:  []string{"**/.git/**", "**/node_modules/**"},
			MaxDirs: DefaultWatchMaxDirs,
		},
	}
}

// Load reads the config file at configPath on top of the defaults. A missing
// file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Search.Command == "" {
		c.Search.Command = DefaultCommand
	}
	if c.Search.Shell == "" {
		c.Search.Shell = DefaultShell
	}
	if c.Search.Dir == "" {
		c.Search.Dir = DefaultDir
	}
	if c.Search.QuietPeriod == 0 {
		c.Search.QuietPeriod = DefaultQuietPeriod
	}
	if c.Search.MaxLineLength == 0 {
		c.Search.MaxLineLength = DefaultMaxLineLength
	}
	if c.Search.MaxPatternLength == 0 {
		c.Search.MaxPatternLength = DefaultMaxPatternLength
	}
	if c.Search.InitialCapacity == 0 {
		c.Search.InitialCapacity = DefaultInitialCapacity
	}
	if c.Search.MaxDrain == 0 {
		c.Search.MaxDrain = DefaultMaxDrain
	}
	if c.UI.Prompt == "" {
		c.UI.Prompt = DefaultPrompt
	}
	if c.UI.SelectionMarker == "" {
		c.UI.SelectionMarker = DefaultSelectionMarker
	}
	if c.UI.PageSize == 0 {
		c.UI.PageSize = DefaultPageSize
	}
	if c.UI.PollInterval == 0 {
		c.UI.PollInterval = DefaultPollInterval
	}
	if c.UI.Theme == "" {
		c.UI.Theme = styles.DefaultTheme
	}
	if c.Output.Format == "" {
		c.Output.Format = FormatText
	}
	if c.Watch.MaxDirs == 0 {
		c.Watch.MaxDirs = DefaultWatchMaxDirs
	}
}

// Validate performs structural validation that needs no I/O.
func (c *Config) Validate() error {
	if c.Search.QuietPeriod < 0 {
		return fmt.Errorf("search.quiet_period cannot be negative")
	}

	if c.Search.MaxLineLength < 1 {
		return fmt.Errorf("search.max_line_length must be at least 1")
	}

	if c.Search.MaxPatternLength < 1 {
		return fmt.Errorf("search.max_pattern_length must be at least 1")
	}

	if c.Search.InitialCapacity < 1 {
		return fmt.Errorf("search.initial_capacity must be at least 1")
	}

	if c.Search.MaxDrain < 1 {
		return fmt.Errorf("search.max_drain must be at least 1")
	}

	if c.UI.PageSize < 1 {
		return fmt.Errorf("ui.page_size must be at least 1")
	}

	if c.UI.PollInterval < time.Millisecond {
		return fmt.Errorf("ui.poll_interval must be at least 1ms")
	}

	if _, ok := styles.GetPalette(c.UI.Theme); !ok {
		return fmt.Errorf("ui.theme %q is unknown, available: %s", c.UI.Theme, strings.Join(styles.ThemeNames(), ", "))
	}

	switch c.Output.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("output.format %q must be %q or %q", c.Output.Format, FormatText, FormatJSON)
	}

	if c.Watch.MaxDirs < 1 {
		return fmt.Errorf("watch.max_dirs must be at least 1")
	}

	return nil
}
