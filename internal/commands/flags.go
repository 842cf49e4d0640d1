package commands

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/colonyops/rtgrep/internal/core/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Search overrides, applied on top of the config file.
	Command      string
	Dir          string
	QuietPeriod  time.Duration
	Watch        bool
	JSON         bool
	SelectedOnly bool

	CheckConfig  bool
	ProfilerPort int

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "rtgrep", "config.yaml")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/rtgrep/rtgrep.log
// On Linux: $XDG_STATE_HOME/rtgrep/rtgrep.log (defaults to ~/.local/state/rtgrep/rtgrep.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "rtgrep", "rtgrep.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "rtgrep", "rtgrep.log")
	}

	return filepath.Join(home, ".local", "state", "rtgrep", "rtgrep.log")
}
