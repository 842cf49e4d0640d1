package config

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/colonyops/rtgrep/pkg/tmpl"
)

// CommandTemplateData mirrors the fields available to Go-template search
// commands.
type CommandTemplateData struct {
	Pattern string
	Dir     string
}

// ValidateDeep performs comprehensive validation of the configuration including
// template syntax, glob patterns, and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateCommandTemplate(),
		c.validateWatchGlobs(),
	)
}

func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("search.shell", c.Search.Shell, executableExists),
		criterio.Run("search.dir", c.Search.Dir, isDirectory),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // defaults are used
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// executableExists validates that a command name resolves on PATH.
func executableExists(path string) error {
	if path == "" {
		return nil
	}
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("executable not found: %s", path)
	}
	return nil
}

// isDirectory validates that a path exists and is a directory.
func isDirectory(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func (c *Config) validateCommandTemplate() error {
	if !tmpl.IsTemplate(c.Search.Command) {
		return nil
	}

	data := CommandTemplateData{Pattern: "pattern", Dir: c.Search.Dir}
	if _, err := tmpl.Render(c.Search.Command, data); err != nil {
		return criterio.NewFieldErrors("search.command", fmt.Errorf("template error: %w", err))
	}
	return nil
}

func (c *Config) validateWatchGlobs() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.Watch.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("watch.ignore[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}
	return errs.ToError()
}
