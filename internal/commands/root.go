package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/rtgrep/internal/core/config"
	"github.com/colonyops/rtgrep/internal/core/logging"
	"github.com/colonyops/rtgrep/pkg/logutils"
)

// NewRoot builds the rtgrep command. The search UI is the root action; there
// are no subcommands so any positional argument is the pattern.
func NewRoot(flags *Flags, version string) *cli.Command {
	var logCloser func()

	searchCmd := NewSearchCmd(flags)

	root := &cli.Command{
		Name:      "rtgrep",
		Usage:     "Search as you type",
		UsageText: "rtgrep [-g COMMAND] [options] [PATTERN]",
		Description: `rtgrep runs a search command (grep by default) every time you pause typing
and streams its output into the terminal while you refine the pattern.

Scroll with the arrow keys, ctrl+u and ctrl+d. Tab selects the top visible
line. Esc or enter exits and prints the collected lines to standard output,
so rtgrep can be used in pipelines.`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("RTGREP_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file, empty disables logging",
				Sources:     cli.EnvVars("RTGREP_LOG_FILE"),
				Value:       DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("RTGREP_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// The terminal belongs to the UI and stdout to the results, so logs
			// only ever go to a file.
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logging.Install(logger)
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			log.Debug().Str("config", flags.ConfigPath).Str("version", version).Msg("rtgrep starting")
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
		Action: searchCmd.Run,
	}

	root.Flags = append(root.Flags, searchCmd.Flags()...)
	return root
}
