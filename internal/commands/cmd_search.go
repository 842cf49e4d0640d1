package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/rtgrep/internal/core/config"
	"github.com/colonyops/rtgrep/internal/core/debounce"
	"github.com/colonyops/rtgrep/internal/core/lines"
	"github.com/colonyops/rtgrep/internal/core/logging"
	"github.com/colonyops/rtgrep/internal/core/search"
	"github.com/colonyops/rtgrep/internal/core/styles"
	"github.com/colonyops/rtgrep/internal/core/terminal"
	"github.com/colonyops/rtgrep/internal/core/watch"
	"github.com/colonyops/rtgrep/internal/tui"
	"github.com/colonyops/rtgrep/pkg/executil"
	"github.com/colonyops/rtgrep/pkg/profiler"
)

// Fallback terminal size when the device cannot report one.
const (
	fallbackWidth  = 80
	fallbackHeight = 24
)

// ErrUsage marks command line misuse.
var ErrUsage = errors.New("usage error")

type SearchCmd struct {
	flags *Flags
}

// NewSearchCmd creates the interactive search command.
func NewSearchCmd(flags *Flags) *SearchCmd {
	return &SearchCmd{flags: flags}
}

// Flags returns the search flags for registration on the root command.
func (cmd *SearchCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "g",
			Aliases:     []string{"command"},
			Usage:       "search command; plain commands get the quoted pattern and directory appended, `{{ .Pattern }}` templates are rendered",
			Sources:     cli.EnvVars("RTGREP_COMMAND"),
			Destination: &cmd.flags.Command,
		},
		&cli.StringFlag{
			Name:        "dir",
			Aliases:     []string{"d"},
			Usage:       "directory to search",
			Sources:     cli.EnvVars("RTGREP_DIR"),
			Destination: &cmd.flags.Dir,
		},
		&cli.DurationFlag{
			Name:        "quiet-period",
			Usage:       "time without typing before a search starts",
			Sources:     cli.EnvVars("RTGREP_QUIET_PERIOD"),
			Destination: &cmd.flags.QuietPeriod,
		},
		&cli.BoolFlag{
			Name:        "watch",
			Aliases:     []string{"w"},
			Usage:       "search again when files under the search directory change",
			Sources:     cli.EnvVars("RTGREP_WATCH"),
			Destination: &cmd.flags.Watch,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print results as JSON lines",
			Sources:     cli.EnvVars("RTGREP_JSON"),
			Destination: &cmd.flags.JSON,
		},
		&cli.BoolFlag{
			Name:        "selected-only",
			Aliases:     []string{"s"},
			Usage:       "print only the lines selected with tab, if any",
			Sources:     cli.EnvVars("RTGREP_SELECTED_ONLY"),
			Destination: &cmd.flags.SelectedOnly,
		},
		&cli.BoolFlag{
			Name:        "check-config",
			Usage:       "validate the configuration and exit",
			Destination: &cmd.flags.CheckConfig,
		},
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("RTGREP_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
	}
}

// Run executes the search UI. Exported for use as the root action.
func (cmd *SearchCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *SearchCmd) run(ctx context.Context, c *cli.Command) error {
	pattern, err := patternArg(c.Args().Slice())
	if err != nil {
		_, _ = fmt.Fprintf(c.Root().ErrWriter, "Usage: %s\n", c.Root().UsageText)
		return err
	}

	cfg := cmd.effectiveConfig(c)

	if cmd.flags.CheckConfig {
		return writeValidation(c.Root().Writer, cfg.ValidateDeep(cmd.flags.ConfigPath))
	}
	if err := cfg.ValidateDeep(cmd.flags.ConfigPath); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	palette, _ := styles.GetPalette(cfg.UI.Theme)
	styles.SetTheme(palette)

	// Start profiler server if enabled
	if cmd.flags.ProfilerPort > 0 {
		profServer := profiler.New(cmd.flags.ProfilerPort, profiler.WithLogger(logging.Component("profiler")))
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().
			Str("url", fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())).
			Msg("profiler endpoint available")
	}

	var changes tui.ChangeSource
	if cfg.Watch.Enabled {
		w, err := watch.New(cfg.Search.Dir, watch.Options{
			Ignore:  cfg.Watch.Ignore,
			MaxDirs: cfg.Watch.MaxDirs,
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", cfg.Search.Dir, err)
		}
		defer func() { _ = w.Close() }()
		changes = w
	}

	session, err := terminal.Open(terminal.DefaultDevice, terminal.WithAltScreen(cfg.UI.UseAltScreen()))
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer func() { _ = session.Close() }()

	items, err := cmd.runUI(ctx, cfg, session, changes, pattern)

	// results go to stdout only once the screen is restored
	if cerr := session.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("restore terminal")
	}
	if err != nil {
		return err
	}

	return tui.WriteResults(c.Root().Writer, items, tui.ResultOptions{
		Format:       cfg.Output.Format,
		SelectedOnly: cfg.Output.SelectedOnly,
	})
}

func (cmd *SearchCmd) runUI(ctx context.Context, cfg config.Config, session *terminal.Session, changes tui.ChangeSource, pattern string) ([]lines.Item, error) {
	width, height, err := session.Size()
	if err != nil {
		log.Warn().Err(err).Msg("terminal size unknown, using fallback")
		width, height = fallbackWidth, fallbackHeight
	}

	mgr := search.NewManager(&executil.ShellSpawner{Shell: cfg.Search.Shell}, search.Options{
		Command:       cfg.Search.Command,
		Dir:           cfg.Search.Dir,
		MaxLineLength: cfg.Search.MaxLineLength,
	})
	renderer := tui.NewRenderer(session, width, height, tui.RenderOptions{
		Prompt: cfg.UI.Prompt,
		Marker: cfg.UI.SelectionMarker,
	})
	engine := tui.NewEngine(ctx,
		lines.NewStore(cfg.Search.InitialCapacity),
		mgr,
		debounce.New(cfg.Search.QuietPeriod),
		renderer,
		tui.EngineOptions{
			MaxPatternLength: cfg.Search.MaxPatternLength,
			MaxDrain:         cfg.Search.MaxDrain,
			PageSize:         cfg.UI.PageSize,
		},
	)
	defer engine.Close()

	if pattern != "" {
		engine.SetPattern(pattern)
	}

	m := tui.New(engine, tui.Options{
		Keys:         tui.DefaultKeyMap(),
		PollInterval: cfg.UI.PollInterval,
		Size:         session.Size,
		Changes:      changes,
	})

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(session.File()),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
	)

	log.Debug().Str("pattern", pattern).Int("width", width).Int("height", height).Msg("starting search ui")

	finalModel, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrInterrupted) {
		return nil, fmt.Errorf("run tui: %w", err)
	}

	if model, ok := finalModel.(tui.Model); ok && model.Err() != nil {
		return nil, model.Err()
	}

	return engine.Items(), nil
}

// effectiveConfig applies command line overrides to the loaded config.
func (cmd *SearchCmd) effectiveConfig(c *cli.Command) config.Config {
	cfg := config.DefaultConfig()
	if cmd.flags.Config != nil {
		cfg = *cmd.flags.Config
	}

	if c.IsSet("g") {
		cfg.Search.Command = cmd.flags.Command
	}
	if c.IsSet("dir") {
		cfg.Search.Dir = cmd.flags.Dir
	}
	if c.IsSet("quiet-period") {
		cfg.Search.QuietPeriod = cmd.flags.QuietPeriod
	}
	if c.IsSet("watch") {
		cfg.Watch.Enabled = cmd.flags.Watch
	}
	if c.IsSet("json") && cmd.flags.JSON {
		cfg.Output.Format = config.FormatJSON
	}
	if c.IsSet("selected-only") {
		cfg.Output.SelectedOnly = cmd.flags.SelectedOnly
	}

	return cfg
}

// patternArg returns the optional PATTERN positional argument.
func patternArg(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", nil
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("%w: expected at most one PATTERN, got %d arguments", ErrUsage, len(args))
	}
}
