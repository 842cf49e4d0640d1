package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/rtgrep/internal/core/config"
)

// newTestRoot builds a root command around a SearchCmd, replacing the
// action when one is given.
func newTestRoot(flags *Flags, action cli.ActionFunc) (*cli.Command, *SearchCmd, *bytes.Buffer, *bytes.Buffer) {
	cmd := NewSearchCmd(flags)
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	if action == nil {
		action = cmd.Run
	}
	root := &cli.Command{
		Name:      "rtgrep",
		UsageText: "rtgrep [options] [PATTERN]",
		Flags:     cmd.Flags(),
		Writer:    stdout,
		ErrWriter: stderr,
		Action:    action,
	}
	return root, cmd, stdout, stderr
}

func TestPatternArg(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "none", args: nil, want: ""},
		{name: "one", args: []string{"func main"}, want: "func main"},
		{name: "too many", args: []string{"a", "b"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := patternArg(tt.args)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchCmd_EffectiveConfig(t *testing.T) {
	loaded := config.DefaultConfig()
	loaded.Output.SelectedOnly = true
	flags := &Flags{Config: &loaded}

	var got config.Config
	var cmd *SearchCmd
	root, cmd, _, _ := newTestRoot(flags, func(_ context.Context, c *cli.Command) error {
		got = cmd.effectiveConfig(c)
		return nil
	})

	err := root.Run(context.Background(), []string{
		"rtgrep", "-g", "rg -n --color=always", "--dir", "src",
		"--quiet-period", "50ms", "--watch", "--json", "needle",
	})
	require.NoError(t, err)

	assert.Equal(t, "rg -n --color=always", got.Search.Command)
	assert.Equal(t, "src", got.Search.Dir)
	assert.Equal(t, 50*time.Millisecond, got.Search.QuietPeriod)
	assert.True(t, got.Watch.Enabled)
	assert.Equal(t, config.FormatJSON, got.Output.Format)
	assert.True(t, got.Output.SelectedOnly, "unset flags keep config values")
	assert.Equal(t, config.DefaultCommand, loaded.Search.Command, "loaded config is not modified")
}

func TestSearchCmd_EffectiveConfigWithoutOverrides(t *testing.T) {
	flags := &Flags{}

	var got config.Config
	var cmd *SearchCmd
	root, cmd, _, _ := newTestRoot(flags, func(_ context.Context, c *cli.Command) error {
		got = cmd.effectiveConfig(c)
		return nil
	})

	require.NoError(t, root.Run(context.Background(), []string{"rtgrep"}))
	assert.Equal(t, config.DefaultConfig(), got)
}

func TestSearchCmd_TooManyArguments(t *testing.T) {
	root, _, _, stderr := newTestRoot(&Flags{}, nil)

	err := root.Run(context.Background(), []string{"rtgrep", "one", "two"})

	require.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, stderr.String(), "Usage: rtgrep [options] [PATTERN]")
}

func TestSearchCmd_CheckConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Search.Dir = t.TempDir()

	t.Run("valid", func(t *testing.T) {
		root, _, stdout, _ := newTestRoot(&Flags{Config: &cfg}, nil)

		require.NoError(t, root.Run(context.Background(), []string{"rtgrep", "--check-config"}))
		assert.Equal(t, "configuration is valid\n", stdout.String())
	})

	t.Run("override makes it invalid", func(t *testing.T) {
		root, _, stdout, _ := newTestRoot(&Flags{Config: &cfg}, nil)

		err := root.Run(context.Background(), []string{"rtgrep", "--check-config", "-g", "rg {{ .Nope }}"})
		require.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, stdout.String(), "search.command")
	})
}
