package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/colonyops/rtgrep/internal/commands"
	"github.com/colonyops/rtgrep/pkg/iojson"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, these are read from
	// runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	flags := &commands.Flags{}
	app := commands.NewRoot(flags, build())

	exitCode := 0
	if runErr := app.Run(ctx, os.Args); runErr != nil {
		// stdout carries results, errors never go there
		if flags.JSON {
			_ = iojson.WriteError(os.Stderr, runErr.Error(), nil)
		} else {
			_, _ = fmt.Fprintln(os.Stderr, runErr.Error())
		}
		exitCode = 1
	}

	os.Exit(exitCode)
}
