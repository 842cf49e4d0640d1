package search

import (
	"fmt"

	"github.com/colonyops/rtgrep/pkg/tmpl"
)

// DefaultCommand is the search command used when none is configured.
const DefaultCommand = "grep -rn --color=always"

// DefaultDir is the directory searched by plain command templates.
const DefaultDir = "."

// CommandData is available to Go-template search commands.
type CommandData struct {
	Pattern string // the typed pattern, unquoted
	Dir     string // the search root
}

// BuildCommand produces the shell command line for pattern.
//
// A plain template gets the double-quoted pattern and the search root
// appended: `grep -rn "<pattern>" .`. A template containing `{{` is rendered
// with CommandData instead and nothing is appended, which lets tools that take
// their arguments in a different order be used:
//
//	rg --color=always -n {{ shq .Pattern }} {{ .Dir }}
func BuildCommand(template, pattern, dir string) (string, error) {
	if template == "" {
		template = DefaultCommand
	}
	if dir == "" {
		dir = DefaultDir
	}

	if !tmpl.IsTemplate(template) {
		root := dir
		if root != DefaultDir {
			root = tmpl.ShellQuote(root)
		}
		return fmt.Sprintf("%s %s %s", template, tmpl.DoubleQuote(pattern), root), nil
	}

	out, err := tmpl.Render(template, CommandData{Pattern: pattern, Dir: dir})
	if err != nil {
		return "", fmt.Errorf("render search command: %w", err)
	}
	return out, nil
}
