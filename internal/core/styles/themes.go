package styles

import (
	"image/color"
	"sort"

	lipgloss "charm.land/lipgloss/v2"
)

// Palette defines the colors used by the search view.
type Palette struct {
	Primary   color.Color // prompt
	Accent    color.Color // selection marker
	Text      color.Color // typed pattern
	Muted     color.Color // separator and frame
	Highlight color.Color // selected rows
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

// themes holds the built-in named palettes.
var themes = map[string]Palette{
	"tokyo-night": {
		Primary:   lipgloss.Color("#7aa2f7"),
		Accent:    lipgloss.Color("#e0af68"),
		Text:      lipgloss.Color("#c0caf5"),
		Muted:     lipgloss.Color("#565f89"),
		Highlight: lipgloss.Color("#9ece6a"),
	},
	"gruvbox": {
		Primary:   lipgloss.Color("#83a598"),
		Accent:    lipgloss.Color("#fabd2f"),
		Text:      lipgloss.Color("#ebdbb2"),
		Muted:     lipgloss.Color("#665c54"),
		Highlight: lipgloss.Color("#b8bb26"),
	},
	"catppuccin": {
		Primary:   lipgloss.Color("#89b4fa"), // Blue
		Accent:    lipgloss.Color("#f9e2af"), // Yellow
		Text:      lipgloss.Color("#cdd6f4"), // Text
		Muted:     lipgloss.Color("#6c7086"), // Overlay0
		Highlight: lipgloss.Color("#a6e3a1"), // Green
	},
	// ansi sticks to the 16 base colors so it follows the terminal's scheme.
	"ansi": {
		Primary:   lipgloss.Color("4"),
		Accent:    lipgloss.Color("3"),
		Text:      lipgloss.Color("7"),
		Muted:     lipgloss.Color("8"),
		Highlight: lipgloss.Color("2"),
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}
