// Package styles provides the lipgloss v2 styles of the search view.
package styles

import (
	lipgloss "charm.land/lipgloss/v2"
)

// CurrentPalette is the palette the styles were last built from.
var CurrentPalette Palette

var (
	// PromptStyle renders the prompt in front of the pattern.
	PromptStyle lipgloss.Style
	// PatternStyle renders the typed pattern.
	PatternStyle lipgloss.Style
	// FrameStyle renders the `|` edges of the input row.
	FrameStyle lipgloss.Style
	// SeparatorStyle renders the rule between results and input.
	SeparatorStyle lipgloss.Style
	// MarkerStyle renders the selection marker.
	MarkerStyle lipgloss.Style
)

func init() {
	p, _ := GetPalette(DefaultTheme)
	SetTheme(p)
}

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	PromptStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	PatternStyle = lipgloss.NewStyle().
		Foreground(p.Text)
	FrameStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	SeparatorStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	MarkerStyle = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)
}
