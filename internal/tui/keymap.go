package tui

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// Action is what a key does to the search view.
type Action int

const (
	ActionNone Action = iota
	ActionInsert
	ActionBackspace
	ActionLineUp
	ActionLineDown
	ActionPageUp
	ActionPageDown
	ActionToggle
	ActionRefresh
	ActionQuit
)

// Input is a resolved key press. Char is set for ActionInsert.
type Input struct {
	Action Action
	Char   byte
}

// KeyMap binds non-printable keys to actions. Printable ASCII always edits
// the pattern.
type KeyMap struct {
	LineUp    key.Binding
	LineDown  key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Toggle    key.Binding
	Backspace key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		LineUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑/↓", "scroll"),
		),
		LineDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↑/↓", "scroll"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("^u/^d", "page"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("^u/^d", "page"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "select"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace", "ctrl+h"),
			key.WithHelp("⌫", "delete"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "enter", "ctrl+c"),
			key.WithHelp("esc/enter", "done"),
		),
	}
}

// ShortHelp returns the bindings shown in usage text.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.LineUp, k.PageUp, k.Toggle, k.Quit}
}

// Resolve maps a key press to an Input. Unknown keys resolve to ActionNone.
func (k KeyMap) Resolve(msg tea.KeyPressMsg) Input {
	switch {
	case key.Matches(msg, k.Quit):
		return Input{Action: ActionQuit}
	case key.Matches(msg, k.Backspace):
		return Input{Action: ActionBackspace}
	case key.Matches(msg, k.LineUp):
		return Input{Action: ActionLineUp}
	case key.Matches(msg, k.LineDown):
		return Input{Action: ActionLineDown}
	case key.Matches(msg, k.PageUp):
		return Input{Action: ActionPageUp}
	case key.Matches(msg, k.PageDown):
		return Input{Action: ActionPageDown}
	case key.Matches(msg, k.Toggle):
		return Input{Action: ActionToggle}
	}

	pressed := msg.Key()
	if pressed.Mod&(tea.ModCtrl|tea.ModAlt) != 0 {
		return Input{}
	}
	if len(pressed.Text) == 1 && pressed.Text[0] >= 0x20 && pressed.Text[0] <= 0x7e {
		return Input{Action: ActionInsert, Char: pressed.Text[0]}
	}
	return Input{}
}
