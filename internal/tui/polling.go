package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

// DefaultPollInterval is how often the loop runs while no key arrives.
const DefaultPollInterval = 10 * time.Millisecond

// pollTickMsg drives one loop iteration between key presses.
type pollTickMsg struct{}

// schedulePollTick returns a command that schedules the next poll tick.
func schedulePollTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}
