// Package tui runs the interactive search view on the terminal.
package tui

import (
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/rtgrep/internal/core/logging"
	"github.com/colonyops/rtgrep/internal/core/watch"
)

// ChangeSource delivers settled file changes. Next blocks.
type ChangeSource interface {
	Next() (watch.Change, error)
}

// SizeFunc reports the current terminal size.
type SizeFunc func() (width, height int, err error)

// Options configures a Model.
type Options struct {
	Keys         KeyMap
	PollInterval time.Duration
	// Size is checked on every poll tick; nil disables resize detection.
	Size SizeFunc
	// Changes re-runs the search when files change; nil disables it.
	Changes ChangeSource
}

// filesChangedMsg carries a settled batch of file changes.
type filesChangedMsg struct {
	change watch.Change
}

// watchStoppedMsg is sent once the change source has ended.
type watchStoppedMsg struct {
	err error
}

// Model adapts the Engine to a bubbletea program. bubbletea decodes the
// keys; drawing is done by the engine's renderer, so the program must run
// without bubbletea's own renderer.
type Model struct {
	engine *Engine
	opts   Options
	log    zerolog.Logger
	err    error
}

// New creates a Model around engine.
func New(engine *Engine, opts Options) Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return Model{
		engine: engine,
		opts:   opts,
		log:    logging.Component("tui"),
	}
}

// Err returns the error that stopped the program, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{schedulePollTick(m.opts.PollInterval)}
	if m.opts.Changes != nil {
		cmds = append(cmds, m.waitForChange())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pollTickMsg:
		m.checkSize()
		return m.step(Input{}, schedulePollTick(m.opts.PollInterval))
	case tea.KeyPressMsg:
		return m.step(m.opts.Keys.Resolve(msg), nil)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m.step(Input{}, nil)
	case filesChangedMsg:
		m.log.Debug().Strs("paths", msg.change.Paths).Msg("files changed")
		return m.step(Input{Action: ActionRefresh}, m.waitForChange())
	case watchStoppedMsg:
		if msg.err != nil && !errors.Is(msg.err, watch.ErrClosed) {
			m.log.Warn().Err(msg.err).Msg("file watch stopped")
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() tea.View {
	return tea.NewView("")
}

func (m Model) step(in Input, next tea.Cmd) (tea.Model, tea.Cmd) {
	if err := m.engine.Step(in); err != nil {
		m.err = err
		return m, tea.Quit
	}
	if m.engine.Quitting() {
		return m, tea.Quit
	}
	return m, next
}

func (m Model) checkSize() {
	if m.opts.Size == nil {
		return
	}
	w, h, err := m.opts.Size()
	if err != nil {
		return
	}
	m.resize(w, h)
}

func (m Model) resize(w, h int) {
	cw, ch := m.engine.renderer.Size()
	if w == cw && h == ch {
		return
	}
	m.log.Debug().Int("width", w).Int("height", h).Msg("terminal resized")
	m.engine.Resize(w, h)
}

// waitForChange blocks on the change source inside a command and reports the
// next batch. It is issued again after every batch.
func (m Model) waitForChange() tea.Cmd {
	src := m.opts.Changes
	return func() tea.Msg {
		change, err := src.Next()
		if err != nil {
			return watchStoppedMsg{err: err}
		}
		return filesChangedMsg{change: change}
	}
}
