package tui

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/colonyops/rtgrep/internal/core/debounce"
	"github.com/colonyops/rtgrep/internal/core/lines"
	"github.com/colonyops/rtgrep/internal/core/logging"
	"github.com/colonyops/rtgrep/internal/core/search"
)

// Defaults for EngineOptions.
const (
	DefaultMaxPatternLength = 255
	DefaultMaxDrain         = 256
	DefaultPageSize         = 10
)

// EngineOptions configures an Engine.
type EngineOptions struct {
	MaxPatternLength int
	// MaxDrain caps the lines moved into the store per step.
	MaxDrain int
	PageSize int
}

// Engine is the search loop: one Step per event, driven by the Model.
// It is not safe for concurrent use.
type Engine struct {
	ctx      context.Context
	store    *lines.Store
	search   *search.Manager
	debounce *debounce.Scheduler
	renderer *Renderer
	opts     EngineOptions
	log      zerolog.Logger

	pattern    []byte
	fullRedraw bool
	quitting   bool
}

// NewEngine wires the loop components together. The first Step always
// draws a full frame.
func NewEngine(ctx context.Context, store *lines.Store, mgr *search.Manager, sched *debounce.Scheduler, r *Renderer, opts EngineOptions) *Engine {
	if opts.MaxPatternLength <= 0 {
		opts.MaxPatternLength = DefaultMaxPatternLength
	}
	if opts.MaxDrain <= 0 {
		opts.MaxDrain = DefaultMaxDrain
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}

	return &Engine{
		ctx:        ctx,
		store:      store,
		search:     mgr,
		debounce:   sched,
		renderer:   r,
		opts:       opts,
		log:        logging.Component("tui"),
		fullRedraw: true,
	}
}

// SetPattern replaces the pattern, e.g. with the one given on the command
// line, and arms the debounce so it is searched once the quiet period ends.
func (e *Engine) SetPattern(pattern string) {
	if len(pattern) > e.opts.MaxPatternLength {
		pattern = pattern[:e.opts.MaxPatternLength]
	}
	e.pattern = []byte(pattern)
	e.patternChanged()
}

// Pattern returns the current pattern.
func (e *Engine) Pattern() string { return string(e.pattern) }

// Quitting reports whether a quit key was pressed.
func (e *Engine) Quitting() bool { return e.quitting }

// Items returns every line collected by the most recent search.
func (e *Engine) Items() []lines.Item { return e.store.Items() }

// Resize adapts to a new terminal size and redraws everything.
func (e *Engine) Resize(width, height int) {
	e.renderer.Resize(width, height)
	e.fullRedraw = true
}

// Close stops the live search, if any.
func (e *Engine) Close() {
	e.search.Cancel()
}

// Step runs one loop iteration: start a due search, drain available output,
// apply in, then draw.
func (e *Engine) Step(in Input) error {
	if e.debounce.ShouldSearch(string(e.pattern), e.search.Live()) {
		e.store.Clear()
		e.fullRedraw = true
		if err := e.search.Start(e.ctx, string(e.pattern)); err != nil {
			e.log.Warn().Err(err).Str("pattern", string(e.pattern)).Msg("start search")
		}
	}

	e.drain()

	if e.apply(in) {
		return nil
	}

	err := e.renderer.Draw(string(e.pattern), e.store.PaneItems(), e.fullRedraw)
	e.fullRedraw = false
	return err
}

func (e *Engine) drain() {
	for range e.opts.MaxDrain {
		line, status := e.search.Poll()
		if status != search.PollLine {
			return
		}
		e.store.Add(line, e.search.MaxLineLength())
	}
}

// apply handles one input and reports whether the loop should stop.
func (e *Engine) apply(in Input) bool {
	switch in.Action {
	case ActionInsert:
		if len(e.pattern) < e.opts.MaxPatternLength {
			e.pattern = append(e.pattern, in.Char)
			e.patternChanged()
		}
	case ActionBackspace:
		if len(e.pattern) > 0 {
			e.pattern = e.pattern[:len(e.pattern)-1]
			e.patternChanged()
		}
	case ActionLineUp:
		e.scroll(-1)
	case ActionLineDown:
		e.scroll(1)
	case ActionPageUp:
		e.scroll(-e.opts.PageSize)
	case ActionPageDown:
		e.scroll(e.opts.PageSize)
	case ActionToggle:
		if e.store.ToggleSelected(0) {
			e.fullRedraw = true
		}
	case ActionRefresh:
		if len(e.pattern) > 0 {
			e.log.Debug().Msg("files changed, searching again")
			e.patternChanged()
		}
	case ActionQuit:
		e.quitting = true
		return true
	}
	return false
}

func (e *Engine) patternChanged() {
	e.search.Cancel()
	e.debounce.RecordKeypress()
}

func (e *Engine) scroll(delta int) {
	if e.store.Scroll(delta) {
		e.fullRedraw = true
	}
}
