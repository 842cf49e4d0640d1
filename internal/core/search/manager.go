// Package search owns the lifecycle of the external search process: building
// the command line, spawning it, turning its output into lines and cancelling
// it when the pattern changes.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/rtgrep/internal/core/logging"
	"github.com/colonyops/rtgrep/pkg/executil"
)

// DefaultMaxLineLength is the number of bytes kept from each output line.
const DefaultMaxLineLength = 511

const readChunk = 4096

// PollStatus is the outcome of a Poll call.
type PollStatus int

const (
	// PollEmpty means no complete line is available right now.
	PollEmpty PollStatus = iota
	// PollLine means a line was returned.
	PollLine
	// PollClosed is reported once after the search output ended and every
	// line was handed out.
	PollClosed
)

func (s PollStatus) String() string {
	switch s {
	case PollLine:
		return "line"
	case PollClosed:
		return "closed"
	default:
		return "empty"
	}
}

// Options configures a Manager.
type Options struct {
	Command       string // command template, see BuildCommand
	Dir           string // search root passed to the command
	MaxLineLength int
}

// Manager runs at most one search at a time. It is driven from a single
// goroutine and never blocks: Poll only returns output that is already
// available.
type Manager struct {
	spawner executil.Spawner
	opts    Options
	log     zerolog.Logger

	stream executil.Stream
	asm    *Assembler
	buf    []byte
	closed bool

	ctx     context.Context
	seq     int
	started time.Time
	lines   int
}

// NewManager returns an idle manager.
func NewManager(spawner executil.Spawner, opts Options) *Manager {
	if opts.Command == "" {
		opts.Command = DefaultCommand
	}
	if opts.Dir == "" {
		opts.Dir = DefaultDir
	}
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = DefaultMaxLineLength
	}

	return &Manager{
		spawner: spawner,
		opts:    opts,
		log:     logging.Component("search"),
		asm:     NewAssembler(opts.MaxLineLength),
		buf:     make([]byte, readChunk),
		ctx:     context.Background(),
	}
}

// MaxLineLength returns the configured line limit in bytes.
func (m *Manager) MaxLineLength() int { return m.opts.MaxLineLength }

// Live reports whether a search process is currently attached.
func (m *Manager) Live() bool { return m.stream != nil }

// Start cancels any live search and launches a new one for pattern.
func (m *Manager) Start(ctx context.Context, pattern string) error {
	m.Cancel()

	cmdline, err := BuildCommand(m.opts.Command, pattern, m.opts.Dir)
	if err != nil {
		return err
	}

	m.seq++
	m.ctx = logging.WithPattern(logging.WithSearchID(ctx, strconv.Itoa(m.seq)), pattern)

	stream, err := m.spawner.Spawn(cmdline)
	if err != nil {
		return fmt.Errorf("spawn search: %w", err)
	}

	m.stream = stream
	m.closed = false
	m.started = time.Now()
	m.lines = 0

	m.log.Debug().Ctx(m.ctx).
		Str("cmd", cmdline).
		Int("child_pid", stream.Pid()).
		Msg("search started")

	return nil
}

// Cancel stops the live search, if any, and discards output that was not
// handed out yet. It is a no-op when idle.
func (m *Manager) Cancel() {
	m.asm.Reset()
	m.closed = false

	if m.stream == nil {
		return
	}

	if err := m.stream.Terminate(); err != nil {
		m.log.Warn().Ctx(m.ctx).Err(err).Msg("terminate search")
	}
	m.log.Debug().Ctx(m.ctx).
		Int("lines", m.lines).
		Dur("elapsed", time.Since(m.started)).
		Msg("search cancelled")
	m.stream = nil
}

// Poll returns the next available line. It reads from the process only when
// no assembled line is waiting, and at most one chunk per call.
func (m *Manager) Poll() (string, PollStatus) {
	if line, ok := m.next(); ok {
		return line, PollLine
	}

	if m.stream == nil {
		if m.closed {
			m.closed = false
			return "", PollClosed
		}
		return "", PollEmpty
	}

	n, err := m.stream.ReadAvailable(m.buf)
	if n > 0 {
		_, _ = m.asm.Write(m.buf[:n])
	}
	if err != nil {
		if !errors.Is(err, io.EOF) {
			m.log.Warn().Ctx(m.ctx).Err(err).Msg("read search output")
		}
		m.finish()
	}

	if line, ok := m.next(); ok {
		return line, PollLine
	}
	if m.closed {
		m.closed = false
		return "", PollClosed
	}
	return "", PollEmpty
}

func (m *Manager) next() (string, bool) {
	line, ok := m.asm.Next()
	if ok {
		m.lines++
	}
	return line, ok
}

// finish handles the end of the output stream. The trailing partial line is
// kept and the process handle released.
func (m *Manager) finish() {
	m.asm.Flush()
	if err := m.stream.Terminate(); err != nil {
		m.log.Warn().Ctx(m.ctx).Err(err).Msg("release search")
	}
	m.stream = nil
	m.closed = true

	m.log.Debug().Ctx(m.ctx).
		Int("lines", m.lines+m.asm.Pending()).
		Dur("elapsed", time.Since(m.started)).
		Msg("search finished")
}
