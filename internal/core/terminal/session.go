// Package terminal owns the controlling terminal for the lifetime of the UI.
//
// A Session is acquired once at startup and released exactly once on every
// exit path. Standard output is never touched: the UI draws on the terminal
// device directly so that stdout stays free for the results printed on exit.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

// DefaultDevice is the controlling terminal device.
const DefaultDevice = "/dev/tty"

// Session is an acquired terminal in raw mode.
type Session struct {
	tty       *os.File
	fd        int
	state     *term.State
	altScreen bool
	owned     bool

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Session.
type Option func(*Session)

// WithAltScreen draws on the alternate screen so the shell scrollback is
// restored when the session closes.
func WithAltScreen(enabled bool) Option {
	return func(s *Session) { s.altScreen = enabled }
}

// Open acquires the terminal device at path (DefaultDevice when empty).
func Open(path string, opts ...Option) (*Session, error) {
	if path == "" {
		path = DefaultDevice
	}

	tty, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	s, err := acquire(tty, true, opts...)
	if err != nil {
		_ = tty.Close()
		return nil, err
	}
	return s, nil
}

// FromFile acquires an already open terminal. The file is not closed by
// Close.
func FromFile(tty *os.File, opts ...Option) (*Session, error) {
	return acquire(tty, false, opts...)
}

func acquire(tty *os.File, owned bool, opts ...Option) (*Session, error) {
	s := &Session{
		tty:       tty,
		fd:        int(tty.Fd()),
		altScreen: true,
		owned:     owned,
	}
	for _, opt := range opts {
		opt(s)
	}

	if !term.IsTerminal(s.fd) {
		return nil, fmt.Errorf("%s is not a terminal", tty.Name())
	}

	state, err := term.MakeRaw(s.fd)
	if err != nil {
		return nil, fmt.Errorf("set raw mode: %w", err)
	}
	s.state = state

	enter := ansi.HideCursor
	if s.altScreen {
		enter = ansi.SetModeAltScreenSaveCursor + enter
	}
	if _, err := io.WriteString(s.tty, enter); err != nil {
		_ = term.Restore(s.fd, s.state)
		return nil, fmt.Errorf("prepare screen: %w", err)
	}

	return s, nil
}

// File returns the terminal device, used for both key input and drawing.
func (s *Session) File() *os.File { return s.tty }

// Write draws to the terminal.
func (s *Session) Write(p []byte) (int, error) { return s.tty.Write(p) }

// Size returns the terminal width and height in cells.
func (s *Session) Size() (width, height int, err error) {
	width, height, err = term.GetSize(s.fd)
	if err != nil {
		return 0, 0, fmt.Errorf("terminal size: %w", err)
	}
	return width, height, nil
}

// Close restores the screen and the original terminal mode. It is safe to
// call more than once; only the first call does any work.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		leave := ansi.ResetStyle + ansi.ShowCursor
		if s.altScreen {
			leave += ansi.ResetModeAltScreenSaveCursor
		}

		var errs []error
		if _, err := io.WriteString(s.tty, leave); err != nil {
			errs = append(errs, fmt.Errorf("restore screen: %w", err))
		}
		if err := term.Restore(s.fd, s.state); err != nil {
			errs = append(errs, fmt.Errorf("restore terminal mode: %w", err))
		}
		if s.owned {
			if err := s.tty.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close terminal: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
