// Package debounce decides when a typed pattern has been quiet long enough to
// start a search.
package debounce

import "time"

// DefaultQuietPeriod is the time without keystrokes required before a search
// starts.
const DefaultQuietPeriod = 100 * time.Millisecond

// Scheduler tracks the most recent pattern-changing keystroke and whether a
// search is still owed for it.
type Scheduler struct {
	quiet   time.Duration
	now     func() time.Time
	last    time.Time
	pending bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New returns a disarmed scheduler. A non-positive quiet period falls back to
// DefaultQuietPeriod.
func New(quiet time.Duration, opts ...Option) *Scheduler {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	s := &Scheduler{quiet: quiet, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordKeypress stamps the current time and arms the scheduler.
func (s *Scheduler) RecordKeypress() {
	s.last = s.now()
	s.pending = true
}

// Armed reports whether a search is still owed.
func (s *Scheduler) Armed() bool { return s.pending }

// QuietPeriod returns the configured quiet period.
func (s *Scheduler) QuietPeriod() time.Duration { return s.quiet }

// ShouldSearch reports whether a search should start now. It never fires for
// an empty pattern or while a search is live, and fires at most once per
// arming: a true result disarms the scheduler.
func (s *Scheduler) ShouldSearch(pattern string, live bool) bool {
	if pattern == "" || !s.pending || live {
		return false
	}
	if s.now().Sub(s.last) < s.quiet {
		return false
	}
	s.pending = false
	return true
}
