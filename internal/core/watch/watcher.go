// Package watch reports file changes under the search root so that the
// current pattern can be searched again.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/rtgrep/internal/core/logging"
)

// DefaultSettle is how long events are collected before a batch is reported.
const DefaultSettle = 200 * time.Millisecond

// ErrClosed is returned by Next once the watcher has been closed.
var ErrClosed = errors.New("watcher closed")

// Options configures a Watcher.
type Options struct {
	// Ignore holds doublestar globs matched against slash separated paths
	// relative to the root. Matching directories are not watched at all.
	Ignore  []string
	MaxDirs int
	Settle  time.Duration
}

// Change is a settled batch of file system events.
type Change struct {
	Paths []string // relative to the root, sorted
}

// Watcher watches a directory tree recursively.
type Watcher struct {
	root    string
	opts    Options
	watcher *fsnotify.Watcher
	dirs    int
	log     zerolog.Logger
}

// New starts watching root and every directory below it that is not ignored.
// Directories beyond MaxDirs are skipped with a warning.
func New(root string, opts Options) (*Watcher, error) {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		root:    abs,
		opts:    opts,
		watcher: fw,
		log:     logging.Component("watch"),
	}

	if err := w.addRecursive(abs); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w.log.Debug().Str("root", abs).Int("dirs", w.dirs).Msg("watching")
	return w, nil
}

// Dirs returns the number of watched directories.
func (w *Watcher) Dirs() int { return w.dirs }

// Next blocks until a batch of relevant changes settled and returns it.
// Events arriving within the settle window of each other are merged.
func (w *Watcher) Next() (Change, error) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return Change{}, ErrClosed
			}

			changed := map[string]bool{}
			w.handle(event, changed)

			settle := time.NewTimer(w.opts.Settle)
		settleLoop:
			for {
				select {
				case e, ok := <-w.watcher.Events:
					if !ok {
						settle.Stop()
						return Change{}, ErrClosed
					}
					w.handle(e, changed)
					if !settle.Stop() {
						<-settle.C
					}
					settle.Reset(w.opts.Settle)
				case <-settle.C:
					break settleLoop
				}
			}

			if len(changed) == 0 {
				continue
			}

			paths := make([]string, 0, len(changed))
			for p := range changed {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			return Change{Paths: paths}, nil

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return Change{}, ErrClosed
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// Close stops the watcher. A blocked Next returns ErrClosed.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handle(event fsnotify.Event, changed map[string]bool) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	rel, ok := w.rel(event.Name)
	if !ok || w.ignored(rel) {
		return
	}

	// new directories join the watch set
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.log.Debug().Err(err).Str("path", rel).Msg("watch new directory")
			}
		}
	}

	changed[rel] = true
}

func (w *Watcher) rel(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) ignored(rel string) bool {
	if rel == "." {
		return false
	}
	for _, pattern := range w.opts.Ignore {
		if doublestar.MatchUnvalidated(pattern, rel) || doublestar.MatchUnvalidated(pattern, rel+"/") {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursive(path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Debug().Err(err).Str("path", p).Msg("skipping path during walk")
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		rel, ok := w.rel(p)
		if !ok {
			return filepath.SkipDir
		}
		if w.ignored(rel) {
			return filepath.SkipDir
		}
		if w.opts.MaxDirs > 0 && w.dirs >= w.opts.MaxDirs {
			w.log.Warn().Int("max_dirs", w.opts.MaxDirs).Msg("directory limit reached, not watching the rest")
			return filepath.SkipAll
		}

		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", rel, err)
		}
		w.dirs++
		return nil
	})
}
