package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	change Change
	err    error
}

func next(w *Watcher) <-chan result {
	ch := make(chan result, 1)
	go func() {
		c, err := w.Next()
		ch <- result{change: c, err: err}
	}()
	return ch
}

func waitChange(t *testing.T, ch <-chan result) Change {
	t.Helper()
	select {
	case r := <-ch:
		require.NoError(t, r.err)
		return r.change
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
		return Change{}
	}
}

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(p, 0o755))
	return p
}

func TestNew_SkipsIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "src", "pkg")
	mkdir(t, root, ".git", "objects")
	mkdir(t, root, "node_modules", "dep")

	w, err := New(root, Options{Ignore: []string{"**/.git/**", "**/node_modules/**"}})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	// root, src, src/pkg
	assert.Equal(t, 3, w.Dirs())
}

func TestNew_MaxDirs(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"a", "b", "c", "d"} {
		mkdir(t, root, d)
	}

	w, err := New(root, Options{MaxDirs: 2})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	assert.Equal(t, 2, w.Dirs())
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), Options{})
	require.Error(t, err)
}

func TestWatcher_ReportsSettledBatch(t *testing.T) {
	root := t.TempDir()
	sub := mkdir(t, root, "sub")

	w, err := New(root, Options{Settle: 50 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ch := next(w)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.txt"), []byte("b"), 0o644))

	change := waitChange(t, ch)
	assert.Contains(t, change.Paths, "a.txt")
	assert.Contains(t, change.Paths, "sub/b.txt")
}

func TestWatcher_IgnoresMatchingFiles(t *testing.T) {
	root := t.TempDir()

	w, err := New(root, Options{Ignore: []string{"**/*.swp"}, Settle: 50 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ch := next(w)
	require.NoError(t, os.WriteFile(filepath.Join(root, "x.swp"), []byte("x"), 0o644))
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "real.go"), []byte("x"), 0o644))

	change := waitChange(t, ch)
	assert.Equal(t, []string{"real.go"}, change.Paths)
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()

	w, err := New(root, Options{Settle: 50 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ch := next(w)
	mkdir(t, root, "fresh")
	waitChange(t, ch)
	assert.Equal(t, 2, w.Dirs())

	ch = next(w)
	require.NoError(t, os.WriteFile(filepath.Join(root, "fresh", "f.txt"), []byte("x"), 0o644))
	change := waitChange(t, ch)
	assert.Contains(t, change.Paths, "fresh/f.txt")
}

func TestWatcher_Close(t *testing.T) {
	w, err := New(t.TempDir(), Options{})
	require.NoError(t, err)

	ch := next(w)
	require.NoError(t, w.Close())

	select {
	case r := <-ch:
		require.ErrorIs(t, r.err, ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Next did not return after Close")
	}
}
