package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/rtgrep/internal/core/debounce"
	"github.com/colonyops/rtgrep/internal/core/lines"
	"github.com/colonyops/rtgrep/internal/core/search"
	"github.com/colonyops/rtgrep/pkg/executil"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fixture is an engine wired to a recording spawner, a fake clock and an
// in-memory terminal.
type fixture struct {
	clock   *fakeClock
	spawner *executil.RecordingSpawner
	store   *lines.Store
	out     *bytes.Buffer
	engine  *Engine
}

func newFixture(t *testing.T, opts EngineOptions) *fixture {
	t.Helper()

	f := &fixture{
		clock:   &fakeClock{now: time.Unix(1_700_000_000, 0)},
		spawner: &executil.RecordingSpawner{Outputs: map[string][]string{}},
		store:   lines.NewStore(4),
		out:     &bytes.Buffer{},
	}
	mgr := search.NewManager(f.spawner, search.Options{Command: "find"})
	sched := debounce.New(100*time.Millisecond, debounce.WithClock(f.clock.Now))
	r := NewRenderer(f.out, 40, 10, RenderOptions{})
	f.engine = NewEngine(context.Background(), f.store, mgr, sched, r, opts)
	t.Cleanup(f.engine.Close)
	return f
}

func (f *fixture) typeText(t *testing.T, s string) {
	t.Helper()
	for i := 0; i < len(s); i++ {
		require.NoError(t, f.engine.Step(Input{Action: ActionInsert, Char: s[i]}))
	}
}

func (f *fixture) step(t *testing.T, a Action) {
	t.Helper()
	require.NoError(t, f.engine.Step(Input{Action: a}))
}

func contents(it []lines.Item) []string {
	out := make([]string, len(it))
	for i := range it {
		out[i] = it[i].Content
	}
	return out
}

func TestEngine_SearchStartsAfterQuietPeriod(t *testing.T) {
	f := newFixture(t, EngineOptions{})

	f.typeText(t, "a")
	f.clock.Advance(10 * time.Millisecond)
	f.typeText(t, "b")
	f.clock.Advance(10 * time.Millisecond)
	f.typeText(t, "c")

	f.clock.Advance(99 * time.Millisecond)
	f.step(t, ActionNone)
	assert.Empty(t, f.spawner.Commands(), "still typing")

	f.clock.Advance(time.Millisecond)
	f.step(t, ActionNone)
	assert.Equal(t, []string{`find "abc" .`}, f.spawner.Commands())

	f.clock.Advance(time.Second)
	f.step(t, ActionNone)
	assert.Len(t, f.spawner.Commands(), 1, "fires once per pattern change")
}

func TestEngine_EmptyPatternNeverSearches(t *testing.T) {
	f := newFixture(t, EngineOptions{})

	f.typeText(t, "a")
	f.step(t, ActionBackspace)
	f.clock.Advance(time.Second)
	f.step(t, ActionNone)

	assert.Empty(t, f.spawner.Commands())
	assert.Empty(t, f.engine.Pattern())
}

func TestEngine_PatternChangeCancelsBeforeNextStart(t *testing.T) {
	f := newFixture(t, EngineOptions{})
	f.spawner.KeepOpen = true

	f.typeText(t, "a")
	f.clock.Advance(100 * time.Millisecond)
	f.step(t, ActionNone)

	f.typeText(t, "b")
	f.clock.Advance(100 * time.Millisecond)
	f.step(t, ActionNone)

	assert.Equal(t, []executil.RecordedEvent{
		{Kind: executil.EventSpawn, Cmd: `find "a" .`},
		{Kind: executil.EventTerminate, Cmd: `find "a" .`},
		{Kind: executil.EventSpawn, Cmd: `find "ab" .`},
	}, f.spawner.Events)
}

func TestEngine_DrainsResultsIntoStore(t *testing.T) {
	f := newFixture(t, EngineOptions{})
	f.spawner.Outputs[`find "x" .`] = []string{"one\ntwo\n", "three\nfour\nfive\n"}

	f.engine.SetPattern("x")
	f.clock.Advance(100 * time.Millisecond)
	for range 5 {
		f.step(t, ActionNone)
	}

	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, contents(f.engine.Items()))
	assert.Equal(t, 8, f.store.Cap(), "store grew past its initial capacity")
}

func TestEngine_DrainIsBoundedPerStep(t *testing.T) {
	f := newFixture(t, EngineOptions{MaxDrain: 2})
	f.spawner.Outputs[`find "x" .`] = []string{"1\n2\n3\n4\n5\n"}

	f.engine.SetPattern("x")
	f.clock.Advance(100 * time.Millisecond)

	f.step(t, ActionNone)
	assert.Equal(t, 2, f.store.Len())
	f.step(t, ActionNone)
	assert.Equal(t, 4, f.store.Len())
	f.step(t, ActionNone)
	assert.Equal(t, 5, f.store.Len())
}

func TestEngine_NewSearchClearsPreviousResults(t *testing.T) {
	f := newFixture(t, EngineOptions{})
	f.spawner.Outputs[`find "a" .`] = []string{"old\n"}
	f.spawner.Outputs[`find "ab" .`] = []string{"new\n"}

	f.typeText(t, "a")
	f.clock.Advance(100 * time.Millisecond)
	f.step(t, ActionNone)
	require.Equal(t, []string{"old"}, contents(f.engine.Items()))

	f.typeText(t, "b")
	assert.Equal(t, []string{"old"}, contents(f.engine.Items()), "kept until the next search starts")

	f.clock.Advance(100 * time.Millisecond)
	f.step(t, ActionNone)
	assert.Equal(t, []string{"new"}, contents(f.engine.Items()))
}

func TestEngine_SpawnErrorKeepsRunning(t *testing.T) {
	f := newFixture(t, EngineOptions{})
	f.spawner.Errors = map[string]error{`find "x" .`: errors.New("fork failed")}

	f.engine.SetPattern("x")
	f.clock.Advance(100 * time.Millisecond)
	f.step(t, ActionNone)

	assert.Zero(t, f.store.Len())
	assert.False(t, f.engine.Quitting())
}

func TestEngine_PatternLengthCapped(t *testing.T) {
	f := newFixture(t, EngineOptions{MaxPatternLength: 3})

	f.typeText(t, "abcd")
	assert.Equal(t, "abc", f.engine.Pattern())

	f.engine.SetPattern("toolong")
	assert.Equal(t, "too", f.engine.Pattern())
}

func TestEngine_BackspaceOnEmptyPatternIsNoop(t *testing.T) {
	f := newFixture(t, EngineOptions{})
	f.spawner.KeepOpen = true

	f.engine.SetPattern("x")
	f.clock.Advance(100 * time.Millisecond)
	f.step(t, ActionNone)
	f.step(t, ActionBackspace)
	events := len(f.spawner.Events)

	f.step(t, ActionBackspace)
	assert.Len(t, f.spawner.Events, events, "nothing to cancel or restart")
}

func TestEngine_ScrollAndToggle(t *testing.T) {
	f := newFixture(t, EngineOptions{PageSize: 10})
	for i := range 25 {
		f.store.Add(string(rune('a'+i)), 0)
	}

	f.step(t, ActionLineDown)
	assert.Equal(t, lines.Pane{Position: 1, Length: 24}, f.store.Pane())

	f.step(t, ActionPageDown)
	f.step(t, ActionPageDown)
	assert.Equal(t, 21, f.store.Pane().Position)

	f.step(t, ActionPageDown)
	assert.Equal(t, 21, f.store.Pane().Position, "page past the end is rejected")

	f.step(t, ActionToggle)
	assert.True(t, f.store.Items()[21].Selected)

	f.step(t, ActionPageUp)
	f.step(t, ActionPageUp)
	f.step(t, ActionLineUp)
	assert.Equal(t, 0, f.store.Pane().Position)

	f.step(t, ActionLineUp)
	assert.Equal(t, 0, f.store.Pane().Position, "scroll above the top is rejected")
}

func TestEngine_ScrollRedrawsFromPanePosition(t *testing.T) {
	f := newFixture(t, EngineOptions{})
	for _, s := range []string{"first", "second", "third"} {
		f.store.Add(s, 0)
	}
	f.step(t, ActionNone)

	scr := newScreen(40, 10)
	f.out.Reset()
	f.step(t, ActionLineDown)
	scr.feed(f.out.String())

	assert.Equal(t, " second", scr.line(1))
	assert.Equal(t, " third", scr.line(2))
}

func TestEngine_RefreshRearmsSearch(t *testing.T) {
	f := newFixture(t, EngineOptions{})
	f.spawner.Outputs[`find "x" .`] = []string{"hit\n"}

	f.engine.SetPattern("x")
	f.clock.Advance(100 * time.Millisecond)
	f.step(t, ActionNone)
	f.step(t, ActionRefresh)
	f.clock.Advance(100 * time.Millisecond)
	f.step(t, ActionNone)

	assert.Equal(t, []string{`find "x" .`, `find "x" .`}, f.spawner.Commands())
	assert.Equal(t, []string{"hit"}, contents(f.engine.Items()))
}

func TestEngine_RefreshWithoutPatternIsNoop(t *testing.T) {
	f := newFixture(t, EngineOptions{})

	f.step(t, ActionRefresh)
	f.clock.Advance(time.Second)
	f.step(t, ActionNone)

	assert.Empty(t, f.spawner.Events)
}

func TestEngine_QuitSkipsDrawing(t *testing.T) {
	f := newFixture(t, EngineOptions{})
	f.step(t, ActionNone)
	f.out.Reset()

	f.step(t, ActionQuit)

	assert.True(t, f.engine.Quitting())
	assert.Empty(t, f.out.String())
}

func TestEngine_FirstStepDrawsFullFrame(t *testing.T) {
	f := newFixture(t, EngineOptions{})
	f.step(t, ActionNone)

	scr := newScreen(40, 10)
	scr.feed(f.out.String())
	assert.Equal(t, "| >", scr.line(9)[:3])
}
