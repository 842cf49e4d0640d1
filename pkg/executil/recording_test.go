package executil

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingSpawner(t *testing.T) {
	t.Run("replays chunks then EOF", func(t *testing.T) {
		r := &RecordingSpawner{
			Outputs: map[string][]string{"cmd": {"ab", "", "cd"}},
		}

		s, err := r.Spawn("cmd")
		require.NoError(t, err)

		buf := make([]byte, 8)

		n, err := s.ReadAvailable(buf)
		require.NoError(t, err)
		assert.Equal(t, "ab", string(buf[:n]))

		n, err = s.ReadAvailable(buf)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		n, err = s.ReadAvailable(buf)
		require.NoError(t, err)
		assert.Equal(t, "cd", string(buf[:n]))

		_, err = s.ReadAvailable(buf)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("splits chunks larger than the buffer", func(t *testing.T) {
		r := &RecordingSpawner{Outputs: map[string][]string{"cmd": {"abcdef"}}}
		s, err := r.Spawn("cmd")
		require.NoError(t, err)

		buf := make([]byte, 4)
		n, _ := s.ReadAvailable(buf)
		assert.Equal(t, "abcd", string(buf[:n]))
		n, _ = s.ReadAvailable(buf)
		assert.Equal(t, "ef", string(buf[:n]))
	})

	t.Run("keep open never reports EOF", func(t *testing.T) {
		r := &RecordingSpawner{KeepOpen: true}
		s, err := r.Spawn("cmd")
		require.NoError(t, err)

		n, err := s.ReadAvailable(make([]byte, 4))
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("spawn error", func(t *testing.T) {
		boom := errors.New("boom")
		r := &RecordingSpawner{Errors: map[string]error{"bad": boom}}

		_, err := r.Spawn("bad")
		require.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"bad"}, r.Commands())
	})

	t.Run("records terminate order", func(t *testing.T) {
		r := &RecordingSpawner{}
		a, _ := r.Spawn("a")
		require.NoError(t, a.Terminate())
		assert.True(t, a.(*ScriptedStream).Terminated())
		require.NoError(t, a.Terminate())
		_, _ = r.Spawn("b")

		assert.Equal(t, []RecordedEvent{
			{Kind: EventSpawn, Cmd: "a"},
			{Kind: EventTerminate, Cmd: "a"},
			{Kind: EventSpawn, Cmd: "b"},
		}, r.Events)

		_, err := a.ReadAvailable(make([]byte, 1))
		assert.ErrorIs(t, err, os.ErrClosed)

		r.Reset()
		assert.Empty(t, r.Events)
	})
}
