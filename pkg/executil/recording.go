package executil

import (
	"io"
	"os"
	"sync"
)

// EventKind identifies a recorded spawner event.
type EventKind string

const (
	EventSpawn     EventKind = "spawn"
	EventTerminate EventKind = "terminate"
)

// RecordedEvent captures a spawn or terminate call in the order it happened.
type RecordedEvent struct {
	Kind EventKind
	Cmd  string
}

// RecordingSpawner captures spawned commands for testing. Configure Outputs
// and Errors maps to control what each spawned stream produces.
type RecordingSpawner struct {
	mu     sync.Mutex
	Events []RecordedEvent

	// Outputs maps a full command line to the chunks its stream yields, one
	// chunk per ReadAvailable call. An empty chunk simulates a poll with no
	// data available.
	Outputs map[string][]string

	// Errors maps a full command line to a spawn error.
	Errors map[string]error

	// KeepOpen leaves streams open after their chunks are consumed instead of
	// reporting io.EOF, like a long running search.
	KeepOpen bool

	nextPid int
}

// Spawn records the command and returns a scripted stream.
func (r *RecordingSpawner) Spawn(command string) (Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Events = append(r.Events, RecordedEvent{Kind: EventSpawn, Cmd: command})

	if err := r.Errors[command]; err != nil {
		return nil, err
	}

	r.nextPid++
	return &ScriptedStream{
		owner:    r,
		cmd:      command,
		pid:      1000 + r.nextPid,
		chunks:   append([]string(nil), r.Outputs[command]...),
		keepOpen: r.KeepOpen,
	}, nil
}

// Commands returns the spawned command lines in order.
func (r *RecordingSpawner) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, e := range r.Events {
		if e.Kind == EventSpawn {
			out = append(out, e.Cmd)
		}
	}
	return out
}

// Reset clears recorded events.
func (r *RecordingSpawner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = nil
}

func (r *RecordingSpawner) record(kind EventKind, cmd string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, RecordedEvent{Kind: kind, Cmd: cmd})
}

// ScriptedStream replays configured chunks.
type ScriptedStream struct {
	owner      *RecordingSpawner
	cmd        string
	pid        int
	chunks     []string
	pending    string
	keepOpen   bool
	terminated bool
}

func (s *ScriptedStream) Pid() int { return s.pid }

// Terminated reports whether Terminate was called.
func (s *ScriptedStream) Terminated() bool { return s.terminated }

func (s *ScriptedStream) ReadAvailable(p []byte) (int, error) {
	if s.terminated {
		return 0, os.ErrClosed
	}

	if s.pending == "" {
		if len(s.chunks) == 0 {
			if s.keepOpen {
				return 0, nil
			}
			return 0, io.EOF
		}
		s.pending, s.chunks = s.chunks[0], s.chunks[1:]
		if s.pending == "" {
			return 0, nil
		}
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *ScriptedStream) Terminate() error {
	if s.terminated {
		return nil
	}
	s.terminated = true
	s.owner.record(EventTerminate, s.cmd)
	return nil
}
