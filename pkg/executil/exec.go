// Package executil provides shell execution utilities.
package executil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// DefaultShell is the interpreter used when a ShellSpawner has none configured.
const DefaultShell = "sh"

// Stream is the merged stdout/stderr of a running command.
type Stream interface {
	// ReadAvailable copies whatever output is available right now into p. It
	// never blocks: (0, nil) means nothing is available yet and io.EOF means
	// the command closed its output.
	ReadAvailable(p []byte) (int, error)
	// Terminate signals the command to stop, releases the read handle and
	// reaps the process in the background. Safe to call more than once.
	Terminate() error
	// Pid returns the process id of the command.
	Pid() int
}

// Spawner starts shell commands whose output is consumed as a Stream.
type Spawner interface {
	Spawn(command string) (Stream, error)
}

// ShellSpawner runs commands through `<Shell> -c` with stdout and stderr
// merged into one non-blocking pipe. Each command runs in its own process
// group so that Terminate reaches the whole pipeline.
type ShellSpawner struct {
	Shell string
	Dir   string // empty means inherit cwd
}

// Spawn starts command and returns its output stream.
func (s *ShellSpawner) Spawn(command string) (Stream, error) {
	shell := s.Shell
	if shell == "" {
		shell = DefaultShell
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create pipe: %w", err)
	}

	c := exec.Command(shell, "-c", command)
	c.Dir = s.Dir
	c.Stdout = w
	c.Stderr = w
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := c.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, fmt.Errorf("start %s: %w", shell, err)
	}
	// the child holds its own copy of the write end
	_ = w.Close()

	abort := func(err error) (Stream, error) {
		_ = r.Close()
		_ = unix.Kill(-c.Process.Pid, unix.SIGTERM)
		go func() { _ = c.Wait() }()
		return nil, err
	}

	rc, err := r.SyscallConn()
	if err != nil {
		return abort(fmt.Errorf("pipe conn: %w", err))
	}

	var nbErr error
	ctlErr := rc.Control(func(fd uintptr) {
		nbErr = unix.SetNonblock(int(fd), true)
	})
	if err := errors.Join(ctlErr, nbErr); err != nil {
		return abort(fmt.Errorf("set nonblocking: %w", err))
	}

	p := &pipeStream{
		cmd:  c,
		file: r,
		conn: rc,
		done: make(chan struct{}),
	}
	go p.reap()

	return p, nil
}

type pipeStream struct {
	cmd  *exec.Cmd
	file *os.File
	conn syscall.RawConn
	done chan struct{}

	mu         sync.Mutex
	terminated bool
	waitErr    error
}

func (p *pipeStream) Pid() int { return p.cmd.Process.Pid }

func (p *pipeStream) reap() {
	err := p.cmd.Wait()
	p.mu.Lock()
	p.waitErr = err
	p.mu.Unlock()
	close(p.done)
}

func (p *pipeStream) ReadAvailable(buf []byte) (int, error) {
	p.mu.Lock()
	terminated := p.terminated
	p.mu.Unlock()
	if terminated {
		return 0, os.ErrClosed
	}
	if len(buf) == 0 {
		return 0, nil
	}

	var (
		n    int
		rerr error
	)
	err := p.conn.Read(func(fd uintptr) bool {
		n, rerr = unix.Read(int(fd), buf)
		return true
	})
	if err != nil {
		return 0, err
	}

	switch {
	case errors.Is(rerr, unix.EAGAIN), errors.Is(rerr, unix.EINTR):
		return 0, nil
	case rerr != nil:
		return 0, rerr
	case n == 0:
		return 0, io.EOF
	}
	return n, nil
}

func (p *pipeStream) Terminate() error {
	p.mu.Lock()
	if p.terminated {
		p.mu.Unlock()
		return nil
	}
	p.terminated = true
	p.mu.Unlock()

	var sigErr error
	select {
	case <-p.done:
		// already reaped, the pid may belong to someone else by now
	default:
		if err := unix.Kill(-p.cmd.Process.Pid, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
			sigErr = fmt.Errorf("signal process group %d: %w", p.cmd.Process.Pid, err)
		}
	}

	if err := p.file.Close(); err != nil && sigErr == nil {
		return fmt.Errorf("close pipe: %w", err)
	}
	return sigErr
}

// Done is closed once the process has been reaped.
func (p *pipeStream) Done() <-chan struct{} { return p.done }

// WaitErr returns the result of waiting on the process. Only meaningful after
// Done is closed.
func (p *pipeStream) WaitErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waitErr
}
