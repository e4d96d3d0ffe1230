package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

var ErrNotInstalled = errors.New("type checker is not installed")

// ExitError reports a checker that ran and exited non-zero. tsc does this
// whenever it reports errors, so callers usually treat it as a normal end.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("checker exited with status %d", e.Code)
	}
	return fmt.Sprintf("checker exited with status %d: %s", e.Code, e.Stderr)
}

// Process is a running checker.
type Process interface {
	// Output yields stdout chunks in arrival order; closed at EOF.
	Output() <-chan string
	// Wait blocks until the process exits. Call it after Output is drained.
	Wait() error
	// Kill terminates the process. Safe to call more than once.
	Kill() error
}

// Spawner starts checker processes.
type Spawner interface {
	Spawn(ctx context.Context, cmd Command) (Process, error)
}

// ExecSpawner runs commands with os/exec.
type ExecSpawner struct {
	// ChunkSize bounds a single stdout read; 0 means 4096.
	ChunkSize int
}

// Spawn implements Spawner.
func (s ExecSpawner) Spawn(ctx context.Context, c Command) (Process, error) {
	path, err := exec.LookPath(c.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotInstalled, c.Name, err)
	}
	// #nosec G204 -- the command comes from a checker profile or project config
	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = c.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	p := &execProcess{
		cmd:  cmd,
		out:  make(chan string, 64),
		stop: make(chan struct{}),
		read: make(chan struct{}),
	}
	cmd.Stderr = &p.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", c.Name, err)
	}

	size := s.ChunkSize
	if size <= 0 {
		size = 4096
	}
	go p.readLoop(stdout, size)
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	out    chan string
	stderr bytes.Buffer

	stop     chan struct{}
	stopOnce sync.Once
	read     chan struct{} // closed when stdout reached EOF
}

func (p *execProcess) readLoop(r io.Reader, size int) {
	defer close(p.read)
	defer close(p.out)
	buf := make([]byte, size)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			select {
			case p.out <- string(buf[:n]):
			case <-p.stop:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (p *execProcess) Output() <-chan string { return p.out }

func (p *execProcess) Wait() error {
	<-p.read
	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), Stderr: strings.TrimSpace(p.stderr.String())}
	}
	return err
}

func (p *execProcess) Kill() error {
	p.stopOnce.Do(func() { close(p.stop) })
	if p.cmd.Process == nil {
		return nil
	}
	err := p.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
