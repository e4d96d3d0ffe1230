package typecheck

import (
	"context"
	"errors"
	"sync"

	"typewatch/internal/checker"
	"typewatch/internal/collect"
	"typewatch/internal/source"
	"typewatch/internal/task"
	"typewatch/internal/tsconfig"
)

type fakeProcess struct {
	out     chan string
	waitErr error

	mu     sync.Mutex
	closed bool
	killed bool
}

func newFakeProcess(buffer int) *fakeProcess {
	return &fakeProcess{out: make(chan string, buffer)}
}

// finished returns a process that already printed chunks and exited.
func finished(waitErr error, chunks ...string) *fakeProcess {
	p := newFakeProcess(len(chunks))
	for _, c := range chunks {
		p.out <- c
	}
	p.waitErr = waitErr
	p.close()
	return p
}

func (p *fakeProcess) send(chunk string) {
	p.out <- chunk
}

func (p *fakeProcess) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.out)
	}
}

func (p *fakeProcess) Output() <-chan string { return p.out }
func (p *fakeProcess) Wait() error           { return p.waitErr }

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	p.close()
	return nil
}

func (p *fakeProcess) wasKilled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

type fakeSpawner struct {
	proc *fakeProcess
	err  error
	cmd  checker.Command
}

func (s *fakeSpawner) Spawn(_ context.Context, cmd checker.Command) (checker.Process, error) {
	s.cmd = cmd
	if s.err != nil {
		return nil, s.err
	}
	return s.proc, nil
}

type fakeLocator struct {
	temp  *tsconfig.Temp
	err   error
	files []string
}

func (l *fakeLocator) Locate(_ string, opts tsconfig.Options) (*tsconfig.Temp, error) {
	l.files = opts.Files
	if l.err != nil {
		return nil, l.err
	}
	return l.temp, nil
}

var errBoom = errors.New("boom")

// sampleText has 6 code points per line, so (L, C) sits at offset (L-1)*6 + C-1.
const sampleText = "line1\nline2\nline3\nline4\nline5\n"

// sampleCollected builds:
//
//	file
//	└── suite "outer" [0, 23]   (lines 1-4)
//	    └── test "inner" [6, 11] (line 2)
//	└── suite "skipped" [24, 29] (line 5), mode skip
func sampleCollected(path string) *collect.Collected {
	file := task.NewFile(path)
	outer := file.Add(&task.Task{Type: task.TypeSuite, Name: "outer", Mode: task.ModeRun})
	inner := outer.Add(&task.Task{Type: task.TypeTest, Name: "inner", Mode: task.ModeRun})
	skipped := file.Add(&task.Task{Type: task.TypeSuite, Name: "skipped", Mode: task.ModeSkip})
	return &collect.Collected{
		File: file,
		Definitions: []collect.Definition{
			{Span: source.Span{Start: 0, End: 23}, Task: outer},
			{Span: source.Span{Start: 6, End: 11}, Task: inner},
			{Span: source.Span{Start: 24, End: 29}, Task: skipped},
		},
		Text: sampleText,
	}
}

type countingCollector struct {
	mu    sync.Mutex
	calls map[string]int
	fn    func(path string) (*collect.Collected, error)
}

func (c *countingCollector) Collect(_ context.Context, _, path string) (*collect.Collected, error) {
	c.mu.Lock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[path]++
	c.mu.Unlock()
	if c.fn == nil {
		return sampleCollected(path), nil
	}
	return c.fn(path)
}

func (c *countingCollector) count(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[path]
}

func findTask(root *task.Task, name string) *task.Task {
	var found *task.Task
	root.Walk(func(t *task.Task) bool {
		if found == nil && t.Name == name {
			found = t
		}
		return found == nil
	})
	return found
}
