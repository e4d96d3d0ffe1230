package typecheck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"typewatch/internal/checker"
	"typewatch/internal/collect"
	"typewatch/internal/task"
	"typewatch/internal/tsconfig"
)

func tscProfile(t *testing.T) checker.Profile {
	t.Helper()
	p, err := checker.Lookup("tsc")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// tempConfig writes a throwaway file standing in for the generated config.
func tempConfig(t *testing.T) *tsconfig.Temp {
	t.Helper()
	path := filepath.Join(t.TempDir(), tsconfig.TempName)
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	return &tsconfig.Temp{Path: path}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestOneShotSession(t *testing.T) {
	temp := tempConfig(t)
	proc := finished(&checker.ExitError{Code: 2},
		"a.test.ts(2,3): error TS2322: Type 'string' is not assignable.\n",
		"b.ts(1,1): error TS7006: implicit any.\n",
	)
	spawner := &fakeSpawner{proc: proc}
	locator := &fakeLocator{temp: temp}
	collector := &countingCollector{}

	tc := New(Options{
		Root:      root,
		Files:     []string{"a.test.ts"},
		Profile:   tscProfile(t),
		Spawner:   spawner,
		Locator:   locator,
		Collector: collector,
	})
	var starts, ends int
	tc.OnParseStart(func(context.Context) error { starts++; return nil })
	tc.OnParseEnd(func(_ context.Context, snap *Snapshot) error {
		ends++
		if snap != tc.Result() {
			t.Error("parse end called before publish")
		}
		return nil
	})

	if err := tc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if tc.State() != StateDone {
		t.Fatalf("state = %v", tc.State())
	}
	if starts != 1 || ends != 1 {
		t.Fatalf("callbacks: start=%d end=%d", starts, ends)
	}
	if got := locator.files; len(got) != 1 || got[0] != "/proj/a.test.ts" {
		t.Fatalf("locator files = %v", got)
	}
	if !strings.Contains(strings.Join(spawner.cmd.Args, " "), temp.Path) {
		t.Fatalf("command does not use temp config: %v", spawner.cmd.Args)
	}

	snap := tc.Result()
	if len(snap.Files) != 1 || snap.Files[0].State() != task.StateFail {
		t.Fatalf("files = %v", names(snap.Files))
	}
	if len(snap.SourceErrors) != 1 || snap.SourceErrors[0].Location.File != "/proj/b.ts" {
		t.Fatalf("source errors = %+v", snap.SourceErrors)
	}
	if len(snap.Timings.Phases) != 3 {
		t.Fatalf("timings = %+v", snap.Timings)
	}

	files := tc.TestFiles()
	if len(files) != 1 {
		t.Fatalf("TestFiles = %d", len(files))
	}
	files[0].Walk(func(n *task.Task) bool {
		if n.Result != nil || n.Meta.Typecheck {
			t.Fatalf("TestFiles leaked results at %q", n.Name)
		}
		return true
	})

	if err := tc.Clean(); err != nil || exists(temp.Path) {
		t.Fatalf("Clean: %v, exists=%v", err, exists(temp.Path))
	}
	if err := tc.Clean(); err != nil {
		t.Fatalf("second Clean: %v", err)
	}
	if err := tc.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("restart err = %v", err)
	}
}

func TestSessionFailures(t *testing.T) {
	tests := []struct {
		name    string
		spawner *fakeSpawner
		locErr  error
		coll    collect.Collector
		op      string
		wantErr error
	}{
		{
			name:    "config",
			spawner: &fakeSpawner{proc: finished(nil)},
			locErr:  tsconfig.ErrNotFound,
			op:      "config",
			wantErr: tsconfig.ErrNotFound,
		},
		{
			name:    "not installed",
			spawner: &fakeSpawner{err: checker.ErrNotInstalled},
			op:      "spawn",
			wantErr: checker.ErrNotInstalled,
		},
		{
			name:    "silent crash",
			spawner: &fakeSpawner{proc: finished(&checker.ExitError{Code: 1, Stderr: "boom"})},
			op:      "wait",
			wantErr: ErrCheckerFailed,
		},
		{
			name:    "collector",
			spawner: &fakeSpawner{proc: finished(nil, "a.test.ts(1,1): error TS1: x\n")},
			coll: collect.CollectorFunc(func(context.Context, string, string) (*collect.Collected, error) {
				return nil, errBoom
			}),
			op:      "collect",
			wantErr: errBoom,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			temp := tempConfig(t)
			coll := tt.coll
			if coll == nil {
				coll = &countingCollector{}
			}
			tc := New(Options{
				Root:      root,
				Files:     []string{"a.test.ts"},
				Profile:   tscProfile(t),
				Spawner:   tt.spawner,
				Locator:   &fakeLocator{temp: temp, err: tt.locErr},
				Collector: coll,
			})
			err := tc.Start(context.Background())
			var serr *SessionError
			if !errors.As(err, &serr) || serr.Op != tt.op || !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want op %q wrapping %v", err, tt.op, tt.wantErr)
			}
			if tc.State() != StateFailed {
				t.Fatalf("state = %v", tc.State())
			}
			if len(tc.Result().Files) != 0 {
				t.Fatal("failed session published a snapshot")
			}
			if tt.locErr == nil && exists(temp.Path) {
				t.Fatal("temp config left behind")
			}
		})
	}
}

func TestWatchSession(t *testing.T) {
	temp := tempConfig(t)
	proc := newFakeProcess(4)
	collector := &countingCollector{}
	tc := New(Options{
		Root:      root,
		Files:     []string{"/proj/a.test.ts"},
		Profile:   tscProfile(t),
		Watch:     true,
		Spawner:   &fakeSpawner{proc: proc},
		Locator:   &fakeLocator{temp: temp},
		Collector: collector,
		Jobs:      2,
	})

	var reruns atomic.Int32
	rerunCh := make(chan struct{}, 4)
	endCh := make(chan *Snapshot, 4)
	tc.OnWatcherRerun(func(context.Context) error {
		reruns.Add(1)
		rerunCh <- struct{}{}
		return nil
	})
	tc.OnParseEnd(func(_ context.Context, snap *Snapshot) error {
		endCh <- snap
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- tc.Start(ctx) }()

	proc.send("[12:00:00 AM] File change detected. Starting incremental compilation...\n")
	wait(t, rerunCh)
	proc.send("[12:00:01 AM] Found 2 errors. Watching for file changes.\n" +
		"a.test.ts(2,3): error TS2322: one\n" +
		"a.test.ts(3,1): error TS2345: two\n")
	snap := wait(t, endCh)

	if got := len(snap.Errors()); got != 2 {
		t.Fatalf("errors = %d, want 2", got)
	}
	if reruns.Load() != 1 {
		t.Fatalf("reruns = %d, want 1", reruns.Load())
	}
	if collector.count("/proj/a.test.ts") != 1 {
		t.Fatalf("collections = %d", collector.count("/proj/a.test.ts"))
	}

	// the flag and buffer were reset, so the next rerun marker fires again
	proc.send("[12:00:05 AM] File change detected. Starting incremental compilation...\n")
	wait(t, rerunCh)
	proc.send("[12:00:06 AM] Found 0 errors. Watching for file changes.\n")
	snap = wait(t, endCh)
	if reruns.Load() != 2 {
		t.Fatalf("reruns = %d, want 2", reruns.Load())
	}
	if snap.Failed() || snap.Files[0].State() != task.StatePass {
		t.Fatalf("clean pass reported failure: %q", snap.Files[0].State())
	}
	if collector.count("/proj/a.test.ts") != 2 {
		t.Fatalf("cache not invalidated on rerun: %d collections", collector.count("/proj/a.test.ts"))
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Start = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	if !proc.wasKilled() || tc.State() != StateStopped || exists(temp.Path) {
		t.Fatalf("teardown: killed=%v state=%v temp=%v", proc.wasKilled(), tc.State(), exists(temp.Path))
	}
}

func TestWatchCollectFailureFallsBackToFile(t *testing.T) {
	proc := newFakeProcess(4)
	var calls atomic.Int32
	collector := &countingCollector{fn: func(path string) (*collect.Collected, error) {
		if calls.Add(1) == 1 {
			return nil, errBoom
		}
		return sampleCollected(path), nil
	}}
	tc := New(Options{
		Root:      root,
		Files:     []string{"a.test.ts"},
		Profile:   tscProfile(t),
		Watch:     true,
		Spawner:   &fakeSpawner{proc: proc},
		Locator:   &fakeLocator{temp: tempConfig(t)},
		Collector: collector,
	})
	endCh := make(chan *Snapshot, 4)
	tc.OnParseEnd(func(_ context.Context, snap *Snapshot) error {
		endCh <- snap
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- tc.Start(ctx) }()

	const pass = "[12:00:01 AM] Found 1 error. Watching for file changes.\n" +
		"a.test.ts(2,3): error TS2322: one\n"

	proc.send(pass)
	snap := wait(t, endCh)
	file := snap.Files[0]
	if len(file.Tasks) != 1 || file.Tasks[0].Name != "type error #1 (TS2322)" {
		t.Fatalf("file-level fallback: tasks = %v", names(file.Tasks))
	}
	if len(tc.TestFiles()) != 0 {
		t.Fatal("failed collection was cached")
	}

	// the next pass retries the file and attaches to the definition again
	proc.send(pass)
	snap = wait(t, endCh)
	if collector.count("/proj/a.test.ts") != 2 {
		t.Fatalf("collections = %d, want 2", collector.count("/proj/a.test.ts"))
	}
	if inner := findTask(snap.Files[0], "inner"); inner == nil || len(inner.Tasks) != 1 {
		t.Fatalf("diagnostic not attached to inner after retry: %v", names(snap.Files[0].Tasks))
	}

	cancel()
	if err := wait(t, done); !errors.Is(err, context.Canceled) {
		t.Fatalf("Start = %v, want context.Canceled", err)
	}
}

func TestWatchRerunClearsSnapshot(t *testing.T) {
	tc := New(Options{Root: root, Files: []string{"a.test.ts"}, Policy: tscProfile(t).Markers})
	tc.result = &Snapshot{Files: []*task.Task{task.NewFile("/proj/a.test.ts")}}
	tc.entries = map[string]*fileEntry{}

	if err := tc.onChunk(context.Background(), "File change detected\n"); err != nil {
		t.Fatal(err)
	}
	if len(tc.Result().Files) != 0 || tc.entries != nil || !tc.rerunTriggered {
		t.Fatalf("rerun did not reset state: files=%d entries=%v flag=%v",
			len(tc.Result().Files), tc.entries, tc.rerunTriggered)
	}
	// a second chunk of the same pass does not re-fire
	var fired int
	tc.OnWatcherRerun(func(context.Context) error { fired++; return nil })
	if err := tc.onChunk(context.Background(), "still compiling\n"); err != nil {
		t.Fatal(err)
	}
	if fired != 0 {
		t.Fatal("rerun fired twice within one pass")
	}
}

func TestWatchProcessDeath(t *testing.T) {
	proc := newFakeProcess(1)
	proc.waitErr = errBoom
	tc := New(Options{
		Root:      root,
		Files:     []string{"a.test.ts"},
		Profile:   tscProfile(t),
		Watch:     true,
		Spawner:   &fakeSpawner{proc: proc},
		Locator:   &fakeLocator{temp: tempConfig(t)},
		Collector: &countingCollector{},
	})
	proc.close()
	err := tc.Start(context.Background())
	if !errors.Is(err, ErrProcessExited) || !errors.Is(err, errBoom) {
		t.Fatalf("err = %v", err)
	}
}

func wait[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
	var zero T
	return zero
}
