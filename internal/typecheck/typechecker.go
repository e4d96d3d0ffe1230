package typecheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"typewatch/internal/checker"
	"typewatch/internal/collect"
	"typewatch/internal/diag"
	"typewatch/internal/diagparse"
	"typewatch/internal/observ"
	"typewatch/internal/task"
	"typewatch/internal/tsconfig"
)

// ConfigLocator produces the temporary checker configuration.
type ConfigLocator interface {
	Locate(root string, opts tsconfig.Options) (*tsconfig.Temp, error)
}

// WatchPolicy recognises pass boundaries in accumulated watch output.
// checker.Markers implements it.
type WatchPolicy interface {
	RerunStarted(buf string) bool
	PassComplete(buf string) bool
}

// Options configures a Typechecker.
type Options struct {
	Root  string
	Files []string // requested test files; relative paths are resolved against Root

	Profile  checker.Profile
	Watch    bool
	AllowJS  bool
	TSConfig tsconfig.Options // Files is filled in from Files

	Spawner   checker.Spawner
	Locator   ConfigLocator
	Collector collect.Collector
	Policy    WatchPolicy       // nil means Profile.Markers
	Parser    *diagparse.Parser // nil means diagparse defaults

	// Jobs limits concurrent collection; 0 means one per file.
	Jobs   int
	Logger *slog.Logger
}

// State is the session lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateDone
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Typechecker runs one checker session and publishes a Snapshot per pass.
type Typechecker struct {
	opts   Options
	files  []string
	log    *slog.Logger
	policy WatchPolicy
	parser *diagparse.Parser

	state       atomic.Int32
	tearingDown atomic.Bool

	mu             sync.RWMutex
	result         *Snapshot
	entries        map[string]*fileEntry // per-file definitions, nil after a rerun
	temp           *tsconfig.Temp
	onParseStart   func(ctx context.Context) error
	onParseEnd     func(ctx context.Context, snap *Snapshot) error
	onWatcherRerun func(ctx context.Context) error

	// accessed only from the Start goroutine
	buf            strings.Builder
	rerunTriggered bool
}

// New creates an idle Typechecker.
func New(opts Options) *Typechecker {
	tc := &Typechecker{
		opts:   opts,
		log:    opts.Logger,
		policy: opts.Policy,
		parser: opts.Parser,
		result: emptySnapshot(),
	}
	if tc.log == nil {
		tc.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if tc.policy == nil {
		tc.policy = opts.Profile.Markers
	}
	if tc.parser == nil {
		tc.parser = diagparse.New()
	}
	root := opts.Root
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	tc.opts.Root = root
	tc.files = make([]string, 0, len(opts.Files))
	for _, f := range opts.Files {
		if !filepath.IsAbs(f) {
			f = filepath.Join(root, f)
		}
		tc.files = append(tc.files, filepath.Clean(f))
	}
	return tc
}

// OnParseStart registers the callback invoked before each pass is parsed.
func (tc *Typechecker) OnParseStart(fn func(ctx context.Context) error) {
	tc.mu.Lock()
	tc.onParseStart = fn
	tc.mu.Unlock()
}

// OnParseEnd registers the callback invoked after a pass is published.
func (tc *Typechecker) OnParseEnd(fn func(ctx context.Context, snap *Snapshot) error) {
	tc.mu.Lock()
	tc.onParseEnd = fn
	tc.mu.Unlock()
}

// OnWatcherRerun registers the callback invoked when the checker starts a new pass in watch mode.
func (tc *Typechecker) OnWatcherRerun(fn func(ctx context.Context) error) {
	tc.mu.Lock()
	tc.onWatcherRerun = fn
	tc.mu.Unlock()
}

// State returns the current lifecycle state.
func (tc *Typechecker) State() State {
	return State(tc.state.Load())
}

// Files returns the requested files as absolute paths.
func (tc *Typechecker) Files() []string {
	return append([]string(nil), tc.files...)
}

// Result returns the last published snapshot. It is never nil and must not be modified.
func (tc *Typechecker) Result() *Snapshot {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.result
}

// TestFiles returns fresh copies of the collected file trees without
// results, in request order. Nil before the first collection or after a
// rerun; files whose collection failed are left out.
func (tc *Typechecker) TestFiles() []*task.Task {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	if tc.entries == nil {
		return nil
	}
	out := make([]*task.Task, 0, len(tc.files))
	for _, path := range tc.files {
		entry := tc.entries[path]
		if entry == nil {
			continue
		}
		clone, _ := task.Clone(entry.file)
		task.StripResults(clone)
		out = append(out, clone)
	}
	return out
}

// Clean removes the temporary checker config. Safe to call when none exists.
func (tc *Typechecker) Clean() error {
	tc.mu.Lock()
	temp := tc.temp
	tc.temp = nil
	tc.mu.Unlock()
	return temp.Remove()
}

// Start runs the session. In one-shot mode it returns after the single pass
// is published. In watch mode it returns when ctx is cancelled (ctx.Err()) or
// the checker dies. Fatal failures publish nothing and remove the temp config.
func (tc *Typechecker) Start(ctx context.Context) error {
	if !tc.state.CompareAndSwap(int32(StateIdle), int32(StateStarting)) {
		return ErrAlreadyStarted
	}
	if tc.opts.Spawner == nil || tc.opts.Locator == nil || tc.opts.Collector == nil {
		tc.state.Store(int32(StateFailed))
		return &SessionError{Op: "config", Err: errors.New("spawner, locator and collector are required")}
	}

	cfgOpts := tc.opts.TSConfig
	cfgOpts.Files = tc.files
	temp, err := tc.opts.Locator.Locate(tc.opts.Root, cfgOpts)
	if err != nil {
		return tc.fail(&SessionError{Op: "config", Err: err})
	}
	tc.mu.Lock()
	tc.temp = temp
	tc.mu.Unlock()

	cmd := tc.opts.Profile.CommandFor(temp.Path, tc.opts.Root, tc.opts.Watch, tc.opts.AllowJS)
	tc.log.Debug("spawning checker", "cmd", cmd.Name, "args", cmd.Args, "watch", tc.opts.Watch)
	proc, err := tc.opts.Spawner.Spawn(ctx, cmd)
	if err != nil {
		return tc.fail(&SessionError{Op: "spawn", Err: err})
	}
	tc.state.Store(int32(StateRunning))

	if tc.opts.Watch {
		return tc.runWatch(ctx, proc)
	}
	return tc.runOnce(ctx, proc)
}

func (tc *Typechecker) fail(err error) error {
	tc.state.Store(int32(StateFailed))
	if cerr := tc.Clean(); cerr != nil {
		tc.log.Warn("remove temp config", "err", cerr)
	}
	tc.log.Error("typecheck session failed", "err", err)
	return err
}

// teardown kills the checker and drops the temp config. After it begins no
// snapshot is published.
func (tc *Typechecker) teardown(proc checker.Process) {
	if !tc.tearingDown.CompareAndSwap(false, true) {
		return
	}
	if err := proc.Kill(); err != nil {
		tc.log.Warn("kill checker", "err", err)
	}
	for range proc.Output() {
		// drain so the reader goroutine can exit
	}
	_ = proc.Wait()
	if err := tc.Clean(); err != nil {
		tc.log.Warn("remove temp config", "err", err)
	}
	tc.state.Store(int32(StateStopped))
}

func (tc *Typechecker) runOnce(ctx context.Context, proc checker.Process) error {
	out := proc.Output()
	for {
		select {
		case <-ctx.Done():
			tc.teardown(proc)
			return ctx.Err()
		case chunk, ok := <-out:
			if !ok {
				return tc.finishOnce(ctx, proc)
			}
			tc.buf.WriteString(chunk)
		}
	}
}

func (tc *Typechecker) finishOnce(ctx context.Context, proc checker.Process) error {
	output := tc.buf.String()
	tc.buf.Reset()
	if err := proc.Wait(); err != nil {
		var exitErr *checker.ExitError
		if !errors.As(err, &exitErr) {
			return tc.fail(&SessionError{Op: "wait", Err: err})
		}
		// tsc exits non-zero whenever it reports errors; silence means it never ran
		if strings.TrimSpace(output) == "" {
			return tc.fail(&SessionError{Op: "wait", Err: fmt.Errorf("%w: %w", ErrCheckerFailed, exitErr)})
		}
	}
	if err := tc.pass(ctx, output); err != nil {
		return tc.fail(err)
	}
	tc.state.Store(int32(StateDone))
	return nil
}

func (tc *Typechecker) runWatch(ctx context.Context, proc checker.Process) error {
	out := proc.Output()
	for {
		select {
		case <-ctx.Done():
			tc.teardown(proc)
			return ctx.Err()
		case chunk, ok := <-out:
			if !ok {
				if ctx.Err() != nil {
					tc.teardown(proc)
					return ctx.Err()
				}
				werr := proc.Wait()
				if werr == nil {
					werr = ErrProcessExited
				} else {
					werr = fmt.Errorf("%w: %w", ErrProcessExited, werr)
				}
				return tc.fail(&SessionError{Op: "watch", Err: werr})
			}
			if err := tc.onChunk(ctx, chunk); err != nil {
				tc.teardown(proc)
				if ctx.Err() != nil {
					return ctx.Err()
				}
				tc.state.Store(int32(StateFailed))
				tc.log.Error("typecheck session failed", "err", err)
				return err
			}
		}
	}
}

// onChunk feeds one watch-mode chunk through the pass state machine.
func (tc *Typechecker) onChunk(ctx context.Context, chunk string) error {
	tc.buf.WriteString(chunk)
	buf := tc.buf.String()

	if !tc.rerunTriggered && tc.policy.RerunStarted(buf) {
		tc.log.Debug("checker rerun detected")
		tc.mu.Lock()
		cb := tc.onWatcherRerun
		tc.mu.Unlock()
		if cb != nil {
			if err := cb(ctx); err != nil {
				return fmt.Errorf("watcher rerun callback: %w", err)
			}
		}
		tc.mu.Lock()
		tc.result = emptySnapshot()
		tc.entries = nil
		tc.mu.Unlock()
		tc.rerunTriggered = true
	}

	if !tc.policy.PassComplete(buf) {
		return nil
	}
	tc.rerunTriggered = false
	err := tc.pass(ctx, buf)
	tc.buf.Reset()
	return err
}

// pass runs parse → collect → build over one completed output and
// publishes the snapshot.
func (tc *Typechecker) pass(ctx context.Context, output string) error {
	tc.mu.RLock()
	onStart, onEnd := tc.onParseStart, tc.onParseEnd
	tc.mu.RUnlock()

	if onStart != nil {
		if err := onStart(ctx); err != nil {
			return fmt.Errorf("parse start callback: %w", err)
		}
	}

	timer := observ.NewTimer()
	idx := timer.Begin("parse")
	diags := tc.parser.Parse(output)
	timer.End(idx, fmt.Sprintf("%d diagnostics", diags.Len()))

	idx = timer.Begin("collect")
	entries, err := tc.ensureEntries(ctx)
	timer.End(idx, fmt.Sprintf("%d files", len(tc.files)))
	if err != nil {
		return &SessionError{Op: "collect", Err: err}
	}

	idx = timer.Begin("build")
	snap := buildSnapshot(tc.opts.Root, tc.files, entries, diags)
	timer.End(idx, "")
	snap.Timings = timer.Report()

	if tc.tearingDown.Load() {
		return nil
	}
	tc.mu.Lock()
	tc.result = snap
	tc.mu.Unlock()
	tc.logPass(snap, diags)

	if onEnd != nil {
		if err := onEnd(ctx, snap); err != nil {
			return fmt.Errorf("parse end callback: %w", err)
		}
	}
	return nil
}

func (tc *Typechecker) logPass(snap *Snapshot, diags *diag.FileMap) {
	// collect dominates after a rerun, stays ~0 while the cache is warm
	collectPhase, _ := snap.Timings.Phase("collect")
	tc.log.Info("typecheck pass complete",
		"files", len(snap.Files),
		"diagnostics", diags.Len(),
		"source_errors", len(snap.SourceErrors),
		"failed", snap.Failed(),
		"ms", snap.Timings.TotalMS,
		"collect_ms", collectPhase.DurationMS,
	)
}

// ensureEntries returns definitions for every requested file, collecting
// the ones missing from the cache concurrently. A file enters the cache only
// when its collection succeeded. In watch mode a failed collection is not
// fatal: the file is served file-only for this pass and retried on the next.
func (tc *Typechecker) ensureEntries(ctx context.Context) (map[string]*fileEntry, error) {
	tc.mu.RLock()
	entries := make(map[string]*fileEntry, len(tc.files))
	var missing []string
	for _, path := range tc.files {
		if e := tc.entries[path]; e != nil {
			entries[path] = e
		} else {
			missing = append(missing, path)
		}
	}
	tc.mu.RUnlock()
	if len(missing) == 0 {
		return entries, nil
	}

	collected := make([]*fileEntry, len(missing))
	failed := make([]error, len(missing))
	g, gctx := errgroup.WithContext(ctx)
	if tc.opts.Jobs > 0 {
		g.SetLimit(tc.opts.Jobs)
	}
	for i, path := range missing {
		g.Go(func() error {
			c, err := tc.opts.Collector.Collect(gctx, tc.opts.Root, path)
			if err != nil {
				err = fmt.Errorf("collect %s: %w", path, err)
				if !tc.opts.Watch || ctx.Err() != nil {
					return err
				}
				failed[i] = err
				return nil
			}
			collected[i] = newFileEntry(path, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.entries == nil {
		tc.entries = make(map[string]*fileEntry, len(tc.files))
	}
	for i, path := range missing {
		if failed[i] != nil {
			// полузаписанный файл и т.п.: диагностики уйдут на уровень файла
			tc.log.Warn("definition collection failed, reporting file-level", "path", path, "err", failed[i])
			entries[path] = newFileEntry(path, nil)
			continue
		}
		entries[path] = collected[i]
		tc.entries[path] = collected[i]
	}
	return entries, nil
}
