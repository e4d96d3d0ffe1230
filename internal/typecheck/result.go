package typecheck

import (
	"fmt"
	"path/filepath"

	"typewatch/internal/collect"
	"typewatch/internal/diag"
	"typewatch/internal/posmap"
	"typewatch/internal/source"
	"typewatch/internal/task"
)

// fileEntry is the cached collection result of one requested file.
// It is never mutated after install; builders clone file before use.
type fileEntry struct {
	file      *task.Task
	defs      []collect.Definition // sorted by sortDefinitions
	sourceMap *posmap.Map
	index     source.IndexMap
}

func newFileEntry(path string, c *collect.Collected) *fileEntry {
	if c == nil || c.File == nil {
		return &fileEntry{file: task.NewFile(path)}
	}
	return &fileEntry{
		file:      c.File,
		defs:      sortDefinitions(c.Definitions),
		sourceMap: c.SourceMap,
		index:     source.BuildIndexMap(c.Text),
	}
}

// syntheticName labels the n-th diagnostic attached to one owner.
func syntheticName(n int, code string) string {
	if code == "" {
		return fmt.Sprintf("type error #%d", n)
	}
	return fmt.Sprintf("type error #%d (%s)", n, code)
}

// builder assembles one Snapshot. It only ever touches clones.
type builder struct {
	root     string
	files    []string
	entries  map[string]*fileEntry
	ordinals map[*task.Task]int
}

func buildSnapshot(root string, files []string, entries map[string]*fileEntry, diags *diag.FileMap) *Snapshot {
	b := &builder{
		root:     root,
		files:    files,
		entries:  entries,
		ordinals: make(map[*task.Task]int),
	}
	return b.build(diags)
}

func (b *builder) build(diags *diag.FileMap) *Snapshot {
	requested := make(map[string]bool, len(b.files))
	for _, f := range b.files {
		requested[f] = true
	}

	// один файл может быть записан по-разному (a.ts, ./a.ts): резолвим каждую
	// диагностику отдельно, чтобы сохранить порядок вывода
	resolved := make(map[string]string)
	perFile := make(map[string][]diag.Diagnostic)
	snap := &Snapshot{Files: make([]*task.Task, 0, len(b.files))}
	for _, d := range diags.All() {
		abs, ok := resolved[d.Path]
		if !ok {
			abs = source.Resolve(b.root, d.Path)
			resolved[d.Path] = abs
		}
		if abs != "" && requested[abs] {
			perFile[abs] = append(perFile[abs], d)
			continue
		}
		snap.SourceErrors = append(snap.SourceErrors, newTypeCheckError(d, abs, d.Line, d.Column))
	}

	for _, path := range b.files {
		snap.Files = append(snap.Files, b.buildFile(path, perFile[path]))
	}
	return snap
}

func (b *builder) buildFile(path string, diags []diag.Diagnostic) *task.Task {
	entry := b.entries[path]
	if entry == nil {
		entry = newFileEntry(path, nil)
	}
	file, mapping := task.Clone(entry.file)

	for _, d := range diags {
		owner := file
		at := source.LineCol{Line: d.Line, Col: d.Column}
		if at.Valid() {
			pos := posmap.Translate(entry.sourceMap, posmap.Position{Line: at.Line, Column: at.Col})
			at = source.LineCol{Line: pos.Line, Col: pos.Column}
			if found := locate(at, entry.index, entry.defs); found != nil {
				if clone := mapping[found]; clone != nil {
					owner = clone
				}
			}
		}
		b.attach(owner, newTypeCheckError(d, path, at.Line, at.Col))
	}

	settle(file)
	return file
}

// attach appends a synthetic test for err to owner.
func (b *builder) attach(owner *task.Task, err *TypeCheckError) {
	b.ordinals[owner]++
	t := &task.Task{
		Type: task.TypeTest,
		Name: syntheticName(b.ordinals[owner], err.Code),
		Mode: owner.Mode,
		Meta: task.Meta{Typecheck: true},
	}
	if !owner.Mode.Running() {
		t.Result = &task.Result{State: task.StateForMode(owner.Mode)}
		owner.Add(t)
		return
	}
	t.Result = &task.Result{State: task.StateFail, Errors: []error{err}}
	owner.Add(t)
	markFailed(owner)
}

// markFailed walks from t up to its file marking every running task as
// failed. Idempotent.
func markFailed(t *task.Task) {
	for _, cur := range append([]*task.Task{t}, t.Ancestors()...) {
		if !cur.Mode.Running() {
			if cur.Result == nil {
				cur.Result = &task.Result{State: task.StateForMode(cur.Mode)}
			}
			continue
		}
		if cur.Result == nil {
			cur.Result = &task.Result{}
		}
		cur.Result.State = task.StateFail
	}
}

// settle gives every task without a result the state its mode implies.
func settle(file *task.Task) {
	file.Walk(func(t *task.Task) bool {
		if t.Result == nil {
			t.Result = &task.Result{State: task.StateForMode(t.Mode)}
		}
		return true
	})
}

func newTypeCheckError(d diag.Diagnostic, path string, line, col uint32) *TypeCheckError {
	if path != "" {
		path = filepath.Clean(path)
	}
	return &TypeCheckError{
		Message: d.Message,
		Code:    d.Code,
		Location: Location{
			File:   path,
			Line:   line,
			Column: col,
		},
	}
}
