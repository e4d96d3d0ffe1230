// Package task holds the minimal run-time shape of collected test files,
// suites and tests that the typecheck core reads and mutates.
//
// A Task tree is strictly single-parent: every node keeps a back-reference to
// its enclosing suite (Suite) and to the file it belongs to (File). The file
// node itself has Suite == nil and File pointing at itself.
package task

import "fmt"

// Type distinguishes files, suites and tests.
type Type uint8

const (
	TypeFile Type = iota + 1
	TypeSuite
	TypeTest
)

func (t Type) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeSuite:
		return "suite"
	case TypeTest:
		return "test"
	}
	return "unknown"
}

// Mode is the declared run mode of a task.
type Mode string

const (
	ModeRun  Mode = "run"
	ModeOnly Mode = "only"
	ModeSkip Mode = "skip"
	ModeTodo Mode = "todo"
)

// Running reports whether tasks in this mode are actually executed.
func (m Mode) Running() bool {
	return m == ModeRun || m == ModeOnly
}

// ParseMode converts a collector-provided string into a Mode.
// Empty input means ModeRun.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "run":
		return ModeRun, nil
	case "only":
		return ModeOnly, nil
	case "skip":
		return ModeSkip, nil
	case "todo":
		return ModeTodo, nil
	default:
		return ModeRun, fmt.Errorf("invalid task mode: %q (expected: run|only|skip|todo)", s)
	}
}

// State is the outcome of a task.
type State string

const (
	StatePass State = "pass"
	StateFail State = "fail"
	StateSkip State = "skip"
	StateTodo State = "todo"
)

// StateForMode returns the state a task in a non-running mode settles in.
func StateForMode(m Mode) State {
	switch m {
	case ModeSkip:
		return StateSkip
	case ModeTodo:
		return StateTodo
	}
	return StatePass
}

// Result is the outcome attached to a task after a pass.
type Result struct {
	State  State
	Errors []error
}

// Meta carries per-task flags.
type Meta struct {
	// Typecheck marks tasks synthesized from a type diagnostic.
	Typecheck bool
}

// Task is a file, suite or test node.
type Task struct {
	ID     string
	Type   Type
	Name   string
	Mode   Mode
	File   *Task // owning file; self for the file node
	Suite  *Task // enclosing suite or file; nil for the file node
	Tasks  []*Task
	Result *Result
	Meta   Meta
}

// NewFile creates an empty file node for path.
func NewFile(path string) *Task {
	f := &Task{
		ID:   path,
		Type: TypeFile,
		Name: path,
		Mode: ModeRun,
	}
	f.File = f
	return f
}

// Add appends child to t, wiring its back-references.
func (t *Task) Add(child *Task) *Task {
	child.Suite = t
	child.File = t.File
	if child.ID == "" {
		child.ID = fmt.Sprintf("%s_%d", t.ID, len(t.Tasks))
	}
	t.Tasks = append(t.Tasks, child)
	return child
}

// IsFile reports whether t is a file node.
func (t *Task) IsFile() bool {
	return t != nil && t.Type == TypeFile
}

// State returns the result state, or "" when no result is set.
func (t *Task) State() State {
	if t == nil || t.Result == nil {
		return ""
	}
	return t.Result.State
}

// Walk visits t and its descendants depth-first, parents before children.
// Returning false from fn skips the subtree.
func (t *Task) Walk(fn func(*Task) bool) {
	if t == nil || !fn(t) {
		return
	}
	for _, child := range t.Tasks {
		child.Walk(fn)
	}
}

// Ancestors returns the chain of enclosing suites from the nearest up to the
// file node.
func (t *Task) Ancestors() []*Task {
	var out []*Task
	for cur := t.Suite; cur != nil; cur = cur.Suite {
		out = append(out, cur)
	}
	return out
}
