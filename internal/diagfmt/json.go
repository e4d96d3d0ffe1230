package diagfmt

import (
	"encoding/json"
	"io"

	"typewatch/internal/observ"
	"typewatch/internal/task"
	"typewatch/internal/typecheck"
)

// ErrorJSON представляет одну диагностику в JSON формате
type ErrorJSON struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    uint32 `json:"line,omitempty"`
	Column  uint32 `json:"column,omitempty"`
}

// TaskJSON mirrors a task tree node.
type TaskJSON struct {
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Mode      string      `json:"mode"`
	State     string      `json:"state"`
	Typecheck bool        `json:"typecheck,omitempty"`
	Errors    []ErrorJSON `json:"errors,omitempty"`
	Tasks     []TaskJSON  `json:"tasks,omitempty"`
}

// SnapshotJSON представляет корневую структуру JSON вывода
type SnapshotJSON struct {
	Files        []TaskJSON     `json:"files"`
	SourceErrors []ErrorJSON    `json:"source_errors"`
	Summary      Summary        `json:"summary"`
	Timings      *observ.Report `json:"timings,omitempty"`
}

// BuildSnapshotOutput формирует структуру JSON-вывода без сериализации.
func BuildSnapshotOutput(snap *typecheck.Snapshot, opts JSONOpts) SnapshotJSON {
	out := SnapshotJSON{
		Files:        []TaskJSON{},
		SourceErrors: []ErrorJSON{},
		Summary:      Summarize(snap),
	}
	if snap == nil {
		return out
	}
	for _, f := range snap.Files {
		out.Files = append(out.Files, makeTask(f, opts))
	}
	sourceErrors := snap.SourceErrors
	if opts.Max > 0 && opts.Max < len(sourceErrors) {
		sourceErrors = sourceErrors[:opts.Max]
	}
	for _, e := range sourceErrors {
		out.SourceErrors = append(out.SourceErrors, makeError(e, opts))
	}
	if opts.Timings {
		timings := snap.Timings
		out.Timings = &timings
	}
	return out
}

func makeTask(t *task.Task, opts JSONOpts) TaskJSON {
	name := t.Name
	if t.IsFile() {
		name = formatPath(name, opts.PathMode, opts.BaseDir)
	}
	tj := TaskJSON{
		Name:      name,
		Type:      t.Type.String(),
		Mode:      string(t.Mode),
		State:     string(t.State()),
		Typecheck: t.Meta.Typecheck,
	}
	if t.Result != nil {
		for _, err := range t.Result.Errors {
			if tcErr, ok := err.(*typecheck.TypeCheckError); ok {
				tj.Errors = append(tj.Errors, makeError(tcErr, opts))
			} else {
				tj.Errors = append(tj.Errors, ErrorJSON{Message: err.Error()})
			}
		}
	}
	for _, child := range t.Tasks {
		tj.Tasks = append(tj.Tasks, makeTask(child, opts))
	}
	return tj
}

func makeError(e *typecheck.TypeCheckError, opts JSONOpts) ErrorJSON {
	return ErrorJSON{
		Code:    e.Code,
		Message: e.Message,
		File:    formatPath(e.Location.File, opts.PathMode, opts.BaseDir),
		Line:    e.Location.Line,
		Column:  e.Location.Column,
	}
}

// JSON writes snap as indented JSON.
func JSON(w io.Writer, snap *typecheck.Snapshot, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildSnapshotOutput(snap, opts))
}
