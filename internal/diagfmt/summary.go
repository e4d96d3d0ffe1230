package diagfmt

import (
	"typewatch/internal/task"
	"typewatch/internal/typecheck"
)

// Summary counts the outcome of one snapshot.
type Summary struct {
	Files        int `json:"files"`
	FailedFiles  int `json:"failed_files"`
	PassedFiles  int `json:"passed_files"`
	SkippedFiles int `json:"skipped_files"`
	Tests        int `json:"tests"` // collected tests, synthetic ones excluded
	TypeErrors   int `json:"type_errors"`
	SourceErrors int `json:"source_errors"`
}

// Summarize counts files, tests and errors in snap.
func Summarize(snap *typecheck.Snapshot) Summary {
	var s Summary
	if snap == nil {
		return s
	}
	s.Files = len(snap.Files)
	s.SourceErrors = len(snap.SourceErrors)
	for _, f := range snap.Files {
		switch f.State() {
		case task.StateFail:
			s.FailedFiles++
		case task.StateSkip, task.StateTodo:
			s.SkippedFiles++
		default:
			s.PassedFiles++
		}
		f.Walk(func(t *task.Task) bool {
			if t.Type != task.TypeTest {
				return true
			}
			if t.Meta.Typecheck {
				if t.Result != nil {
					s.TypeErrors += len(t.Result.Errors)
				}
				return true
			}
			s.Tests++
			return true
		})
	}
	return s
}

// Failed reports whether the run should exit non-zero.
func (s Summary) Failed(ignoreSourceErrors bool) bool {
	if s.FailedFiles > 0 {
		return true
	}
	return !ignoreSourceErrors && s.SourceErrors > 0
}
