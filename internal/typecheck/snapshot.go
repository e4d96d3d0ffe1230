package typecheck

import (
	"typewatch/internal/observ"
	"typewatch/internal/task"
)

// Snapshot is the published result of one pass.
type Snapshot struct {
	// Files holds one record per requested file, in request order.
	Files []*task.Task
	// SourceErrors are diagnostics in files that were not requested.
	SourceErrors []*TypeCheckError
	Timings      observ.Report
}

func emptySnapshot() *Snapshot {
	return &Snapshot{}
}

// Failed reports whether any file failed or any source error exists.
func (s *Snapshot) Failed() bool {
	if s == nil {
		return false
	}
	if len(s.SourceErrors) > 0 {
		return true
	}
	for _, f := range s.Files {
		if f.State() == task.StateFail {
			return true
		}
	}
	return false
}

// Errors returns every error attached to a synthetic test, file by file.
func (s *Snapshot) Errors() []*TypeCheckError {
	if s == nil {
		return nil
	}
	var out []*TypeCheckError
	for _, f := range s.Files {
		f.Walk(func(t *task.Task) bool {
			if t.Result == nil {
				return true
			}
			for _, err := range t.Result.Errors {
				if tcErr, ok := err.(*TypeCheckError); ok {
					out = append(out, tcErr)
				}
			}
			return true
		})
	}
	return out
}
