package typecheck

import (
	"sort"

	"typewatch/internal/collect"
	"typewatch/internal/source"
	"typewatch/internal/task"
)

// sortDefinitions orders a copy of defs by descending start offset, so the
// most deeply nested span containing a point comes first. Equal starts put
// the shorter span first.
func sortDefinitions(defs []collect.Definition) []collect.Definition {
	out := append([]collect.Definition(nil), defs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Span.Start != out[j].Span.Start {
			return out[i].Span.Start > out[j].Span.Start
		}
		return out[i].Span.End < out[j].Span.End
	})
	return out
}

// locate returns the task of the first span in sorted that contains pos, or
// nil when pos is not an indexed position or no span contains it.
func locate(pos source.LineCol, index source.IndexMap, sorted []collect.Definition) *task.Task {
	off, ok := index.Lookup(pos.Line, pos.Col)
	if !ok {
		return nil
	}
	for _, d := range sorted {
		if d.Span.Contains(off) {
			return d.Task
		}
	}
	return nil
}
