package typecheck

import (
	"strings"
	"testing"

	"typewatch/internal/collect"
	"typewatch/internal/source"
	"typewatch/internal/task"
)

func TestLocateInnermostSpan(t *testing.T) {
	file := task.NewFile("/p/a.ts")
	outer := file.Add(&task.Task{Type: task.TypeSuite, Name: "outer", Mode: task.ModeRun})
	inner := outer.Add(&task.Task{Type: task.TypeSuite, Name: "inner", Mode: task.ModeRun})
	defs := sortDefinitions([]collect.Definition{
		{Span: source.Span{Start: 0, End: 100}, Task: outer},
		{Span: source.Span{Start: 10, End: 50}, Task: inner},
	})
	index := source.BuildIndexMap(strings.Repeat("x", 120))

	tests := []struct {
		name string
		pos  source.LineCol
		want *task.Task
	}{
		{"nested wins", source.LineCol{Line: 1, Col: 21}, inner},
		{"inner start inclusive", source.LineCol{Line: 1, Col: 11}, inner},
		{"inner end inclusive", source.LineCol{Line: 1, Col: 51}, inner},
		{"outer only", source.LineCol{Line: 1, Col: 52}, outer},
		{"outside every span", source.LineCol{Line: 1, Col: 110}, nil},
		{"not indexed", source.LineCol{Line: 9, Col: 1}, nil},
		{"zero position", source.LineCol{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := locate(tt.pos, index, defs)
			if got != tt.want {
				t.Fatalf("locate(%v) = %v, want %v", tt.pos, name(got), name(tt.want))
			}
		})
	}
}

func TestSortDefinitionsIsACopy(t *testing.T) {
	defs := []collect.Definition{
		{Span: source.Span{Start: 0, End: 10}},
		{Span: source.Span{Start: 5, End: 9}},
		{Span: source.Span{Start: 5, End: 6}},
	}
	sorted := sortDefinitions(defs)
	if defs[0].Span.Start != 0 {
		t.Fatalf("input reordered: %v", defs)
	}
	want := []source.Span{{Start: 5, End: 6}, {Start: 5, End: 9}, {Start: 0, End: 10}}
	for i, d := range sorted {
		if d.Span != want[i] {
			t.Fatalf("sorted[%d] = %v, want %v", i, d.Span, want[i])
		}
	}
}

func name(t *task.Task) string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}
