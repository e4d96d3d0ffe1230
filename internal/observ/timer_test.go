package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	parse := timer.Begin("parse")
	timer.End(parse, "3 diagnostics")
	build := timer.Begin("build")
	timer.End(build, "")
	timer.End(42, "ignored")

	r := timer.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %d", len(r.Phases))
	}
	p, ok := r.Phase("parse")
	if !ok || p.Note != "3 diagnostics" {
		t.Fatalf("parse phase = %+v, %v", p, ok)
	}
	if _, ok := r.Phase("collect"); ok {
		t.Fatal("unexpected collect phase")
	}
	if r.TotalMS < p.DurationMS {
		t.Fatalf("total %v < phase %v", r.TotalMS, p.DurationMS)
	}

	s := r.Summary()
	for _, want := range []string{"timings:", "parse", "// 3 diagnostics", "total"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestEmptyReport(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("empty report = %+v", r)
	}
}
