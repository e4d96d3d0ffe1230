package diag

import (
	"reflect"
	"testing"
)

func TestFileMapOrders(t *testing.T) {
	m := NewFileMap()
	for _, d := range []Diagnostic{
		{Path: "a.ts", Code: "TS1"},
		{Path: "b.ts", Code: "TS2"},
		{Path: "a.ts", Code: "TS3"},
	} {
		m.Add(d)
	}

	if got := m.Paths(); !reflect.DeepEqual(got, []string{"a.ts", "b.ts"}) {
		t.Fatalf("Paths = %v", got)
	}
	var codes []string
	for _, d := range m.All() {
		codes = append(codes, d.Code)
	}
	if !reflect.DeepEqual(codes, []string{"TS1", "TS2", "TS3"}) {
		t.Fatalf("All codes = %v, want emission order", codes)
	}
	if m.Len() != 3 || len(m.Get("a.ts")) != 2 {
		t.Fatalf("Len = %d, Get(a.ts) = %d", m.Len(), len(m.Get("a.ts")))
	}
}
