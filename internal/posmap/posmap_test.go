package posmap

import (
	"errors"
	"testing"
)

const sampleMap = `{
  "version": 3,
  "file": "a.test-d.js",
  "sources": ["a.test-d.ts"],
  "names": [],
  "mappings": "AAAA,KAAK;AACA,IAAI"
}`

func mustParse(t *testing.T, data string) *Map {
	t.Helper()
	m, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func TestOriginalNearestPreceding(t *testing.T) {
	m := mustParse(t, sampleMap)
	if m.Len() != 4 {
		t.Fatalf("expected 4 segments, got %d", m.Len())
	}

	cases := []struct {
		gen  Position
		want Position
	}{
		{Position{1, 1}, Position{1, 1}},
		{Position{1, 3}, Position{1, 1}},
		{Position{1, 6}, Position{1, 6}},
		{Position{1, 100}, Position{1, 6}},
		{Position{2, 3}, Position{2, 6}},
		{Position{2, 9}, Position{2, 10}},
	}
	for _, c := range cases {
		got, ok := m.Original(c.gen)
		if !ok {
			t.Errorf("Original(%v) missed", c.gen)
			continue
		}
		if got != c.want {
			t.Errorf("Original(%v) = %v, want %v", c.gen, got, c.want)
		}
	}
}

func TestTranslateFallsBack(t *testing.T) {
	m := mustParse(t, sampleMap)

	// line 3 has no segments
	if got := Translate(m, Position{3, 1}); got != (Position{3, 1}) {
		t.Errorf("miss must keep the position, got %v", got)
	}
	// no map: identity
	if got := Translate(nil, Position{7, 4}); got != (Position{7, 4}) {
		t.Errorf("nil map must keep the position, got %v", got)
	}
}

func TestSegmentWithoutSourceMisses(t *testing.T) {
	m := mustParse(t, `{"version":3,"sources":["a.ts"],"mappings":"AAAA,K"}`)
	if _, ok := m.Original(Position{1, 7}); ok {
		t.Errorf("segment without original position must miss")
	}
	if got, ok := m.Original(Position{1, 2}); !ok || got != (Position{1, 1}) {
		t.Errorf("Original(1,2) = %v,%v", got, ok)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte(`{"version":2,"mappings":""}`)); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
	if _, err := Parse([]byte(`{"version":3,"sections":[{"offset":{"line":0,"column":0}}]}`)); !errors.Is(err, ErrIndexedMap) {
		t.Errorf("expected ErrIndexedMap, got %v", err)
	}
	if _, err := Parse([]byte(`{"version":3,"mappings":"AA!A"}`)); !errors.Is(err, ErrBadMappings) {
		t.Errorf("expected ErrBadMappings, got %v", err)
	}
	if _, err := Parse([]byte(`{"version":3,"mappings":"AA"}`)); !errors.Is(err, ErrBadMappings) {
		t.Errorf("two-field segment must be rejected, got %v", err)
	}
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Errorf("expected decode error")
	}
}

func TestDecodeVLQ(t *testing.T) {
	cases := map[string]int{"A": 0, "C": 1, "D": -1, "K": 5, "gB": 16, "hB": -16}
	for in, want := range cases {
		got, next, err := decodeVLQ(in, 0)
		if err != nil {
			t.Errorf("decodeVLQ(%q): %v", in, err)
			continue
		}
		if got != want || next != len(in) {
			t.Errorf("decodeVLQ(%q) = %d (next %d), want %d", in, got, next, want)
		}
	}
}
