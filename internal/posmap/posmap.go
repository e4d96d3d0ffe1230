// Package posmap translates checker positions through a source map v3 back
// into the coordinates of the authored file.
package posmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"fortio.org/safecast"
)

// Position is a 1-based line/column pair.
type Position struct {
	Line   uint32
	Column uint32
}

var (
	ErrUnsupportedVersion = errors.New("unsupported source map version")
	ErrIndexedMap         = errors.New("indexed source maps (sections) are not supported")
)

type rawMap struct {
	Version  int             `json:"version"`
	File     string          `json:"file"`
	Sources  []string        `json:"sources"`
	Names    []string        `json:"names"`
	Mappings string          `json:"mappings"`
	Sections json.RawMessage `json:"sections"`
}

// mapping holds 0-based coordinates as stored in the map.
type mapping struct {
	genLine   int
	genCol    int
	source    int // -1 when the segment carries no original position
	srcLine   int
	srcCol    int
	hasSource bool
}

// Map is a decoded source map.
type Map struct {
	File     string
	Sources  []string
	Names    []string
	mappings []mapping // sorted by (genLine, genCol)
}

// Parse decodes a JSON source map v3.
func Parse(data []byte) (*Map, error) {
	var raw rawMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode source map: %w", err)
	}
	if raw.Version != 3 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, raw.Version)
	}
	if len(raw.Sections) > 0 && string(raw.Sections) != "null" {
		return nil, ErrIndexedMap
	}
	mappings, err := decodeMappings(raw.Mappings)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(mappings, func(i, j int) bool {
		if mappings[i].genLine != mappings[j].genLine {
			return mappings[i].genLine < mappings[j].genLine
		}
		return mappings[i].genCol < mappings[j].genCol
	})
	return &Map{
		File:     raw.File,
		Sources:  raw.Sources,
		Names:    raw.Names,
		mappings: mappings,
	}, nil
}

// Len is the number of decoded segments.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.mappings)
}

// Original finds the nearest segment at or before the generated position on
// the same generated line and returns its original position. The lookup
// misses when the line has no segment at or before the column, or when that
// segment carries no original position.
func (m *Map) Original(pos Position) (Position, bool) {
	if m == nil || pos.Line == 0 || pos.Column == 0 {
		return Position{}, false
	}
	line := int(pos.Line) - 1
	col := int(pos.Column) - 1

	// первый сегмент строго после искомой позиции
	i := sort.Search(len(m.mappings), func(i int) bool {
		mp := m.mappings[i]
		if mp.genLine != line {
			return mp.genLine > line
		}
		return mp.genCol > col
	})
	if i == 0 {
		return Position{}, false
	}
	match := m.mappings[i-1]
	if match.genLine != line || !match.hasSource {
		return Position{}, false
	}
	srcLine, err := safecast.Conv[uint32](match.srcLine + 1)
	if err != nil {
		return Position{}, false
	}
	srcCol, err := safecast.Conv[uint32](match.srcCol + 1)
	if err != nil {
		return Position{}, false
	}
	return Position{Line: srcLine, Column: srcCol}, true
}

// Translate maps pos through m. A nil map, or a lookup miss, leaves the
// position unchanged.
func Translate(m *Map, pos Position) Position {
	if m == nil {
		return pos
	}
	if orig, ok := m.Original(pos); ok {
		return orig
	}
	return pos
}
