package source

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"
)

// IndexMap maps a "line:column" key to the linear offset of that position.
// Offsets count Unicode code points from the start of the text. Lines and
// columns are 1-based and columns count UTF-16 code units, as tsc reports
// them: a rune above U+FFFF takes two columns. '\n' starts a new line.
type IndexMap map[string]uint32

// Key formats the lookup key for a position.
func Key(line, col uint32) string {
	return strconv.FormatUint(uint64(line), 10) + ":" + strconv.FormatUint(uint64(col), 10)
}

// BuildIndexMap indexes every position of text, plus the position just past
// the last character so that definitions ending at EOF are addressable.
func BuildIndexMap(text string) IndexMap {
	m := make(IndexMap, len(text)+1)
	var idx, line, col uint32 = 0, 1, 1
	for _, r := range text {
		m[Key(line, col)] = idx
		idx++
		if r == '\n' {
			line++
			col = 1
		} else {
			col += utf16Width(r)
		}
	}
	m[Key(line, col)] = idx
	return m
}

func utf16Width(r rune) uint32 {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

// Lookup returns the offset of (line, col). A miss is a normal outcome:
// the position is not inside the indexed text.
func (m IndexMap) Lookup(line, col uint32) (uint32, bool) {
	if m == nil || line == 0 || col == 0 {
		return 0, false
	}
	off, ok := m[Key(line, col)]
	return off, ok
}

// Offset converts an int offset reported by a collaborator.
func Offset(n int) (uint32, error) {
	off, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0, fmt.Errorf("offset %d out of range: %w", n, err)
	}
	return off, nil
}
