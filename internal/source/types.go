package source

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// Valid reports whether both components are set.
func (lc LineCol) Valid() bool {
	return lc.Line > 0 && lc.Col > 0
}
