package source

import (
	"fmt"
)

// Span is a closed interval of code-point offsets occupied by a definition.
// Unlike token spans, both bounds are inclusive: a position sitting exactly
// on End still belongs to the definition.
type Span struct {
	Start uint32
	End   uint32
}

// Contains reports whether off lies in [Start, End].
func (s Span) Contains(off uint32) bool {
	return s.Start <= off && off <= s.End
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}
