package diag

import "fmt"

// Diagnostic is one issue reported by the external checker, as written in
// its output. Path is the path exactly as the tool printed it.
type Diagnostic struct {
	Path     string
	Line     uint32 // 1-based, 0 when the tool gave no position
	Column   uint32 // 1-based, 0 when the tool gave no position
	Severity Severity
	Code     string // e.g. "TS2322", may be empty
	Message  string
}

// HasPosition reports whether the checker attached a line/column.
func (d Diagnostic) HasPosition() bool {
	return d.Line > 0 && d.Column > 0
}

func (d Diagnostic) String() string {
	loc := d.Path
	if d.HasPosition() {
		loc = fmt.Sprintf("%s:%d:%d", d.Path, d.Line, d.Column)
	}
	if d.Code != "" {
		return fmt.Sprintf("%s: %s %s: %s", loc, d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", loc, d.Severity, d.Message)
}
