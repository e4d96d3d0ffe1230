package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// FormatShort renders diagnostics into a stable, single-line-per-entry form
// used by the CLI short output and by tests. Entries are sorted by path,
// position, severity and code; paths are made relative to baseDir when possible.
func FormatShort(diags []Diagnostic, baseDir string) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := append([]Diagnostic(nil), diags...)
	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})

	var b strings.Builder
	for i, d := range rendered {
		if i > 0 {
			b.WriteByte('\n')
		}
		path := relPath(d.Path, baseDir)
		code := d.Code
		if code == "" {
			code = "-"
		}
		// многострочные сообщения схлопываем в одну строку
		msg := strings.Join(strings.Fields(d.Message), " ")
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", strings.ToLower(d.Severity.String()), code, path, d.Line, d.Column, msg)
	}
	return b.String()
}

func relPath(path, baseDir string) string {
	if baseDir == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(baseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
