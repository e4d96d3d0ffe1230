package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"typewatch/internal/task"
	"typewatch/internal/typecheck"
)

type palette struct {
	fail, pass, skip, dim, bold, code *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		fail: color.New(color.FgRed, color.Bold),
		pass: color.New(color.FgGreen),
		skip: color.New(color.FgYellow),
		dim:  color.New(color.Faint),
		bold: color.New(color.Bold),
		code: color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.fail, p.pass, p.skip, p.dim, p.bold, p.code} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty печатает снапшот в человекочитаемом виде:
//
//	FAIL src/a.test-d.ts
//	  × outer > type error #1 (TS2322)
//	      src/a.test-d.ts:2:3 Type 'string' is not assignable to type 'number'.
//
// затем source errors и итоговую строку.
func Pretty(w io.Writer, snap *typecheck.Snapshot, opts PrettyOpts) error {
	pw := &prettyWriter{w: w, opts: opts, p: newPalette(opts.Color)}
	if snap != nil {
		for _, f := range snap.Files {
			pw.file(f)
		}
		if !opts.IgnoreSourceErrors && len(snap.SourceErrors) > 0 {
			pw.printf("\n%s\n", pw.p.fail.Sprintf("Source errors (%d)", len(snap.SourceErrors)))
			for _, e := range snap.SourceErrors {
				pw.printf("  %s\n", pw.errorLine(e))
			}
		}
	}
	pw.summary(Summarize(snap))
	return pw.err
}

type prettyWriter struct {
	w    io.Writer
	opts PrettyOpts
	p    palette
	err  error
}

func (pw *prettyWriter) printf(format string, args ...any) {
	if pw.err != nil {
		return
	}
	_, pw.err = fmt.Fprintf(pw.w, format, args...)
}

func (pw *prettyWriter) path(p string) string {
	return formatPath(p, pw.opts.PathMode, pw.opts.BaseDir)
}

func (pw *prettyWriter) file(f *task.Task) {
	var label string
	switch f.State() {
	case task.StateFail:
		label = pw.p.fail.Sprint("FAIL")
	case task.StateSkip, task.StateTodo:
		label = pw.p.skip.Sprint("SKIP")
	default:
		label = pw.p.pass.Sprint("PASS")
	}
	pw.printf("%s %s\n", label, pw.p.bold.Sprint(pw.path(f.Name)))
	if f.State() != task.StateFail && !pw.opts.Verbose {
		return
	}
	for _, child := range f.Tasks {
		pw.task(child, nil)
	}
}

// task печатает тесты; сьюты разворачиваются в префикс "a > b > ".
func (pw *prettyWriter) task(t *task.Task, trail []string) {
	if t.Type == task.TypeSuite {
		if t.State() != task.StateFail && !pw.opts.Verbose {
			return
		}
		next := append(append([]string(nil), trail...), t.Name)
		for _, child := range t.Tasks {
			pw.task(child, next)
		}
		return
	}

	name := strings.Join(append(append([]string(nil), trail...), t.Name), " > ")
	switch t.State() {
	case task.StateFail:
		pw.printf("  %s %s\n", pw.p.fail.Sprint("×"), name)
		for _, err := range t.Result.Errors {
			if tcErr, ok := err.(*typecheck.TypeCheckError); ok {
				pw.printf("      %s\n", pw.errorLine(tcErr))
			} else {
				pw.printf("      %s\n", err)
			}
		}
	case task.StateSkip, task.StateTodo:
		if pw.opts.Verbose {
			pw.printf("  %s %s\n", pw.p.skip.Sprint("↓"), pw.p.dim.Sprintf("%s [%s]", name, t.State()))
		}
	default:
		if pw.opts.Verbose {
			pw.printf("  %s %s\n", pw.p.pass.Sprint("✓"), name)
		}
	}
	// у теста тоже могут быть синтетические дети
	if len(t.Tasks) > 0 {
		next := append(append([]string(nil), trail...), t.Name)
		for _, child := range t.Tasks {
			pw.task(child, next)
		}
	}
}

func (pw *prettyWriter) errorLine(e *typecheck.TypeCheckError) string {
	loc := e.Location
	where := "<global>"
	if loc.File != "" {
		where = pw.path(loc.File)
		if loc.Line > 0 {
			where = fmt.Sprintf("%s:%d:%d", where, loc.Line, loc.Column)
		}
	}
	msg := strings.ReplaceAll(e.Message, "\n", "\n        ")
	if e.Code == "" {
		return fmt.Sprintf("%s %s", pw.p.dim.Sprint(where), msg)
	}
	return fmt.Sprintf("%s %s %s", pw.p.dim.Sprint(where), pw.p.code.Sprint(e.Code), msg)
}

func (pw *prettyWriter) summary(s Summary) {
	parts := []string{}
	if s.FailedFiles > 0 {
		parts = append(parts, pw.p.fail.Sprintf("%d failed", s.FailedFiles))
	}
	if s.PassedFiles > 0 {
		parts = append(parts, pw.p.pass.Sprintf("%d passed", s.PassedFiles))
	}
	if s.SkippedFiles > 0 {
		parts = append(parts, pw.p.skip.Sprintf("%d skipped", s.SkippedFiles))
	}
	if len(parts) == 0 {
		parts = append(parts, "no files")
	}
	pw.printf("\n%s %s (%d)\n", pw.p.bold.Sprint("Type files"), strings.Join(parts, ", "), s.Files)
	pw.printf("%s %d", pw.p.bold.Sprint("Type errors"), s.TypeErrors)
	if !pw.opts.IgnoreSourceErrors && s.SourceErrors > 0 {
		pw.printf(", %s", pw.p.fail.Sprintf("%d source errors", s.SourceErrors))
	}
	pw.printf("\n")
}
