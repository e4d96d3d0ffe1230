// Package collect obtains the test/suite definitions of a file and the
// source spans they occupy. The static analysis itself runs outside of
// typewatch; this package only drives it and decodes what it reports.
package collect

import (
	"context"

	"typewatch/internal/posmap"
	"typewatch/internal/source"
	"typewatch/internal/task"
)

// Definition ties a span of the authored text to the suite or test declared there.
type Definition struct {
	Span source.Span
	Task *task.Task
}

// Collected is everything known about one file under test.
type Collected struct {
	File        *task.Task
	Definitions []Definition // document order, spans may nest
	SourceMap   *posmap.Map  // nil when the checked text is the authored text
	Text        string       // text the definition offsets refer to
}

// Collector extracts definitions for one file. A nil result with a nil
// error means the file yielded nothing collectible.
type Collector interface {
	Collect(ctx context.Context, root, path string) (*Collected, error)
}

// CollectorFunc adapts a function to Collector.
type CollectorFunc func(ctx context.Context, root, path string) (*Collected, error)

func (f CollectorFunc) Collect(ctx context.Context, root, path string) (*Collected, error) {
	return f(ctx, root, path)
}

// FileOnly reports no definitions for any file, so every diagnostic attaches
// to its file. Used when no collector command is configured.
var FileOnly Collector = CollectorFunc(func(context.Context, string, string) (*Collected, error) {
	return nil, nil
})
