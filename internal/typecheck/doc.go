// Package typecheck turns the output of an external type checker into test
// results.
//
// # Pipeline
//
// A Typechecker owns one checker process. Its output is accumulated into a
// buffer; once a pass is complete (process exit in one-shot mode, a
// completion marker in watch mode) the buffer is parsed into diagnostics,
// every requested file's definitions are collected (once per cycle, cached),
// and each diagnostic is attached as a synthetic failed test to the innermost
// suite or test whose span contains it. Diagnostics in files that were not
// requested are kept as source errors.
//
// # Snapshots
//
// The result of a pass is a Snapshot. It is published by replacing the
// previous one wholesale and is never mutated afterwards: the builder works
// on a fresh clone of the cached task trees every time.
//
// # Watch mode
//
// In watch mode a rerun marker invalidates the definition cache and clears
// the published snapshot; the following completion marker triggers a new
// pass. Marker recognition is delegated to a WatchPolicy.
package typecheck
