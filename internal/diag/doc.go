// Package diag defines the diagnostic records parsed out of an external
// type checker's output.
//
// A Diagnostic is the checker's own view of an issue: the path as printed by
// the tool (not yet resolved), an optional 1-based line/column, a severity, an
// optional tool code and the message. FileMap groups them by path while
// keeping emission order, which the result builder relies on for stable task
// ordinals.
//
// Package diag does no parsing or rendering. Parsing lives in
// internal/diagparse, rendering of results in internal/diagfmt.
package diag
