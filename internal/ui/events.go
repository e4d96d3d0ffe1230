// Package ui renders the interactive watch view.
package ui

import "typewatch/internal/typecheck"

// EventKind says what happened in the session.
type EventKind uint8

const (
	// EventRerun: the checker started a new pass; previous results are stale.
	EventRerun EventKind = iota + 1
	// EventChecking: output of a pass is being turned into results.
	EventChecking
	// EventResult: a snapshot was published.
	EventResult
	// EventError: the session failed.
	EventError
)

// Event is sent by the session driver to the view.
type Event struct {
	Kind     EventKind
	Snapshot *typecheck.Snapshot
	Err      error
}
