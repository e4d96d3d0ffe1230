package typecheck

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyStarted = errors.New("typecheck session already started")
	ErrCheckerFailed  = errors.New("type checker produced no output")
	ErrProcessExited  = errors.New("type checker exited")
)

// Location is the single frame a TypeCheckError points at.
type Location struct {
	File   string // absolute path, empty for global diagnostics
	Line   uint32 // 1-based, 0 when unknown
	Column uint32 // 1-based, 0 when unknown
}

func (l Location) String() string {
	switch {
	case l.File == "":
		return "<global>"
	case l.Line == 0:
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// TypeCheckError is a diagnostic surfaced to the caller, either inside a
// failed synthetic test or as a source error. It carries exactly one frame,
// the diagnostic's own position; no call stack is captured.
type TypeCheckError struct {
	Message  string
	Code     string
	Location Location
}

func (e *TypeCheckError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// Frames returns the error's only frame.
func (e *TypeCheckError) Frames() []Location {
	return []Location{e.Location}
}

// SessionError is a fatal session failure.
type SessionError struct {
	Op  string // config | spawn | collect | wait | watch
	Err error
}

func (e *SessionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("typecheck %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }
