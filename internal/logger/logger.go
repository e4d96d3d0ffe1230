// Package logger builds the slog.Logger used across typewatch: tint on a
// terminal, plain key=value text otherwise.
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// Options configures New.
type Options struct {
	Writer  io.Writer // default os.Stderr
	Level   slog.Level
	NoColor bool
}

// New returns a logger writing to opts.Writer.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	lvl := &slog.LevelVar{}
	lvl.Set(opts.Level)
	if IsTerminal(w) {
		return slog.New(newTerminalHandler(w, lvl, opts.NoColor))
	}
	return slog.New(newTextHandler(w, lvl))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelOff}))
}

// IsTerminal reports whether w is a terminal (or a Cygwin/MSYS pty).
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
