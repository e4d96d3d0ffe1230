package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// LevelOff silences every record.
const LevelOff = slog.Level(99)

// ParseLevel maps a --log-level value to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "err", "error":
		return slog.LevelError, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "off", "none", "quiet":
		return LevelOff, nil
	}
	return slog.LevelWarn, fmt.Errorf("invalid log level %q (expected: debug|info|warn|error|off)", name)
}
