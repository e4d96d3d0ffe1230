package diag

import "strings"

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics ("message" in tsc output).
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity maps the category word printed by tsc-like tools.
// Unknown words are treated as errors.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(s) {
	case "warning":
		return SevWarning
	case "message", "info", "suggestion":
		return SevInfo
	}
	return SevError
}
