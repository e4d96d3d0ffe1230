package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the value of watch --ui.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

var uiModes = map[string]uiMode{
	"":     uiModeAuto,
	"auto": uiModeAuto,
	"on":   uiModeOn,
	"off":  uiModeOff,
}

func readUIMode(value string) (uiMode, error) {
	mode, ok := uiModes[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", fmt.Errorf("--ui: unknown mode %q, want auto, on or off", value)
	}
	return mode, nil
}

// shouldUseTUI reports whether watch passes go to the Bubble Tea view.
// An explicit mode wins; auto needs pretty output on a terminal, json lines
// would be swallowed by the view.
func shouldUseTUI(mode uiMode, format string) bool {
	if mode != uiModeAuto {
		return mode == uiModeOn
	}
	return format == "pretty" && isTerminal(os.Stdout)
}
