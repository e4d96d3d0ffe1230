package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"typewatch/internal/logger"
)

type globalFlags struct {
	color    string
	quiet    bool
	timings  bool
	logLevel slog.Level
}

func readGlobalFlags(cmd *cobra.Command) (globalFlags, error) {
	var g globalFlags
	flags := cmd.Root().PersistentFlags()
	color, err := flags.GetString("color")
	if err != nil {
		return g, err
	}
	switch strings.ToLower(color) {
	case "auto", "on", "off":
		g.color = strings.ToLower(color)
	default:
		return g, fmt.Errorf("invalid --color value %q (expected auto|on|off)", color)
	}
	if g.quiet, err = flags.GetBool("quiet"); err != nil {
		return g, err
	}
	if g.timings, err = flags.GetBool("timings"); err != nil {
		return g, err
	}
	level, err := flags.GetString("log-level")
	if err != nil {
		return g, err
	}
	if g.logLevel, err = logger.ParseLevel(level); err != nil {
		return g, err
	}
	return g, nil
}

// useColor resolves --color for output written to f.
func (g globalFlags) useColor(f *os.File) bool {
	switch g.color {
	case "on":
		return true
	case "off":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(f)
}

func (g globalFlags) logger() *slog.Logger {
	return logger.New(logger.Options{
		Writer:  os.Stderr,
		Level:   g.logLevel,
		NoColor: !g.useColor(os.Stderr),
	})
}
