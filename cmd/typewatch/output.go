package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"typewatch/internal/diagfmt"
	"typewatch/internal/typecheck"
)

type outputOptions struct {
	format             string
	verbose            bool
	quiet              bool
	timings            bool
	color              bool
	ignoreSourceErrors bool
	baseDir            string
}

func readFormat(value string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(value)); f {
	case "", "pretty":
		return "pretty", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("unsupported format %q (must be pretty or json)", value)
	}
}

// printSnapshot writes one pass. Timings go to stderr so JSON stays parseable.
func printSnapshot(out io.Writer, snap *typecheck.Snapshot, opts outputOptions) error {
	if opts.format == "json" {
		return diagfmt.JSON(out, snap, diagfmt.JSONOpts{
			PathMode: diagfmt.PathModeAuto,
			BaseDir:  opts.baseDir,
			Timings:  opts.timings,
		})
	}
	summary := diagfmt.Summarize(snap)
	if !opts.quiet || summary.Failed(opts.ignoreSourceErrors) {
		if err := diagfmt.Pretty(out, snap, diagfmt.PrettyOpts{
			Color:              opts.color,
			PathMode:           diagfmt.PathModeAuto,
			BaseDir:            opts.baseDir,
			Verbose:            opts.verbose,
			IgnoreSourceErrors: opts.ignoreSourceErrors,
		}); err != nil {
			return err
		}
	}
	if opts.timings && snap != nil {
		_, _ = fmt.Fprint(os.Stderr, snap.Timings.Summary())
	}
	return nil
}
