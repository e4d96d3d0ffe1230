package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"typewatch/internal/logger"
	"typewatch/internal/typecheck"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Keep type-checking the test files as they change",
	Long: `Start the type checker in watch mode and report the results of every pass.
Runs until interrupted (Ctrl+C) or until the checker exits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	addSessionFlags(watchCmd)
	watchCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	watchCmd.Flags().BoolP("verbose", "v", false, "list passing and skipped tests too")
	watchCmd.Flags().String("ui", "auto", "interactive view (auto|on|off)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	formatValue, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := readFormat(formatValue)
	if err != nil {
		return err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	flags, err := readSessionFlags(cmd)
	if err != nil {
		return err
	}
	useTUI := shouldUseTUI(mode, format)

	log := g.logger()
	if useTUI {
		// лог поверх TUI ломает отрисовку
		log = logger.Discard()
	}
	s, err := prepareSession(startDirFromArgs(args), flags, true, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tc := typecheck.New(s.opts)
	defer func() {
		if err := tc.Clean(); err != nil {
			log.Warn("failed to remove temporary tsconfig", "err", err)
		}
	}()

	if useTUI {
		title := fmt.Sprintf("typewatch %s (%d files)", s.config.Checker, len(s.files))
		return explainSessionError(runWatchWithUI(ctx, title, s.root, tc))
	}

	out := cmd.OutOrStdout()
	useColor := g.useColor(os.Stdout)
	dim := color.New(color.Faint)
	if useColor {
		dim.EnableColor()
	} else {
		dim.DisableColor()
	}
	tc.OnWatcherRerun(func(context.Context) error {
		if format == "pretty" && !g.quiet {
			_, err := fmt.Fprintln(out, dim.Sprintf("[%s] change detected, re-checking...", time.Now().Format("15:04:05")))
			return err
		}
		return nil
	})
	tc.OnParseEnd(func(_ context.Context, snap *typecheck.Snapshot) error {
		return printSnapshot(out, snap, outputOptions{
			format:             format,
			verbose:            verbose,
			quiet:              g.quiet,
			timings:            g.timings,
			color:              useColor,
			ignoreSourceErrors: s.config.IgnoreSourceErrors,
			baseDir:            s.root,
		})
	})

	err = tc.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return explainSessionError(err)
}
