package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"typewatch/internal/diagfmt"
	"typewatch/internal/typecheck"
)

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Type-check the test files once and report the results",
	Long: `Run the type checker once over every test file of the project and print the
results. Exits with status 1 when a test file has type errors (or when errors
outside test files are found, unless --ignore-source-errors is set).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	addSessionFlags(checkCmd)
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().BoolP("verbose", "v", false, "list passing and skipped tests too")
}

func runCheck(cmd *cobra.Command, args []string) error {
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
	flags, err := readSessionFlags(cmd)
	if err != nil {
		return err
	}

	log := g.logger()
	s, err := prepareSession(startDirFromArgs(args), flags, false, log)
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
	if err := tc.Start(ctx); err != nil {
		return explainSessionError(err)
	}

	snap := tc.Result()
	if err := printSnapshot(cmd.OutOrStdout(), snap, outputOptions{
		format:             format,
		verbose:            verbose,
		quiet:              g.quiet,
		timings:            g.timings,
		color:              g.useColor(os.Stdout),
		ignoreSourceErrors: s.config.IgnoreSourceErrors,
		baseDir:            s.root,
	}); err != nil {
		return err
	}
	if diagfmt.Summarize(snap).Failed(s.config.IgnoreSourceErrors) {
		return errTypeErrors
	}
	return nil
}
