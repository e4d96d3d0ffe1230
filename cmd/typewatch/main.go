package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"typewatch/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "typewatch",
	Short: "Report type errors in test files as test results",
	Long: `typewatch runs a TypeScript type checker (tsc, vue-tsc) over type-level test
files and attributes every diagnostic to the innermost suite or test that
contains it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errTypeErrors is returned when the check itself ran and found failures.
var errTypeErrors = errors.New("type check failed")

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error|off)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")
	rootCmd.PersistentPreRunE = setupProfiling

	err := rootCmd.Execute()
	stopProfiling()
	if err != nil && !errors.Is(err, errTypeErrors) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

// exitCode: 0 clean, 1 type errors, 2 anything that kept the check from running.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errTypeErrors):
		return 1
	default:
		return 2
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
