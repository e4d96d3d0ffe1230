package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"typewatch/internal/diag"
	"typewatch/internal/diagparse"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Parse saved checker output and print the diagnostics found",
	Long: `Read tsc-like output from a file (or stdin) and print every diagnostic
typewatch recognises, one per line. Useful to check what a custom checker
prints before pointing typewatch at it. Exits with status 1 if any error
diagnostic was found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read checker output: %w", err)
	}

	diags := diagparse.Parse(string(data))
	wd, _ := os.Getwd()
	out := cmd.OutOrStdout()
	if short := diag.FormatShort(diags.All(), wd); short != "" {
		if _, err := fmt.Fprintln(out, short); err != nil {
			return err
		}
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%d diagnostics in %d files\n", diags.Len(), len(diags.Paths()))
	}
	if diags.HasErrors() {
		return errTypeErrors
	}
	return nil
}
