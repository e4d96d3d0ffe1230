package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"typewatch/internal/collect"
	"typewatch/internal/project"
	"typewatch/internal/tsconfig"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Remove the collector cache and leftover temporary tsconfig",
	Long: `Drop every cached definition collection and delete a temporary tsconfig
left behind by an interrupted run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	base := startDirFromArgs(args)
	if root, ok, err := project.FindProjectRoot(base); err != nil {
		return err
	} else if ok {
		base = root
	}

	cache, err := collect.OpenDiskCache(cacheApp)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clear %q: %w", cache.Dir(), err)
	}
	_, _ = fmt.Fprintf(out, "cleared %s\n", cache.Dir())

	config, err := tsconfig.Find(base, "")
	if errors.Is(err, tsconfig.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	temp := filepath.Join(filepath.Dir(config), tsconfig.TempName)
	if err := os.Remove(temp); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to remove %q: %w", temp, err)
	}
	_, _ = fmt.Fprintf(out, "removed %s\n", temp)
	return nil
}
