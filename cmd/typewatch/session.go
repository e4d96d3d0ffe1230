package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"typewatch/internal/checker"
	"typewatch/internal/collect"
	"typewatch/internal/project"
	"typewatch/internal/tsconfig"
	"typewatch/internal/typecheck"
)

const cacheApp = "typewatch"

var errNoFiles = errors.New("no test files matched")

// sessionFlags are the per-command overrides of [typecheck].
type sessionFlags struct {
	checker            string
	tsconfig           string
	allowJS            bool
	ignoreSourceErrors bool
	noCache            bool
	jobs               int
	collector          []string
	filter             []string

	set map[string]bool // flags given explicitly
}

func addSessionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("checker", "", "checker profile (tsc|vue-tsc)")
	f.String("tsconfig", "", "base tsconfig.json (default: nearest above the project root)")
	f.Bool("allow-js", false, "also type-check JavaScript test files")
	f.Bool("ignore-source-errors", false, "do not fail on errors outside test files")
	f.Bool("no-cache", false, "do not use the collector disk cache")
	f.Int("jobs", 0, "concurrent definition collectors (0 = one per file)")
	f.StringSlice("collector", nil, "definition collector command")
	f.StringSlice("filter", nil, "only check test files matching these globs")
}

func readSessionFlags(cmd *cobra.Command) (sessionFlags, error) {
	var s sessionFlags
	var err error
	f := cmd.Flags()
	if s.checker, err = f.GetString("checker"); err != nil {
		return s, err
	}
	if s.tsconfig, err = f.GetString("tsconfig"); err != nil {
		return s, err
	}
	if s.allowJS, err = f.GetBool("allow-js"); err != nil {
		return s, err
	}
	if s.ignoreSourceErrors, err = f.GetBool("ignore-source-errors"); err != nil {
		return s, err
	}
	if s.noCache, err = f.GetBool("no-cache"); err != nil {
		return s, err
	}
	if s.jobs, err = f.GetInt("jobs"); err != nil {
		return s, err
	}
	if s.collector, err = f.GetStringSlice("collector"); err != nil {
		return s, err
	}
	if s.filter, err = f.GetStringSlice("filter"); err != nil {
		return s, err
	}
	s.set = make(map[string]bool)
	for _, name := range []string{"checker", "tsconfig", "allow-js", "ignore-source-errors", "no-cache", "jobs", "collector"} {
		s.set[name] = f.Changed(name)
	}
	return s, nil
}

// apply overlays explicitly given flags on cfg.
func (s sessionFlags) apply(cfg project.Config) project.Config {
	if s.set["checker"] {
		cfg.Checker = s.checker
	}
	if s.set["tsconfig"] {
		cfg.TSConfig = s.tsconfig
	}
	if s.set["allow-js"] {
		cfg.AllowJS = s.allowJS
	}
	if s.set["ignore-source-errors"] {
		cfg.IgnoreSourceErrors = s.ignoreSourceErrors
	}
	if s.set["no-cache"] {
		cfg.Cache = !s.noCache
	}
	if s.set["jobs"] {
		cfg.Jobs = s.jobs
	}
	if s.set["collector"] {
		cfg.Collector = s.collector
	}
	return cfg
}

type session struct {
	root     string
	manifest string // empty without typewatch.toml
	config   project.Config
	files    []string
	opts     typecheck.Options
}

// prepareSession loads typewatch.toml above startDir, applies flag
// overrides, discovers the test files and wires the collaborators.
func prepareSession(startDir string, flags sessionFlags, watch bool, log *slog.Logger) (*session, error) {
	if startDir == "" {
		startDir = "."
	}
	if info, err := os.Stat(startDir); err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", startDir, err)
	} else if !info.IsDir() {
		startDir = filepath.Dir(startDir)
	}
	root, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	s := &session{root: root, config: project.DefaultConfig()}
	manifest, ok, err := project.LoadManifest(startDir)
	if err != nil {
		return nil, err
	}
	if ok {
		s.root = manifest.Root
		s.manifest = manifest.Path
		s.config = manifest.Config
	}
	s.config = flags.apply(s.config)
	if s.config.Jobs < 0 {
		return nil, project.ErrBadJobs
	}

	profile, err := checker.Lookup(s.config.Checker)
	if err != nil {
		return nil, err
	}
	if s.config.Command != "" {
		profile.Command = s.config.Command
	}
	if profile.Markers, err = checker.CompileMarkers(s.config.Markers.Rerun, s.config.Markers.Complete); err != nil {
		return nil, err
	}

	files, err := project.Discover(s.root, s.config.Include, s.config.Exclude)
	if err != nil {
		return nil, err
	}
	files = project.Filter(s.root, files, flags.filter)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s (include: %v)", errNoFiles, s.root, s.config.Include)
	}
	s.files = files

	s.opts = typecheck.Options{
		Root:      s.root,
		Files:     files,
		Profile:   profile,
		Watch:     watch,
		AllowJS:   s.config.AllowJS,
		TSConfig:  tsconfig.Options{Path: s.config.TSConfig},
		Spawner:   checker.ExecSpawner{},
		Locator:   tsconfig.Locator{},
		Collector: newCollector(s.config, log),
		Policy:    profile.Markers,
		Jobs:      s.config.Jobs,
		Logger:    log,
	}
	log.Debug("session prepared", "root", s.root, "manifest", s.manifest, "files", len(files), "checker", profile.Name)
	return s, nil
}

func newCollector(cfg project.Config, log *slog.Logger) collect.Collector {
	if len(cfg.Collector) == 0 {
		return collect.FileOnly
	}
	c := &collect.CommandCollector{Command: cfg.Collector, Logger: log}
	if cfg.Cache {
		cache, err := collect.OpenDiskCache(cacheApp)
		if err != nil {
			log.Warn("collector cache disabled", "err", err)
		} else {
			c.Cache = cache
		}
	}
	return c
}

// explainSessionError adds a hint to the failures users can fix themselves.
func explainSessionError(err error) error {
	switch {
	case errors.Is(err, checker.ErrNotInstalled):
		return fmt.Errorf("%w\n  install typescript (npm i -D typescript) or set [typecheck].command", err)
	case errors.Is(err, tsconfig.ErrNotFound):
		return fmt.Errorf("%w\n  create one with `tsc --init` or pass --tsconfig", err)
	case errors.Is(err, typecheck.ErrCheckerFailed):
		return fmt.Errorf("%w\n  run the checker by hand to see why it produced no output", err)
	}
	return err
}

func startDirFromArgs(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}
