package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrBadJobs indicates a negative [typecheck].jobs.
	ErrBadJobs = errors.New("[typecheck].jobs must be >= 0")
	// ErrEmptyInclude indicates [typecheck].include was set to an empty list.
	ErrEmptyInclude = errors.New("[typecheck].include must not be empty")
)

// Defaults mirror what a project without typewatch.toml gets.
var (
	DefaultInclude = []string{"**/*.{test,spec}-d.{ts,tsx,mts,cts}"}
	DefaultExclude = []string{"**/node_modules/**", "**/dist/**", "**/.git/**"}
)

// Config is the [typecheck] table.
type Config struct {
	Checker            string   `toml:"checker"`
	Command            string   `toml:"command"`
	TSConfig           string   `toml:"tsconfig"`
	Include            []string `toml:"include"`
	Exclude            []string `toml:"exclude"`
	AllowJS            bool     `toml:"allow_js"`
	IgnoreSourceErrors bool     `toml:"ignore_source_errors"`
	Collector          []string `toml:"collector"`
	Jobs               int      `toml:"jobs"`
	Cache              bool     `toml:"cache"`
	Markers            Markers  `toml:"markers"`
}

// Markers override the checker profile's watch markers. Empty keeps the profile's.
type Markers struct {
	Rerun    string `toml:"rerun"`
	Complete string `toml:"complete"`
}

// DefaultConfig returns the configuration used when no manifest exists.
func DefaultConfig() Config {
	return Config{
		Checker: "tsc",
		Include: append([]string(nil), DefaultInclude...),
		Exclude: append([]string(nil), DefaultExclude...),
		Cache:   true,
	}
}

// Manifest is a loaded typewatch.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type manifestFile struct {
	Typecheck Config `toml:"typecheck"`
}

// LoadManifest finds and loads the manifest above startDir. ok is false
// when none exists; callers then use DefaultConfig rooted at startDir.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

// LoadConfig parses one manifest. Keys that are not set keep their defaults.
func LoadConfig(path string) (Config, error) {
	file := manifestFile{Typecheck: DefaultConfig()}
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg := file.Typecheck
	if !meta.IsDefined("typecheck") {
		return cfg, nil
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("typecheck", "include") && len(cfg.Include) == 0 {
		return Config{}, fmt.Errorf("%s: %w", path, ErrEmptyInclude)
	}
	if cfg.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: %w", path, ErrBadJobs)
	}
	cfg.Checker = strings.TrimSpace(cfg.Checker)
	if cfg.Checker == "" {
		cfg.Checker = "tsc"
	}
	return cfg, nil
}

// Starter is the manifest written by `typewatch init`.
const Starter = `# typewatch configuration
[typecheck]
checker = "tsc"
# tsconfig = "tsconfig.json"
include = ["**/*.{test,spec}-d.{ts,tsx,mts,cts}"]
exclude = ["**/node_modules/**", "**/dist/**"]
allow_js = false
ignore_source_errors = false
# collector = ["node", "scripts/collect-definitions.mjs"]
jobs = 0
cache = true

# [typecheck.markers]
# rerun = "File change detected"
# complete = "Found \\w+ errors?\\. Watching for"
`

// WriteStarter creates dir/typewatch.toml unless it already exists.
func WriteStarter(dir string) (string, error) {
	path := filepath.Join(dir, ManifestName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return path, fmt.Errorf("%s already exists", path)
		}
		return path, err
	}
	if _, err := f.WriteString(Starter); err != nil {
		_ = f.Close()
		return path, err
	}
	return path, f.Close()
}
