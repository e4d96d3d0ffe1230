// Package tsconfig prepares the temporary checker configuration a session
// runs against and removes it again on teardown.
package tsconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	// DefaultName is the config file looked up when none is given.
	DefaultName = "tsconfig.json"
	// TempName is written next to the original config.
	TempName = "tsconfig.typewatch-temp.json"
)

var ErrNotFound = errors.New("no tsconfig.json found")

// Options controls the generated config.
type Options struct {
	// Path of the base config; empty means walk up from root for DefaultName.
	Path string
	// Files are the requested files (absolute) the checker must include.
	Files []string
	// BuildInfoDir holds the incremental build info; empty means os.TempDir.
	BuildInfoDir string
}

// Temp is a generated config file. Remove is idempotent and nil-safe.
type Temp struct {
	Path     string
	Original string

	once sync.Once
	err  error
}

// Remove deletes the generated file.
func (t *Temp) Remove() error {
	if t == nil || t.Path == "" {
		return nil
	}
	t.once.Do(func() {
		if err := os.Remove(t.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			t.err = fmt.Errorf("remove %s: %w", t.Path, err)
		}
	})
	return t.err
}

// Locator finds the base config and writes the temporary one.
type Locator struct{}

// Find returns the config to extend: opts.Path resolved against root, or the
// nearest DefaultName walking up from root.
func Find(root, path string) (string, error) {
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
		}
		return path, nil
	}
	dir, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root: %w", err)
	}
	for {
		candidate := filepath.Join(dir, DefaultName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w in %s or any parent directory", ErrNotFound, root)
}

type tempConfig struct {
	Extends         string          `json:"extends"`
	CompilerOptions compilerOptions `json:"compilerOptions"`
	Include         []string        `json:"include"`
}

type compilerOptions struct {
	NoEmit              bool   `json:"noEmit"`
	EmitDeclarationOnly bool   `json:"emitDeclarationOnly"`
	Incremental         bool   `json:"incremental"`
	TSBuildInfoFile     string `json:"tsBuildInfoFile"`
}

// Locate implements the session's config collaborator.
func (Locator) Locate(root string, opts Options) (*Temp, error) {
	original, err := Find(root, opts.Path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(original)

	infoDir := opts.BuildInfoDir
	if infoDir == "" {
		infoDir = os.TempDir()
	}
	include := make([]string, 0, len(opts.Files))
	for _, f := range opts.Files {
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			rel = f
		}
		include = append(include, filepath.ToSlash(rel))
	}

	cfg := tempConfig{
		Extends: "./" + filepath.Base(original),
		CompilerOptions: compilerOptions{
			NoEmit:          true,
			Incremental:     true,
			TSBuildInfoFile: filepath.Join(infoDir, "tsconfig.typewatch.tsbuildinfo"),
		},
		Include: include,
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, TempName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return &Temp{Path: path, Original: original}, nil
}
