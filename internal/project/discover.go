package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover returns the absolute, sorted paths of the files under root that
// match any include pattern and no exclude pattern. Patterns use doublestar
// syntax relative to root with forward slashes.
func Discover(root string, include, exclude []string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	for _, p := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}

	excluded := func(rel string) bool {
		for _, p := range exclude {
			if ok, _ := doublestar.Match(p, rel); ok {
				return true
			}
		}
		return false
	}

	seen := make(map[string]struct{})
	var out []string
	fsys := os.DirFS(abs)
	for _, pattern := range include {
		err := doublestar.GlobWalk(fsys, pattern, func(rel string, d fs.DirEntry) error {
			if d.IsDir() || excluded(rel) {
				return nil
			}
			full := filepath.Join(abs, filepath.FromSlash(rel))
			if _, dup := seen[full]; dup {
				return nil
			}
			seen[full] = struct{}{}
			out = append(out, full)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Filter keeps the files whose path relative to root matches one of the
// patterns. Used for CLI path arguments.
func Filter(root string, files []string, patterns []string) []string {
	if len(patterns) == 0 {
		return files
	}
	var out []string
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, rel); ok {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
