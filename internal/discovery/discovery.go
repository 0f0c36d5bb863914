// Package discovery finds Python source files for the CLI batch path.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Options configures file discovery behavior.
type Options struct {
	// Patterns are the glob patterns to match inside directories
	// (default: DefaultPatterns()). Supports doublestar patterns.
	Patterns []string

	// ExcludePatterns are glob patterns to exclude from results.
	ExcludePatterns []string
}

// DefaultPatterns returns the default Python source patterns.
func DefaultPatterns() []string {
	return []string{
		"**/*.py",
		"**/*.pyi",
	}
}

// Discover resolves CLI inputs (files, directories, globs) to a sorted,
// deduplicated list of source file paths. Explicit file inputs are kept
// as given; directory contents are returned as absolute paths.
func Discover(inputs []string, opts Options) ([]string, error) {
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		if excluded(path, opts.ExcludePatterns) {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		switch {
		case err == nil && info.IsDir():
			if err := discoverDir(input, patterns, add); err != nil {
				return nil, err
			}
		case err == nil:
			add(input)
		default:
			// Not a path on disk; try it as a glob relative to cwd.
			matches, globErr := doublestar.FilepathGlob(input)
			if globErr != nil || len(matches) == 0 {
				return nil, fmt.Errorf("no files match %q", input)
			}
			for _, m := range matches {
				add(m)
			}
		}
	}

	sort.Strings(out)
	return out, nil
}

func discoverDir(dir string, patterns []string, add func(string)) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	root := os.DirFS(absDir)
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(root, pattern)
		if err != nil {
			return fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			add(filepath.Join(absDir, filepath.FromSlash(m)))
		}
	}
	return nil
}

func excluded(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
