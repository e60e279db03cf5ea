package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/constraintsim/source"
)

// ResolveFiles expands patterns to concrete facility files.
//
//   - "site.json" → ["site.json"]
//   - "./sites" → every supported file directly inside ./sites
//   - "./sites/**/*.yaml" → every matching file in the tree
//
// Results keep order of first appearance without duplicates. A pattern that
// matches no file is an error. A nil registry uses source.DefaultRegistry.
func ResolveFiles(patterns []string, sources *source.Registry) ([]string, error) {
	if sources == nil {
		sources = source.DefaultRegistry
	}

	var resolved []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		paths, err := resolvePattern(pattern, sources)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}

		for _, p := range paths {
			p = filepath.Clean(p)
			if !seen[p] {
				seen[p] = true
				resolved = append(resolved, p)
			}
		}
	}

	return resolved, nil
}

func resolvePattern(pattern string, sources *source.Registry) ([]string, error) {
	if !containsGlob(pattern) {
		info, err := os.Stat(pattern)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return []string{pattern}, nil
		}
		return supportedFiles(pattern, sources)
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue // vanished between glob and stat
		}
		if info.Mode().IsRegular() {
			files = append(files, match)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	return files, nil
}

// supportedFiles lists the decodable files directly inside dir, sorted.
func supportedFiles(dir string, sources *source.Registry) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, de := range dirEntries {
		if !de.Type().IsRegular() || !sources.Supports(de.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, de.Name()))
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no facility files in directory: %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
