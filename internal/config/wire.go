package config

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ben-ranford/fenceguard/internal/resolve"
	"github.com/ben-ranford/fenceguard/internal/walk"
)

// ResolveOptions builds the resolve.Options this configuration implies
// for a run rooted at rootDir.
func (v Values) ResolveOptions(rootDir string) resolve.Options {
	return resolve.Options{
		RootDir:           rootDir,
		TargetEnv:         v.TargetEnv,
		ExportConditions:  v.ExportConditions,
		Extensions:        v.Extensions,
		AssetExtensions:   v.AssetExtensions,
		Alias:             v.Alias,
		IgnoreNodeModules: v.IgnoreNodeModules,
		PreserveSymlinks:  v.PreserveSymlinks,
	}
}

// WalkOptions builds the walk.Options this configuration implies. The
// walker always skips node_modules and lib on top of whatever this
// returns.
func (v Values) WalkOptions() walk.Options {
	return walk.Options{
		SkippedDirs: v.SkippedDirs,
	}
}

// EntryPackageSet returns EntryPackages as a membership set, for
// graph.Graph.EntryPackageSeeds.
func (v Values) EntryPackageSet() map[string]bool {
	if len(v.EntryPackages) == 0 {
		return nil
	}
	set := make(map[string]bool, len(v.EntryPackages))
	for _, name := range v.EntryPackages {
		set[name] = true
	}
	return set
}

// CompiledSkippedItems compiles SkippedItems once, for repeated
// unused-export name filtering during report generation.
func (v Values) CompiledSkippedItems() ([]*regexp.Regexp, error) {
	return compileAll(v.SkippedItems)
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("config: invalid skipped_items pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// MatchesSkippedItem reports whether name matches any compiled
// skipped_items pattern.
func MatchesSkippedItem(compiled []*regexp.Regexp, name string) bool {
	for _, re := range compiled {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// TestFileMatcher returns a predicate matching TestFilePatterns against
// paths relative to rootDir, suitable as graph.Graph.TestFileSeeds'
// TestMatcher.
func (v Values) TestFileMatcher(rootDir string) func(path string) bool {
	patterns := append([]string(nil), v.TestFilePatterns...)
	return func(path string) bool {
		rel, err := filepath.Rel(rootDir, path)
		if err != nil {
			return false
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				return true
			}
		}
		return false
	}
}
