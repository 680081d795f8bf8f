// Package allowlist filters unused-file and unused-item reports
// against a glob allowlist, one pattern per line, applied post-hoc to
// the reachability engine's output.
package allowlist

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Allowlist is a set of glob patterns matched against repo-relative,
// slash-separated paths.
type Allowlist struct {
	patterns []string
}

// Parse reads one glob pattern per line. Blank lines and lines starting
// with "#" are ignored.
func Parse(r io.Reader) (*Allowlist, error) {
	scanner := bufio.NewScanner(r)
	al := &Allowlist{}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		al.patterns = append(al.patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return al, nil
}

// Empty returns an Allowlist with no patterns; every Matches call
// returns false.
func Empty() *Allowlist { return &Allowlist{} }

// Matches reports whether relPath (a slash-separated path relative to
// the repository root) matches any pattern in the allowlist.
func (al *Allowlist) Matches(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range al.patterns {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

// FilterFiles returns paths with every allowlisted entry removed.
func (al *Allowlist) FilterFiles(paths []string, relativeTo func(path string) string) []string {
	if len(al.patterns) == 0 {
		return paths
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !al.Matches(relativeTo(p)) {
			out = append(out, p)
		}
	}
	return out
}

// FilterItems returns items with every key whose relative path matches
// the allowlist removed. The allowlist filters unused items by
// the same per-file glob match as unused_files, since patterns match
// paths, not individual export names.
func FilterItems[T any](al *Allowlist, items map[string]T, relativeTo func(path string) string) map[string]T {
	if len(al.patterns) == 0 {
		return items
	}
	out := make(map[string]T, len(items))
	for path, v := range items {
		if al.Matches(relativeTo(path)) {
			continue
		}
		out[path] = v
	}
	return out
}
