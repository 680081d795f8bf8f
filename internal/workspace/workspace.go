// Package workspace resolves the repository root a run operates against.
package workspace

import "path/filepath"

// NormalizeRepoPath turns a possibly-empty, possibly-relative repo path
// argument into a clean absolute path. An empty path means "here".
func NormalizeRepoPath(path string) (string, error) {
	if path == "" {
		path = "."
	}
	return filepath.Abs(path)
}
