// Package walk discovers candidate source files for C3 to parse: a
// directory walk that skips configured and always-skipped directories
// and yields files with a supported extension.
package walk

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ben-ranford/fenceguard/internal/extract"
)

// AlwaysSkippedDirs are directory names skipped regardless of
// configuration: node_modules holds installed dependencies and lib
// holds build output, neither of which is analyzable source.
var AlwaysSkippedDirs = map[string]bool{
	"node_modules": true,
	"lib":          true,
}

// Options configures a Walker.
type Options struct {
	// SkippedDirs is a list of glob patterns matched against each
	// directory's slash-separated path relative to root.
	SkippedDirs []string
	// Extensions restricts which file extensions are visited. Nil
	// defaults to extract.SupportedExtensions.
	Extensions map[string]bool
}

// Walker walks one repository root with filepath.WalkDir, applying
// the always-skipped set plus any configured glob-based skips.
type Walker struct {
	root string
	opts Options
}

// New builds a Walker rooted at root.
func New(root string, opts Options) *Walker {
	return &Walker{root: root, opts: opts}
}

// Walk visits every candidate file under root in lexical order,
// calling visit with its absolute path. ctx is checked between
// directory entries so a caller can abandon a slow walk early.
func (w *Walker) Walk(ctx context.Context, visit func(path string) error) error {
	extensions := w.opts.Extensions
	if extensions == nil {
		extensions = extract.SupportedExtensions
	}

	return filepath.WalkDir(w.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if entry.IsDir() {
			if path != w.root && (AlwaysSkippedDirs[entry.Name()] || w.matchesSkipGlob(path)) {
				return fs.SkipDir
			}
			return nil
		}

		if !extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		return visit(path)
	})
}

// matchesSkipGlob reports whether path's root-relative, slash-separated
// form matches any configured skip pattern.
func (w *Walker) matchesSkipGlob(path string) bool {
	if len(w.opts.SkippedDirs) == 0 {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	relSlash := filepath.ToSlash(rel)
	for _, pattern := range w.opts.SkippedDirs {
		if ok, _ := doublestar.Match(pattern, relSlash); ok {
			return true
		}
	}
	return false
}
