// Package tsconfigpaths models the compilerOptions.baseUrl/paths subset
// of tsconfig.json the module resolver consults when a bare specifier
// doesn't match any configured import alias.
package tsconfigpaths

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
)

// ErrAmbiguousTarget is returned when a paths entry lists anything other
// than exactly one target: fatal configuration, not a per-import
// resolution failure.
var ErrAmbiguousTarget = errors.New("tsconfigpaths: paths entry must have exactly one target")

// rawConfig mirrors the on-disk shape of the fields we read.
type rawConfig struct {
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// entry is one parsed "paths" mapping, already split into its literal
// prefix and (for star patterns) its "/*"-suffix marker.
type entry struct {
	pattern string // original key, e.g. "glob/lib/*" or "@app/utils"
	prefix  string // text before the "*", or the whole literal key
	isStar  bool
	target  string // single target, e.g. "packages/glob/src/*"
}

// Config is a parsed baseUrl/paths pair, ready to match specifiers.
type Config struct {
	baseURL string
	entries []entry
}

// Parse reads tsconfig.json bytes and builds a Config. A "paths" entry
// with zero or more than one target is a fatal configuration error.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("tsconfigpaths: parse tsconfig.json: %w", err)
	}

	cfg := &Config{baseURL: raw.CompilerOptions.BaseURL}
	for pattern, targets := range raw.CompilerOptions.Paths {
		if len(targets) != 1 {
			return nil, fmt.Errorf("%w: %q has %d targets", ErrAmbiguousTarget, pattern, len(targets))
		}
		e := entry{pattern: pattern, target: targets[0]}
		if idx := strings.IndexByte(pattern, '*'); idx >= 0 {
			e.isStar = true
			e.prefix = pattern[:idx]
		} else {
			e.prefix = pattern
		}
		cfg.entries = append(cfg.entries, e)
	}

	// Longest-prefix-first, so a more specific mapping always wins over
	// a shorter one that would also match.
	sort.SliceStable(cfg.entries, func(i, j int) bool {
		return len(cfg.entries[i].prefix) > len(cfg.entries[j].prefix)
	})

	return cfg, nil
}

// BaseURL returns the configured baseUrl, or "" if unset.
func (c *Config) BaseURL() string {
	return c.baseURL
}

// HasPaths reports whether any "paths" entries were configured.
func (c *Config) HasPaths() bool {
	return len(c.entries) > 0
}

// Resolve walks specifier prefix-by-prefix from longest to shortest:
// for each configured pattern, check both the literal
// form and the star form (pattern ending in "/*"). A literal hit uses
// the mapped target verbatim; a star hit replaces "*" in the target
// with whatever matched the specifier's star position. The result is
// always cleaned (collapsing "./" and "..") before being returned.
func (c *Config) Resolve(specifier string) (string, bool) {
	for _, e := range c.entries {
		if !e.isStar {
			if specifier != e.pattern {
				continue
			}
			return cleanJoin(e.target), true
		}
		if !strings.HasPrefix(specifier, e.prefix) {
			continue
		}
		rest := strings.TrimPrefix(specifier, e.prefix)
		if !strings.Contains(e.target, "*") {
			return cleanJoin(e.target), true
		}
		return cleanJoin(strings.Replace(e.target, "*", rest, 1)), true
	}
	return "", false
}

// WithBaseURL prefixes target with the configured baseUrl, when set, so
// callers can combine a paths-relative result with the project root.
func (c *Config) WithBaseURL(target string) string {
	if c.baseURL == "" {
		return target
	}
	return cleanJoin(path.Join(c.baseURL, target))
}

// cleanJoin collapses "./" and ".." segments. Segments are processed in
// order and ".." removes whichever segment precedes it, "." included, so
// "sub/./../the/one" cleans to "sub/the/one". Cleaning is idempotent.
func cleanJoin(p string) string {
	segments := strings.Split(strings.TrimPrefix(p, "./"), "/")
	stack := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "":
			continue
		case "..":
			if n := len(stack); n > 0 && stack[n-1] != ".." {
				stack = stack[:n-1]
				continue
			}
			stack = append(stack, seg)
		default:
			stack = append(stack, seg)
		}
	}
	kept := stack[:0]
	for _, seg := range stack {
		if seg != "." {
			kept = append(kept, seg)
		}
	}
	if len(kept) == 0 {
		return "."
	}
	return strings.Join(kept, "/")
}
