// Package config resolves fenceguard's tunables — target environment,
// export conditions, extensions, alias map, symlink handling, the
// node_modules short-circuit, entry packages, and the walker/report
// skip lists — by layering an Overrides struct parsed from an optional
// on-disk file onto a Defaults() baseline.
package config

import "fmt"

// Values is the fully-resolved configuration a run operates under.
type Values struct {
	// TargetEnv is "node" or "browser".
	TargetEnv string
	// ExportConditions is the ordered package.json "exports" condition
	// list, default ["import", "require", "default"].
	ExportConditions []string
	// Extensions is the ordered resolve-as-file search order, default
	// ["ts", "tsx", "js", "jsx", "json", "node"].
	Extensions []string
	// AssetExtensions short-circuits a specifier straight to a resource
	// file (C1 step 1): "css", "scss", "svg", "png", "gif", "json",
	// "graphql" by default.
	AssetExtensions []string
	// Alias is the specifier substitution map (C1 step 3).
	Alias map[string]string
	// PreserveSymlinks, when false, canonicalizes resolved paths.
	PreserveSymlinks bool
	// IgnoreNodeModules disables C1 step 7 entirely.
	IgnoreNodeModules bool
	// EntryPackages is the set of package names whose files seed the
	// graph traversal.
	EntryPackages []string
	// SkippedDirs is a list of glob patterns the walker never descends
	// into, in addition to the always-skipped node_modules and lib.
	SkippedDirs []string
	// SkippedItems is a list of regex patterns; unused exports whose
	// display name matches one are filtered out of the unused report.
	// Import names are not filtered.
	SkippedItems []string
	// TestFilePatterns is a list of glob patterns identifying test
	// files, matched against repo-relative paths. These seed the
	// second BFS phase of the reachability engine.
	TestFilePatterns []string
}

// Overrides is a partially-specified Values: every field absent from a
// config file stays nil (or, for the two booleans, unset) so Apply can
// tell "not mentioned" apart from "explicitly set to the zero value".
type Overrides struct {
	TargetEnv         *string
	ExportConditions  []string
	Extensions        []string
	AssetExtensions   []string
	Alias             map[string]string
	PreserveSymlinks  *bool
	IgnoreNodeModules *bool
	EntryPackages     []string
	SkippedDirs       []string
	SkippedItems      []string
	TestFilePatterns  []string
}

// DefaultExportConditions is the condition order consulted against
// package.json "exports" maps absent an override.
var DefaultExportConditions = []string{"import", "require", "default"}

// DefaultExtensions is the resolve-as-file search order absent an
// override.
var DefaultExtensions = []string{"ts", "tsx", "js", "jsx", "json", "node"}

// DefaultAssetExtensions is the resource short-circuit set absent an
// override.
var DefaultAssetExtensions = []string{"css", "scss", "svg", "png", "gif", "json", "graphql"}

// DefaultTestFilePatterns is the glob set matched against test files
// absent an override.
var DefaultTestFilePatterns = []string{"**/*.test.*", "**/*.spec.*", "**/__tests__/**"}

// Defaults returns the baseline Values used when no config
// file is present or a field goes unmentioned.
func Defaults() Values {
	return Values{
		TargetEnv:        "node",
		ExportConditions: append([]string(nil), DefaultExportConditions...),
		Extensions:       append([]string(nil), DefaultExtensions...),
		AssetExtensions:  append([]string(nil), DefaultAssetExtensions...),
		TestFilePatterns: append([]string(nil), DefaultTestFilePatterns...),
	}
}

// Apply layers o onto base, returning a new Values. Fields left nil in o
// fall through to base unchanged.
func (o Overrides) Apply(base Values) Values {
	resolved := base
	if o.TargetEnv != nil {
		resolved.TargetEnv = *o.TargetEnv
	}
	if o.ExportConditions != nil {
		resolved.ExportConditions = o.ExportConditions
	}
	if o.Extensions != nil {
		resolved.Extensions = o.Extensions
	}
	if o.AssetExtensions != nil {
		resolved.AssetExtensions = o.AssetExtensions
	}
	if o.Alias != nil {
		resolved.Alias = o.Alias
	}
	if o.PreserveSymlinks != nil {
		resolved.PreserveSymlinks = *o.PreserveSymlinks
	}
	if o.IgnoreNodeModules != nil {
		resolved.IgnoreNodeModules = *o.IgnoreNodeModules
	}
	if o.EntryPackages != nil {
		resolved.EntryPackages = o.EntryPackages
	}
	if o.SkippedDirs != nil {
		resolved.SkippedDirs = o.SkippedDirs
	}
	if o.SkippedItems != nil {
		resolved.SkippedItems = o.SkippedItems
	}
	if o.TestFilePatterns != nil {
		resolved.TestFilePatterns = o.TestFilePatterns
	}
	return resolved
}

// Validate reports whether v is internally consistent: a known
// TargetEnv and well-formed SkippedItems regexes.
func (v Values) Validate() error {
	if v.TargetEnv != "node" && v.TargetEnv != "browser" {
		return fmt.Errorf("invalid target_env %q: must be \"node\" or \"browser\"", v.TargetEnv)
	}
	if _, err := compileAll(v.SkippedItems); err != nil {
		return err
	}
	return nil
}

// Validate checks only the fields o actually sets, so a config file
// that never mentions target_env doesn't need to know its default.
func (o Overrides) Validate() error {
	if o.TargetEnv != nil && *o.TargetEnv != "node" && *o.TargetEnv != "browser" {
		return fmt.Errorf("invalid target_env %q: must be \"node\" or \"browser\"", *o.TargetEnv)
	}
	if _, err := compileAll(o.SkippedItems); err != nil {
		return err
	}
	return nil
}
