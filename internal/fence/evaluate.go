package fence

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ben-ranford/fenceguard/internal/resolve"
	"github.com/ben-ranford/fenceguard/internal/symbol"
)

// ClauseKind names which part of a fence a Violation broke, mirroring
// good_fences' ViolatedFenceClause enum: ExportRule, DependencyRule,
// or ImportAllowList.
type ClauseKind int

const (
	ClauseExportRule ClauseKind = iota
	ClauseDependencyRule
	ClauseImportAllowList
)

// ViolatedClause identifies the broken clause and, where the violation
// was a narrower tag mismatch rather than a missing allow-list entry
// entirely, the specific rule that almost allowed it.
type ViolatedClause struct {
	Kind           ClauseKind
	ExportRule     *ExportRule
	DependencyRule *DependencyRule
}

// Violation is one import that crossed a fence boundary it wasn't
// permitted to cross.
type Violation struct {
	ViolatingFilePath string
	ViolatingFence    *Fence
	Clause            ViolatedClause
	ImportSpecifier   string
}

// UnresolvedImport records a specifier that evaluation could not resolve
// to a project-local file, node dependency, or resource, distinct from a
// violation: it means evaluation could not determine whether a fence was
// crossed at all.
type UnresolvedImport struct {
	SourceFilePath  string
	ImportSpecifier string
	Reason          string
}

// EvaluationResult is one file's fence-evaluation outcome.
type EvaluationResult struct {
	Violations      []Violation
	UnresolvedFiles []UnresolvedImport
}

// Evaluate checks every import in raw against the fences that govern its
// file and the fences that govern each import's target, the way
// good_fences' evaluate_fences walks one source file's imports.
func Evaluate(collection *Collection, resolver *resolve.Resolver, conditions []string, raw *symbol.RawImportExport) (*EvaluationResult, error) {
	result := &EvaluationResult{}

	sourceFences, err := collection.FencesForPath(raw.Path)
	if err != nil {
		return nil, err
	}
	sourceTags, err := collection.TagsForPath(raw.Path)
	if err != nil {
		return nil, err
	}
	sourceFenceSet := fenceSet(sourceFences)

	for _, specifier := range importSpecifiers(raw) {
		res, err := resolver.Resolve(raw.Path, specifier, conditions)
		if err != nil {
			result.UnresolvedFiles = append(result.UnresolvedFiles, UnresolvedImport{
				SourceFilePath:  raw.Path,
				ImportSpecifier: specifier,
				Reason:          err.Error(),
			})
			continue
		}

		switch res.Kind {
		case resolve.ProjectLocal:
			violations, err := evaluateProjectLocalImport(collection, raw.Path, specifier, sourceFences, sourceFenceSet, sourceTags, res.Path)
			if err != nil {
				return nil, err
			}
			result.Violations = append(result.Violations, violations...)
		case resolve.NodeModules:
			result.Violations = append(result.Violations, evaluateDependencyImport(sourceFences, sourceTags, raw.Path, specifier, res.Name)...)
		case resolve.ResourceFile:
			// Fences never restrict resource imports (stylesheets,
			// images, and the like).
		}
	}

	sort.Slice(result.Violations, func(i, j int) bool {
		a, b := result.Violations[i], result.Violations[j]
		if a.ImportSpecifier != b.ImportSpecifier {
			return a.ImportSpecifier < b.ImportSpecifier
		}
		return a.ViolatingFence.Path < b.ViolatingFence.Path
	})
	return result, nil
}

// importSpecifiers gathers every distinct specifier a file references,
// regardless of which declaration form introduced it: fences govern
// crossing a boundary, not the syntax used to cross it.
func importSpecifiers(raw *symbol.RawImportExport) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(specifier string) {
		if !seen[specifier] {
			seen[specifier] = true
			out = append(out, specifier)
		}
	}
	for specifier := range raw.ImportedSymbols {
		add(specifier)
	}
	for specifier := range raw.RequirePaths {
		add(specifier)
	}
	for specifier := range raw.DynamicImports {
		add(specifier)
	}
	for specifier := range raw.ExecutedPaths {
		add(specifier)
	}
	for specifier := range raw.ReexportFrom {
		add(specifier)
	}
	sort.Strings(out)
	return out
}

func fenceSet(fences []*Fence) map[string]*Fence {
	set := make(map[string]*Fence, len(fences))
	for _, f := range fences {
		set[f.Path] = f
	}
	return set
}

// exclusive returns the fences in a that are not present in b, keyed by
// Fence.Path. Fences govern only the files between their boundaries, so
// a fence that applies to both an importer and its target never filters
// that particular import.
func exclusive(a []*Fence, b map[string]*Fence) []*Fence {
	var out []*Fence
	for _, f := range a {
		if _, ok := b[f.Path]; !ok {
			out = append(out, f)
		}
	}
	return out
}

func evaluateProjectLocalImport(
	collection *Collection,
	sourcePath, specifier string,
	sourceFences []*Fence,
	sourceFenceSet map[string]*Fence,
	sourceTags map[string]bool,
	targetPath string,
) ([]Violation, error) {
	targetFences, err := collection.FencesForPath(targetPath)
	if err != nil {
		return nil, err
	}
	targetTags, err := collection.TagsForPath(targetPath)
	if err != nil {
		return nil, err
	}
	targetFenceSet := fenceSet(targetFences)

	var violations []Violation

	// Source-side: does any fence exclusive to the importer restrict
	// which tags it may consume?
	for _, sourceFence := range exclusive(sourceFences, targetFenceSet) {
		if !sourceFence.HasImports() {
			continue
		}
		allowed := tagsIntersectList(targetTags, sourceFence.Imports)
		if !allowed {
			violations = append(violations, Violation{
				ViolatingFilePath: sourcePath,
				ViolatingFence:    sourceFence,
				Clause:            ViolatedClause{Kind: ClauseImportAllowList},
				ImportSpecifier:   specifier,
			})
		}
	}

	// Destination-side: does any fence exclusive to the target restrict
	// who may import from it?
	for _, targetFence := range exclusive(targetFences, sourceFenceSet) {
		if !targetFence.HasExports() {
			continue
		}
		var matching []*ExportRule
		for i := range targetFence.Exports {
			rule := &targetFence.Exports[i]
			if exportRuleAppliesTo(targetFence, rule, targetPath) {
				matching = append(matching, rule)
			}
		}
		if len(matching) == 0 {
			violations = append(violations, Violation{
				ViolatingFilePath: sourcePath,
				ViolatingFence:    targetFence,
				Clause:            ViolatedClause{Kind: ClauseExportRule},
				ImportSpecifier:   specifier,
			})
			continue
		}

		anyAllows := false
		for _, rule := range matching {
			if isImporterAllowed(rule.AccessibleTo, sourceTags) {
				anyAllows = true
				break
			}
		}
		if !anyAllows {
			for _, rule := range matching {
				violations = append(violations, Violation{
					ViolatingFilePath: sourcePath,
					ViolatingFence:    targetFence,
					Clause:            ViolatedClause{Kind: ClauseExportRule, ExportRule: rule},
					ImportSpecifier:   specifier,
				})
			}
		}
	}

	return violations, nil
}

func evaluateDependencyImport(sourceFences []*Fence, sourceTags map[string]bool, sourcePath, specifier, dependency string) []Violation {
	var violations []Violation
	for _, sourceFence := range sourceFences {
		if !sourceFence.HasDependencies() {
			continue
		}
		var matching []*DependencyRule
		for i := range sourceFence.Dependencies {
			rule := &sourceFence.Dependencies[i]
			if dependencyMatches(rule.Dependency, dependency) {
				matching = append(matching, rule)
			}
		}
		if len(matching) == 0 {
			violations = append(violations, Violation{
				ViolatingFilePath: sourcePath,
				ViolatingFence:    sourceFence,
				Clause:            ViolatedClause{Kind: ClauseDependencyRule},
				ImportSpecifier:   specifier,
			})
			continue
		}

		anyAllows := false
		for _, rule := range matching {
			if isImporterAllowed(rule.AccessibleTo, sourceTags) {
				anyAllows = true
				break
			}
		}
		if !anyAllows {
			for _, rule := range matching {
				violations = append(violations, Violation{
					ViolatingFilePath: sourcePath,
					ViolatingFence:    sourceFence,
					Clause:            ViolatedClause{Kind: ClauseDependencyRule, DependencyRule: rule},
					ImportSpecifier:   specifier,
				})
			}
		}
	}
	return violations
}

// tagsIntersectList reports whether any of tags appears in allowed. An
// empty tags set never intersects, so files with no tags never satisfy an
// imports allow list, matching good_fences' vacuous-all()-is-true rule.
func tagsIntersectList(tags map[string]bool, allowed []string) bool {
	for _, tag := range allowed {
		if tags[tag] {
			return true
		}
	}
	return false
}

func isImporterAllowed(accessibleTo AccessibleTo, sourceTags map[string]bool) bool {
	for _, tag := range accessibleTo {
		if tag == "*" || sourceTags[tag] {
			return true
		}
	}
	return false
}

func dependencyMatches(pattern, dependency string) bool {
	if pattern == dependency {
		return true
	}
	ok, _ := doublestar.Match(pattern, dependency)
	return ok
}

// exportRuleAppliesTo reports whether rule.Modules, resolved relative to
// the fence's own directory, matches targetPath (with or without its
// extension, since good_fences' glob matching is extension-agnostic).
func exportRuleAppliesTo(f *Fence, rule *ExportRule, targetPath string) bool {
	pattern := filepath.ToSlash(filepath.Join(f.Dir, rule.Modules))
	target := filepath.ToSlash(targetPath)
	if ok, _ := doublestar.Match(pattern, target); ok {
		return true
	}
	ok, _ := doublestar.Match(pattern, noExt(target))
	return ok
}

func noExt(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return path
	}
	return strings.TrimSuffix(path, ext)
}
