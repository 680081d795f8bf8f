// Package reportout builds the two structured report documents —
// UnusedFinderReport and FenceEvaluationReport — from graph.Result and
// internal/fence's per-file evaluation results, and serializes them as
// plain JSON or as SARIF for CI annotation.
package reportout

import (
	"sort"

	"github.com/ben-ranford/fenceguard/internal/allowlist"
	"github.com/ben-ranford/fenceguard/internal/fence"
	"github.com/ben-ranford/fenceguard/internal/graph"
	"github.com/ben-ranford/fenceguard/internal/symbol"
)

// SchemaVersion identifies the report document shape.
const SchemaVersion = "1.0.0"

// UnusedFinderReport lists dead files, each file's remaining unused
// exports, and files reachable only from tests, after allowlist
// filtering.
type UnusedFinderReport struct {
	SchemaVersion     string                        `json:"schemaVersion"`
	UnusedFiles       []string                      `json:"unusedFiles"`
	UnusedFilesItems  map[string][]UnusedItemReport `json:"unusedFilesItems,omitempty"`
	TestOnlyUsedFiles []string                      `json:"testOnlyUsedFiles,omitempty"`
	Warnings          []string                      `json:"warnings,omitempty"`
}

// UnusedItemReport is one remaining unused export, identified by its
// encoded Symbol id so the document round-trips without carrying the
// Symbol's internal Kind/Name split.
type UnusedItemReport struct {
	ID           string      `json:"id"`
	Span         symbol.Span `json:"span"`
	IsTypeOnly   bool        `json:"isTypeOnly"`
	TestOnlyUsed bool        `json:"testOnlyUsed"`
	// AllowUnused carries the @ALLOW-UNUSED-EXPORT marker through
	// faithfully; whether to hide marked items is caller policy.
	AllowUnused bool `json:"allowUnused"`
}

// BuildUnusedFinderReport filters result against al and shapes what
// remains into the report document. relativeTo converts an absolute
// graph path into the repo-relative, slash-separated form the allowlist
// matches against and the report serializes.
func BuildUnusedFinderReport(result *graph.Result, al *allowlist.Allowlist, relativeTo func(path string) string) UnusedFinderReport {
	if al == nil {
		al = allowlist.Empty()
	}

	relativize := func(paths []string) []string {
		out := make([]string, 0, len(paths))
		for _, p := range paths {
			out = append(out, relativeTo(p))
		}
		return out
	}
	unusedFiles := relativize(al.FilterFiles(result.UnusedFiles, relativeTo))
	testOnlyFiles := relativize(al.FilterFiles(result.TestOnlyUsedFiles, relativeTo))
	filteredItems := allowlist.FilterItems(al, result.UnusedItems, relativeTo)

	report := UnusedFinderReport{
		SchemaVersion:     SchemaVersion,
		UnusedFiles:       nonNilStrings(unusedFiles),
		TestOnlyUsedFiles: nonNilStrings(testOnlyFiles),
	}
	if len(filteredItems) > 0 {
		report.UnusedFilesItems = make(map[string][]UnusedItemReport, len(filteredItems))
		for path, unused := range filteredItems {
			items := make([]UnusedItemReport, 0, len(unused))
			for _, item := range unused {
				items = append(items, UnusedItemReport{
					ID:           item.Symbol.Encode(),
					Span:         item.Meta.Span,
					IsTypeOnly:   item.Meta.IsTypeOnly,
					TestOnlyUsed: item.TestOnlyUsed,
					AllowUnused:  item.Meta.AllowUnused,
				})
			}
			report.UnusedFilesItems[relativeTo(path)] = items
		}
	}
	return report
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// FenceEvaluationReport aggregates violations and unresolved imports
// across every file evaluated in a run, rendered with a human-readable
// Message per entry.
type FenceEvaluationReport struct {
	SchemaVersion   string                   `json:"schemaVersion"`
	Violations      []ViolationReport        `json:"violations"`
	UnresolvedFiles []UnresolvedImportReport `json:"unresolvedFiles,omitempty"`
}

// ClauseName renders a fence.ClauseKind as its report-facing name.
func ClauseName(kind fence.ClauseKind) string {
	switch kind {
	case fence.ClauseExportRule:
		return "ExportRule"
	case fence.ClauseDependencyRule:
		return "DependencyRule"
	case fence.ClauseImportAllowList:
		return "ImportAllowList"
	default:
		return "Unknown"
	}
}

// ViolationReport is one fence.Violation rendered for the report
// document.
type ViolationReport struct {
	File            string `json:"file"`
	Fence           string `json:"fence"`
	Clause          string `json:"clause"`
	ImportSpecifier string `json:"importSpecifier"`
	Message         string `json:"message"`
}

// UnresolvedImportReport is one fence.UnresolvedImport rendered for the
// report document.
type UnresolvedImportReport struct {
	File            string `json:"file"`
	ImportSpecifier string `json:"importSpecifier"`
	Reason          string `json:"reason"`
}

// BuildFenceEvaluationReport flattens one EvaluationResult per evaluated
// file into a single sorted report document.
func BuildFenceEvaluationReport(results []*fence.EvaluationResult) FenceEvaluationReport {
	report := FenceEvaluationReport{SchemaVersion: SchemaVersion}
	for _, result := range results {
		if result == nil {
			continue
		}
		for _, v := range result.Violations {
			report.Violations = append(report.Violations, renderViolation(v))
		}
		for _, u := range result.UnresolvedFiles {
			report.UnresolvedFiles = append(report.UnresolvedFiles, UnresolvedImportReport{
				File:            u.SourceFilePath,
				ImportSpecifier: u.ImportSpecifier,
				Reason:          u.Reason,
			})
		}
	}

	sort.Slice(report.Violations, func(i, j int) bool {
		left, right := report.Violations[i], report.Violations[j]
		if left.File != right.File {
			return left.File < right.File
		}
		return left.ImportSpecifier < right.ImportSpecifier
	})
	sort.Slice(report.UnresolvedFiles, func(i, j int) bool {
		left, right := report.UnresolvedFiles[i], report.UnresolvedFiles[j]
		if left.File != right.File {
			return left.File < right.File
		}
		return left.ImportSpecifier < right.ImportSpecifier
	})
	if report.Violations == nil {
		report.Violations = []ViolationReport{}
	}
	return report
}

func renderViolation(v fence.Violation) ViolationReport {
	return ViolationReport{
		File:            v.ViolatingFilePath,
		Fence:           v.ViolatingFence.Path,
		Clause:          ClauseName(v.Clause.Kind),
		ImportSpecifier: v.ImportSpecifier,
		Message:         violationMessage(v),
	}
}
