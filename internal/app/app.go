// Package app wires a parsed Request into the resolver/extractor/graph
// pipeline and produces a formatted report.
package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ben-ranford/fenceguard/internal/allowlist"
	"github.com/ben-ranford/fenceguard/internal/config"
	"github.com/ben-ranford/fenceguard/internal/fence"
	"github.com/ben-ranford/fenceguard/internal/graph"
	"github.com/ben-ranford/fenceguard/internal/reportout"
	"github.com/ben-ranford/fenceguard/internal/resolve"
	"github.com/ben-ranford/fenceguard/internal/safeio"
	"github.com/ben-ranford/fenceguard/internal/workspace"
)

// ErrUnknownMode is returned when a Request carries a Mode Execute does
// not recognize.
var ErrUnknownMode = errors.New("unknown mode")

// ErrViolationsFound is returned by ModeCheck, together with the
// formatted report, when the report holds at least one violation, so the
// run can be treated as a failure, e.g. for CI exit codes.
var ErrViolationsFound = errors.New("fence violations found")

// App holds an output writer and an input reader, which neither mode
// reads or writes (a Request's allowlist file is read from disk). It
// carries no other state: every run rebuilds its own resolver, walker,
// and graph from scratch.
type App struct {
	Out io.Writer
	In  io.Reader
}

// New returns an App. out/in are currently unused by either mode but
// are threaded through so a future interactive mode has somewhere to
// attach.
func New(out io.Writer, in io.Reader) *App {
	return &App{Out: out, In: in}
}

// Execute dispatches req to the mode-specific handler and returns the
// formatted report text.
func (a *App) Execute(ctx context.Context, req Request) (string, error) {
	switch req.Mode {
	case ModeCheck:
		return a.executeCheck(ctx, req)
	case ModeUnused:
		return a.executeUnused(ctx, req)
	default:
		return "", ErrUnknownMode
	}
}

func (a *App) executeCheck(ctx context.Context, req Request) (string, error) {
	repoRoot, values, err := a.prepare(req)
	if err != nil {
		return "", err
	}

	p, err := buildPipeline(ctx, repoRoot, values)
	if err != nil {
		return "", err
	}

	collection := fence.NewCollection(resolve.OSFileSystem{}, repoRoot)
	results := make([]*fence.EvaluationResult, 0, len(p.rawFiles))
	for _, raw := range p.rawFiles {
		result, evalErr := fence.Evaluate(collection, p.resolver, values.ExportConditions, raw)
		if evalErr != nil {
			return "", evalErr
		}
		relativizeEvaluationResult(result, p.relativeTo)
		results = append(results, result)
	}

	report := reportout.BuildFenceEvaluationReport(results)

	formatted, err := formatReport(req.Format, report, reportout.FormatFenceEvaluationSARIF)
	if err != nil {
		return "", err
	}
	if len(report.Violations) > 0 {
		return formatted, ErrViolationsFound
	}
	return formatted, nil
}

func (a *App) executeUnused(ctx context.Context, req Request) (string, error) {
	repoRoot, values, err := a.prepare(req)
	if err != nil {
		return "", err
	}

	p, err := buildPipeline(ctx, repoRoot, values)
	if err != nil {
		return "", err
	}

	entryRoots := p.graph.EntryPackageSeeds(p.resolver, values.EntryPackageSet())
	testRoots := p.graph.TestFileSeeds(values.TestFileMatcher(repoRoot))

	result, err := p.graph.Run(ctx, entryRoots, testRoots)
	if err != nil {
		return "", err
	}

	skipped, err := values.CompiledSkippedItems()
	if err != nil {
		return "", err
	}
	filterSkippedItems(result, skipped)

	al, err := loadAllowlist(repoRoot, req.AllowlistPath)
	if err != nil {
		return "", err
	}

	report := reportout.BuildUnusedFinderReport(result, al, p.relativeTo)
	return formatReport(req.Format, report, reportout.FormatUnusedFinderSARIF)
}

// prepare normalizes the repository path and loads its configuration,
// common setup both modes need before a pipeline can be built.
func (a *App) prepare(req Request) (string, config.Values, error) {
	repoRoot, err := workspace.NormalizeRepoPath(req.RepoPath)
	if err != nil {
		return "", config.Values{}, err
	}

	values, _, err := config.Load(repoRoot, req.ConfigPath)
	if err != nil {
		return "", config.Values{}, err
	}
	if err := values.Validate(); err != nil {
		return "", config.Values{}, err
	}

	return repoRoot, values, nil
}

// loadAllowlist reads AllowlistPath if set, otherwise returns an empty
// allowlist that filters nothing.
func loadAllowlist(repoRoot, allowlistPath string) (*allowlist.Allowlist, error) {
	allowlistPath = strings.TrimSpace(allowlistPath)
	if allowlistPath == "" {
		return allowlist.Empty(), nil
	}
	if !filepath.IsAbs(allowlistPath) {
		allowlistPath = filepath.Join(repoRoot, allowlistPath)
	}
	data, err := safeio.ReadFileUnder(repoRoot, allowlistPath)
	if err != nil {
		return nil, err
	}
	return allowlist.Parse(bytes.NewReader(data))
}

// filterSkippedItems drops unused exports whose display name matches a
// skipped_items pattern, so generated or intentionally-public names
// configured away never reach the report.
func filterSkippedItems(result *graph.Result, skipped []*regexp.Regexp) {
	if len(skipped) == 0 {
		return
	}
	for path, items := range result.UnusedItems {
		kept := items[:0]
		for _, item := range items {
			if config.MatchesSkippedItem(skipped, item.Symbol.DisplayName()) {
				continue
			}
			kept = append(kept, item)
		}
		if len(kept) == 0 {
			delete(result.UnusedItems, path)
			continue
		}
		result.UnusedItems[path] = kept
	}
}

// relativizeEvaluationResult rewrites each violation's ViolatingFilePath
// and each unresolved import's SourceFilePath into a repo-relative path.
// The violating fence's Path is left as it is.
func relativizeEvaluationResult(result *fence.EvaluationResult, relativeTo func(string) string) {
	for i := range result.Violations {
		result.Violations[i].ViolatingFilePath = relativeTo(result.Violations[i].ViolatingFilePath)
	}
	for i := range result.UnresolvedFiles {
		result.UnresolvedFiles[i].SourceFilePath = relativeTo(result.UnresolvedFiles[i].SourceFilePath)
	}
}

// formatReport renders report as JSON or SARIF depending on format,
// using toSARIF to produce the SARIF variant.
func formatReport[T any](format Format, report T, toSARIF func(T) (string, error)) (string, error) {
	switch format {
	case FormatSARIF:
		return toSARIF(report)
	default:
		return reportout.FormatJSON(report)
	}
}
