package app

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ben-ranford/fenceguard/internal/config"
	"github.com/ben-ranford/fenceguard/internal/extract"
	"github.com/ben-ranford/fenceguard/internal/graph"
	"github.com/ben-ranford/fenceguard/internal/resolve"
	"github.com/ben-ranford/fenceguard/internal/safeio"
	"github.com/ben-ranford/fenceguard/internal/symbol"
	"github.com/ben-ranford/fenceguard/internal/tsconfigpaths"
	"github.com/ben-ranford/fenceguard/internal/walk"
)

// pipeline holds everything derived from a repository scan that both
// ModeCheck and ModeUnused build on: the resolved graph plus the raw,
// pre-resolution records ModeCheck needs for fence evaluation.
type pipeline struct {
	repoRoot string
	values   config.Values
	resolver *resolve.Resolver
	graph    *graph.Graph
	rawFiles map[string]*symbol.RawImportExport
}

// buildPipeline walks repoRoot, runs C3 extraction and C1 resolution on
// every candidate file, and assembles the C4 graph from the results.
func buildPipeline(ctx context.Context, repoRoot string, values config.Values) (*pipeline, error) {
	tscfg, err := loadTSConfig(repoRoot)
	if err != nil {
		return nil, err
	}

	resolver := resolve.New(resolve.OSFileSystem{}, values.ResolveOptions(repoRoot), tscfg)
	extractor := extract.New()
	walker := walk.New(repoRoot, values.WalkOptions())

	var candidates []string
	err = walker.Walk(ctx, func(path string) error {
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Parse and resolve candidates in parallel; the extractor and
	// resolver are both safe for concurrent use.
	rawFiles := make(map[string]*symbol.RawImportExport, len(candidates))
	resolvedFiles := make(map[string]*symbol.ResolvedImportExport, len(candidates))
	var mu sync.Mutex

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range candidates {
		path := path
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, readErr := safeio.ReadFileUnder(repoRoot, path)
			if readErr != nil {
				return readErr
			}
			raw, extractErr := extractor.Extract(path, content)
			if extractErr != nil {
				return extractErr
			}
			resolved := graph.ResolveFile(raw, resolver, values.ExportConditions)
			mu.Lock()
			rawFiles[path] = raw
			resolvedFiles[path] = resolved
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &pipeline{
		repoRoot: repoRoot,
		values:   values,
		resolver: resolver,
		graph:    graph.Build(resolvedFiles),
		rawFiles: rawFiles,
	}, nil
}

// relativeTo renders an absolute path under repoRoot as a slash-
// separated repo-relative path, the shape both report documents use.
func (p *pipeline) relativeTo(path string) string {
	rel, err := filepath.Rel(p.repoRoot, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// loadTSConfig reads tsconfig.json from the repository root, if
// present. A missing file is not an error: most fenceguard targets are
// plain JavaScript.
func loadTSConfig(repoRoot string) (*tsconfigpaths.Config, error) {
	path := filepath.Join(repoRoot, "tsconfig.json")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	data, err := safeio.ReadFileUnder(repoRoot, path)
	if err != nil {
		return nil, err
	}
	return tsconfigpaths.Parse(data)
}
