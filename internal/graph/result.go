package graph

import (
	"context"
	"sort"

	"github.com/ben-ranford/fenceguard/internal/symbol"
)

// UnusedItem is one remaining unused export, annotated with whether the
// test-phase BFS later marked it used.
type UnusedItem struct {
	Symbol       symbol.Symbol
	Meta         symbol.ExportMeta
	TestOnlyUsed bool
}

// Result is the reachability engine's full output, before allowlist
// filtering; reportout shapes it into the UnusedFinderReport document.
type Result struct {
	UnusedFiles       []string
	UnusedItems       map[string][]UnusedItem
	TestOnlyUsedFiles []string
}

// Run performs the engine's two-phase execution: BFS to
// fixed point from entryRoots, snapshot prod_used, then a second BFS
// from testRoots to find files/exports newly reachable only via tests.
func (g *Graph) Run(ctx context.Context, entryRoots, testRoots []string) (*Result, error) {
	if err := g.run(ctx, entryRoots); err != nil {
		return nil, err
	}

	prodUsed := make(map[string]bool, len(g.files))
	prodUnused := make(map[string]map[symbol.Symbol]symbol.ExportMeta, len(g.files))
	for path, f := range g.files {
		prodUsed[path] = f.IsUsed()
		prodUnused[path] = f.UnusedExports()
	}

	if err := g.run(ctx, testRoots); err != nil {
		return nil, err
	}

	// Record which exports present in prodUnused were consumed by the
	// test-phase BFS, and which files newly became used by it.
	for path, f := range g.files {
		stillUnused := f.UnusedExports()
		f.mu.Lock()
		for sym := range prodUnused[path] {
			if _, stillThere := stillUnused[sym]; !stillThere {
				f.testOnlyUsed[sym] = true
			}
		}
		f.mu.Unlock()
	}

	result := &Result{
		UnusedItems: make(map[string][]UnusedItem),
	}
	for path, f := range g.files {
		if !prodUsed[path] {
			result.UnusedFiles = append(result.UnusedFiles, path)
			if f.IsUsed() {
				result.TestOnlyUsedFiles = append(result.TestOnlyUsedFiles, path)
			}
		}

		unused := prodUnused[path]
		if len(unused) == 0 {
			continue
		}
		items := make([]UnusedItem, 0, len(unused))
		for sym, meta := range unused {
			items = append(items, UnusedItem{
				Symbol:       sym,
				Meta:         meta,
				TestOnlyUsed: f.TestOnlyUsed(sym),
			})
		}
		sort.Slice(items, func(i, j int) bool {
			return items[i].Symbol.DisplayName() < items[j].Symbol.DisplayName()
		})
		result.UnusedItems[path] = items
	}

	sort.Strings(result.UnusedFiles)
	sort.Strings(result.TestOnlyUsedFiles)
	return result, nil
}
