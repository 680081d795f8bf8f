// Package graph implements the reachability engine (C4): a two-phase
// BFS over resolved import/export records that marks every transitively
// reachable export used, starting from entry-package files and then
// separately from test files.
package graph

import (
	"sync"

	"github.com/ben-ranford/fenceguard/internal/symbol"
)

// File is one arena node: a resolved source file plus the mutable
// reachability state the BFS mutates under its own lock. Fields below
// "mu" are read during edge enumeration and written only by markUsed,
// which always holds mu while doing so.
type File struct {
	Path string

	// Imported, Require, Dynamic, Executed, ReexportFrom are the
	// outgoing-edge sources, copied verbatim from
	// the resolved record. They never change after construction.
	Imported     map[string]map[symbol.Symbol]struct{}
	Require      map[string]struct{}
	Dynamic      map[string]struct{}
	Executed     map[string]struct{}
	ReexportFrom map[string]map[symbol.ReExport]symbol.ExportMeta

	mu            sync.Mutex
	isUsed        bool
	unusedExports map[symbol.Symbol]symbol.ExportMeta
	exportFrom    map[symbol.Symbol]string
	testOnlyUsed  map[symbol.Symbol]bool
}

// newFile builds a File's static edges and seeds its mutable state from
// a resolved record: unusedExports starts as the full export set, and
// exportFrom is ReexportFrom flattened to published-name -> origin path.
func newFile(r *symbol.ResolvedImportExport) *File {
	f := &File{
		Path:          r.Path,
		Imported:      r.ImportedSymbols,
		Require:       r.RequirePaths,
		Dynamic:       r.DynamicImports,
		Executed:      r.ExecutedPaths,
		ReexportFrom:  r.ReexportFrom,
		unusedExports: make(map[symbol.Symbol]symbol.ExportMeta, len(r.Exports)),
		exportFrom:    make(map[symbol.Symbol]string),
		testOnlyUsed:  make(map[symbol.Symbol]bool),
	}
	for sym, meta := range r.Exports {
		f.unusedExports[sym] = meta
	}
	for originPath, reexports := range r.ReexportFrom {
		for re := range reexports {
			f.exportFrom[re.PublishedAs()] = originPath
		}
	}
	return f
}

// IsUsed reports the current is_used flag.
func (f *File) IsUsed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isUsed
}

// UnusedExports returns a snapshot copy of the file's remaining unused
// exports after a BFS has run to fixed point.
func (f *File) UnusedExports() map[symbol.Symbol]symbol.ExportMeta {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[symbol.Symbol]symbol.ExportMeta, len(f.unusedExports))
	for sym, meta := range f.unusedExports {
		out[sym] = meta
	}
	return out
}

// TestOnlyUsed reports whether sym, though absent from the production
// unused_exports snapshot, was marked used only by the test-phase BFS.
func (f *File) TestOnlyUsed(sym symbol.Symbol) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.testOnlyUsed[sym]
}

// Graph is the full arena: every resolved project-local file, keyed by
// its absolute path.
type Graph struct {
	files map[string]*File
}

// Build constructs the arena from a set of resolved per-file records,
// one node per record.
func Build(resolved map[string]*symbol.ResolvedImportExport) *Graph {
	g := &Graph{files: make(map[string]*File, len(resolved))}
	for path, r := range resolved {
		g.files[path] = newFile(r)
	}
	return g
}

// File looks up a node by path.
func (g *Graph) File(path string) (*File, bool) {
	f, ok := g.files[path]
	return f, ok
}

// Len returns the number of files in the arena.
func (g *Graph) Len() int { return len(g.files) }

// Paths returns every path currently in the arena, in no particular order.
func (g *Graph) Paths() []string {
	paths := make([]string, 0, len(g.files))
	for p := range g.files {
		paths = append(paths, p)
	}
	return paths
}
