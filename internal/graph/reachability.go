package graph

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ben-ranford/fenceguard/internal/symbol"
)

// MaxIterations is the safety cap on BFS steps.
// Exceeding it indicates a mark_used cycle that monotonicity should
// forbid and is reported as ErrIterationCap, not silently truncated.
const MaxIterations = 10_000_000

// ErrIterationCap is returned when a BFS run exceeds MaxIterations
// without reaching a fixed point.
var ErrIterationCap = fmt.Errorf("graph: exceeded %d BFS iterations without reaching a fixed point", MaxIterations)

// edge is one outgoing reference enumerated from a frontier node: a
// destination path and the symbol it references there.
type edge struct {
	to  string
	sym symbol.Symbol
}

// markResult is the outcome kind markUsed reports.
type markResult int

const (
	markedAsUsed markResult = iota
	resolveExportFrom
	alreadyMarked
)

// outgoingEdges enumerates a file's edges from every declaration
// category: static imports, require calls, dynamic imports,
// side-effect executions, and re-exports.
func outgoingEdges(f *File) []edge {
	var edges []edge
	for to, syms := range f.Imported {
		for sym := range syms {
			edges = append(edges, edge{to: to, sym: sym})
		}
	}
	for to := range f.Require {
		edges = append(edges, edge{to: to, sym: symbol.Namespace()})
	}
	for to := range f.Dynamic {
		edges = append(edges, edge{to: to, sym: symbol.Namespace()})
	}
	for to := range f.Executed {
		edges = append(edges, edge{to: to, sym: symbol.ExecutionOnly()})
	}
	for to, reexports := range f.ReexportFrom {
		for re := range reexports {
			edges = append(edges, edge{to: to, sym: re.Imported})
		}
	}
	return edges
}

// markUsed flips is_used, consumes the
// symbol from unused_exports if present, else forward through
// export_from to the origin path. The origin path is always followed;
// it is returned (even when it was already used) whenever following it
// changed state, i.e. it consumed the symbol or something further along
// the chain transitioned, so a revisit of a re-export cycle adds nothing
// to the next frontier. newlyTouched additionally includes any path
// (this one, or further up the export_from chain) whose is_used just
// transitioned false -> true.
//
// visited guards against a reexport cycle (a exports from b, b from a)
// recursing forever; it is scoped to one top-level markUsed call, not
// to the whole BFS run.
func (g *Graph) markUsed(path string, sym symbol.Symbol, visited map[string]bool) (result markResult, newlyTouched []string) {
	if visited[path] {
		return alreadyMarked, nil
	}
	visited[path] = true

	f, ok := g.files[path]
	if !ok {
		return alreadyMarked, nil
	}

	f.mu.Lock()
	wasUsed := f.isUsed
	f.isUsed = true
	_, wasUnused := f.unusedExports[sym]
	if wasUnused {
		delete(f.unusedExports, sym)
	}
	origin, hasOrigin := f.exportFrom[sym]
	f.mu.Unlock()

	if !wasUsed {
		newlyTouched = append(newlyTouched, path)
	}

	if wasUnused {
		return markedAsUsed, newlyTouched
	}
	if hasOrigin {
		originResult, chain := g.markUsed(origin, sym, visited)
		if originResult == markedAsUsed || len(chain) > 0 {
			newlyTouched = append(newlyTouched, origin)
		}
		newlyTouched = append(newlyTouched, chain...)
		return resolveExportFrom, newlyTouched
	}
	return alreadyMarked, newlyTouched
}

// step runs one BFS step over frontier, enumerating every node's edges
// in parallel and applying mark_used under each target's own lock. It
// returns the next frontier. Enumeration never races a mutation:
// edge lists are read-only snapshots of File's static fields, which
// markUsed does not touch.
func (g *Graph) step(ctx context.Context, frontier map[string]bool) (map[string]bool, error) {
	next := make(map[string]bool)
	var mu sync.Mutex

	group, _ := errgroup.WithContext(ctx)
	for path := range frontier {
		path := path
		group.Go(func() error {
			f, ok := g.files[path]
			if !ok {
				return nil
			}
			edges := outgoingEdges(f)

			touched := make([]string, 0, len(edges))
			for _, e := range edges {
				visited := make(map[string]bool)
				_, newlyTouched := g.markUsed(e.to, e.sym, visited)
				touched = append(touched, newlyTouched...)
			}

			mu.Lock()
			for _, p := range touched {
				next[p] = true
			}
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return next, nil
}

// run drives step to a fixed point, starting from seeds, enforcing
// MaxIterations.
func (g *Graph) run(ctx context.Context, seeds []string) error {
	frontier := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		f, ok := g.files[s]
		if !ok {
			continue
		}
		frontier[s] = true
		f.mu.Lock()
		f.isUsed = true
		f.mu.Unlock()
	}

	for iterations := 0; len(frontier) > 0; iterations++ {
		if iterations >= MaxIterations {
			return ErrIterationCap
		}
		next, err := g.step(ctx, frontier)
		if err != nil {
			return err
		}
		frontier = next
	}
	return nil
}
