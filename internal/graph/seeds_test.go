package graph

import (
	"context"
	"testing"

	"github.com/ben-ranford/fenceguard/internal/symbol"
)

type fakeNamer map[string]string

func (f fakeNamer) PackageNameFor(path string) (string, bool) {
	name, ok := f[path]
	return name, ok
}

func TestEntryPackageSeeds(t *testing.T) {
	g := Build(map[string]*symbol.ResolvedImportExport{
		"/pkgs/app/index.ts": resolved("/pkgs/app/index.ts"),
		"/pkgs/lib/index.ts": resolved("/pkgs/lib/index.ts"),
	})
	namer := fakeNamer{"/pkgs/app/index.ts": "@acme/app", "/pkgs/lib/index.ts": "@acme/lib"}

	seeds := g.EntryPackageSeeds(namer, map[string]bool{"@acme/app": true})
	if len(seeds) != 1 || seeds[0] != "/pkgs/app/index.ts" {
		t.Fatalf("unexpected seeds: %v", seeds)
	}
}

func TestTestFileSeeds(t *testing.T) {
	g := Build(map[string]*symbol.ResolvedImportExport{
		"/src/app.ts":      resolved("/src/app.ts"),
		"/src/app.test.ts": resolved("/src/app.test.ts"),
	})
	isTest := func(path string) bool {
		return len(path) > 8 && path[len(path)-8:] == ".test.ts"
	}

	seeds := g.TestFileSeeds(isTest)
	if len(seeds) != 1 || seeds[0] != "/src/app.test.ts" {
		t.Fatalf("unexpected test seeds: %v", seeds)
	}
}

func TestRunWithNoSeedsLeavesEverythingUnused(t *testing.T) {
	g := Build(map[string]*symbol.ResolvedImportExport{
		"/a.ts": withExport(resolved("/a.ts"), symbol.Named("x"), symbol.ExportMeta{}),
	})
	result, err := g.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.UnusedFiles) != 1 || result.UnusedFiles[0] != "/a.ts" {
		t.Fatalf("expected /a.ts unused with no seeds, got %v", result.UnusedFiles)
	}
}
