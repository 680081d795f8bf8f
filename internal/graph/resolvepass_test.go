package graph

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ben-ranford/fenceguard/internal/resolve"
	"github.com/ben-ranford/fenceguard/internal/symbol"
)

type memFS struct {
	files map[string]string
	dirs  map[string]bool
}

func newMemFS() *memFS {
	return &memFS{files: make(map[string]string), dirs: make(map[string]bool)}
}

func (m *memFS) add(path, contents string) *memFS {
	m.files[path] = contents
	for dir := filepath.Dir(path); dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
	}
	m.dirs["/"] = true
	return m
}

func (m *memFS) Exists(path string) (bool, bool) {
	if _, ok := m.files[path]; ok {
		return false, true
	}
	if m.dirs[path] {
		return true, true
	}
	return false, false
}

func (m *memFS) ReadFile(path string) ([]byte, error) {
	contents, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("memFS: no such file %s", path)
	}
	return []byte(contents), nil
}

func TestResolveFileRewritesSpecifiersToAbsolutePaths(t *testing.T) {
	fs := newMemFS().
		add("/repo/src/app.ts", "").
		add("/repo/src/helper.ts", "")
	r := resolve.New(fs, resolve.Options{RootDir: "/repo"}, nil)

	raw := symbol.NewRawImportExport("/repo/src/app.ts")
	raw.AddNamedImport("./helper", "thing")
	raw.AddRequire("./helper")

	out := ResolveFile(raw, r, nil)
	if _, ok := out.ImportedSymbols["/repo/src/helper.ts"]; !ok {
		t.Fatalf("expected resolved import path, got %+v", out.ImportedSymbols)
	}
	if _, ok := out.RequirePaths["/repo/src/helper.ts"]; !ok {
		t.Fatalf("expected resolved require path, got %+v", out.RequirePaths)
	}
	if len(out.Unresolved) != 0 {
		t.Fatalf("expected no unresolved entries, got %+v", out.Unresolved)
	}
}

func TestResolveFileRecordsUnresolvedSpecifier(t *testing.T) {
	fs := newMemFS().add("/repo/src/app.ts", "")
	r := resolve.New(fs, resolve.Options{RootDir: "/repo"}, nil)

	raw := symbol.NewRawImportExport("/repo/src/app.ts")
	raw.AddNamedImport("./missing", "thing")

	out := ResolveFile(raw, r, nil)
	if len(out.ImportedSymbols) != 0 {
		t.Fatalf("expected no resolved imports, got %+v", out.ImportedSymbols)
	}
	if len(out.Unresolved) != 1 || out.Unresolved[0].Category != symbol.CategoryImport {
		t.Fatalf("expected one unresolved import, got %+v", out.Unresolved)
	}
}

func TestResolveFileOmitsNodeModulesSpecifiersWithoutError(t *testing.T) {
	fs := newMemFS().add("/repo/src/app.ts", "")
	r := resolve.New(fs, resolve.Options{RootDir: "/repo", IgnoreNodeModules: true}, nil)

	raw := symbol.NewRawImportExport("/repo/src/app.ts")
	raw.AddDefaultImport("react")

	out := ResolveFile(raw, r, nil)
	if len(out.ImportedSymbols) != 0 {
		t.Fatalf("expected node_modules import omitted, got %+v", out.ImportedSymbols)
	}
	if len(out.Unresolved) != 0 {
		t.Fatalf("expected no unresolved entries for a successfully-resolved external import, got %+v", out.Unresolved)
	}
}
