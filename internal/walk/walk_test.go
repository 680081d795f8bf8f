package walk

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func collect(t *testing.T, w *Walker) []string {
	t.Helper()
	var got []string
	if err := w.Walk(context.Background(), func(path string) error {
		got = append(got, path)
		return nil
	}); err != nil {
		t.Fatalf("walk: %v", err)
	}
	sort.Strings(got)
	return got
}

func TestWalkVisitsSupportedExtensions(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "src", "app.ts"), "")
	writeFile(t, filepath.Join(repo, "src", "app.tsx"), "")
	writeFile(t, filepath.Join(repo, "README.md"), "")

	got := collect(t, New(repo, Options{}))
	if len(got) != 2 {
		t.Fatalf("expected 2 supported files, got %v", got)
	}
}

func TestWalkAlwaysSkipsNodeModulesAndLib(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "src", "app.ts"), "")
	writeFile(t, filepath.Join(repo, "node_modules", "dep", "index.js"), "")
	writeFile(t, filepath.Join(repo, "lib", "compiled.js"), "")

	got := collect(t, New(repo, Options{}))
	if len(got) != 1 || filepath.Base(got[0]) != "app.ts" {
		t.Fatalf("expected only app.ts, got %v", got)
	}
}

func TestWalkSkipsConfiguredGlobPattern(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "src", "app.ts"), "")
	writeFile(t, filepath.Join(repo, "generated", "schema.ts"), "")

	got := collect(t, New(repo, Options{SkippedDirs: []string{"generated"}}))
	if len(got) != 1 || filepath.Base(got[0]) != "app.ts" {
		t.Fatalf("expected generated/ skipped, got %v", got)
	}
}

func TestWalkSkipsNestedGlobPattern(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "packages", "a", "dist", "out.js"), "")
	writeFile(t, filepath.Join(repo, "packages", "a", "src", "index.ts"), "")

	got := collect(t, New(repo, Options{SkippedDirs: []string{"**/dist"}}))
	if len(got) != 1 || filepath.Base(got[0]) != "index.ts" {
		t.Fatalf("expected dist/ skipped, got %v", got)
	}
}

func TestWalkRespectsCustomExtensionSet(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "a.ts"), "")
	writeFile(t, filepath.Join(repo, "b.jsx"), "")

	got := collect(t, New(repo, Options{Extensions: map[string]bool{".jsx": true}}))
	if len(got) != 1 || filepath.Base(got[0]) != "b.jsx" {
		t.Fatalf("expected only b.jsx, got %v", got)
	}
}

func TestWalkContextCancellationStopsEarly(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "a.ts"), "")
	writeFile(t, filepath.Join(repo, "b.ts"), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(repo, Options{}).Walk(ctx, func(string) error { return nil })
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}
