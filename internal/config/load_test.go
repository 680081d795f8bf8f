package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ben-ranford/fenceguard/internal/testutil"
)

func TestLoadNoConfigFileReturnsDefaults(t *testing.T) {
	repo := t.TempDir()
	resolved, path, err := Load(repo, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Fatalf("expected no config path, got %q", path)
	}
	if resolved.TargetEnv != Defaults().TargetEnv {
		t.Fatalf("expected defaults, got %+v", resolved)
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	repo := t.TempDir()
	cfg := strings.Join([]string{
		"target_env: browser",
		"ignore_node_modules: true",
		"entry_packages:",
		"  - \"@app/web\"",
		"alias:",
		"  \"@app\": \"./src\"",
		"",
	}, "\n")
	testutil.MustWriteFile(t, filepath.Join(repo, ".fenceguard.yml"), cfg)

	resolved, path, err := Load(repo, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, ".fenceguard.yml") {
		t.Fatalf("expected .fenceguard.yml path, got %q", path)
	}
	if resolved.TargetEnv != "browser" {
		t.Fatalf("expected target_env=browser, got %q", resolved.TargetEnv)
	}
	if !resolved.IgnoreNodeModules {
		t.Fatalf("expected ignore_node_modules=true")
	}
	if len(resolved.EntryPackages) != 1 || resolved.EntryPackages[0] != "@app/web" {
		t.Fatalf("unexpected entry_packages: %+v", resolved.EntryPackages)
	}
	if resolved.Alias["@app"] != "./src" {
		t.Fatalf("unexpected alias: %+v", resolved.Alias)
	}
}

func TestLoadJSONConfigRejectsUnknownField(t *testing.T) {
	repo := t.TempDir()
	cfg := `{"target_enf": "browser"}`
	testutil.MustWriteFile(t, filepath.Join(repo, "fenceguard.json"), cfg)

	if _, _, err := Load(repo, ""); err == nil {
		t.Fatalf("expected error for unknown field in JSON config")
	}
}

func TestLoadTOMLConfig(t *testing.T) {
	repo := t.TempDir()
	cfg := strings.Join([]string{
		"target_env = \"browser\"",
		"skipped_dirs = [\"**/dist\"]",
		"",
	}, "\n")
	testutil.MustWriteFile(t, filepath.Join(repo, "fenceguard.toml"), cfg)

	resolved, _, err := Load(repo, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.TargetEnv != "browser" {
		t.Fatalf("expected target_env=browser, got %q", resolved.TargetEnv)
	}
	if len(resolved.SkippedDirs) != 1 || resolved.SkippedDirs[0] != "**/dist" {
		t.Fatalf("unexpected skipped_dirs: %+v", resolved.SkippedDirs)
	}
}

func TestLoadExplicitPathOutsideRepoUsesReadFile(t *testing.T) {
	repo := t.TempDir()
	outside := testutil.WriteTempFile(t, "external.yml", "target_env: browser\n")

	resolved, path, err := Load(repo, outside)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != outside {
		t.Fatalf("expected explicit path %q, got %q", outside, path)
	}
	if resolved.TargetEnv != "browser" {
		t.Fatalf("expected target_env=browser, got %q", resolved.TargetEnv)
	}
}

func TestLoadExplicitPathMissingFileErrors(t *testing.T) {
	repo := t.TempDir()
	if _, _, err := Load(repo, filepath.Join(repo, "missing.yml")); err == nil {
		t.Fatalf("expected error for missing explicit config path")
	}
}

func TestLoadRejectsInvalidTargetEnv(t *testing.T) {
	repo := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(repo, "fenceguard.json"), `{"target_env": "deno"}`)
	if _, _, err := Load(repo, ""); err == nil {
		t.Fatalf("expected error for invalid target_env")
	}
}
