package tsconfigpaths

import "testing"

func mustParse(t *testing.T, raw string) *Config {
	t.Helper()
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return cfg
}

func TestParseRejectsAmbiguousTargets(t *testing.T) {
	_, err := Parse([]byte(`{"compilerOptions":{"paths":{"@app/*":["src/a/*","src/b/*"]}}}`))
	if err == nil {
		t.Fatalf("expected error for paths entry with more than one target")
	}
}

func TestParseRejectsEmptyTargetList(t *testing.T) {
	_, err := Parse([]byte(`{"compilerOptions":{"paths":{"@app/*":[]}}}`))
	if err == nil {
		t.Fatalf("expected error for paths entry with zero targets")
	}
}

func TestResolveLiteralEntry(t *testing.T) {
	cfg := mustParse(t, `{"compilerOptions":{"paths":{"@app/config":["packages/app/config.ts"]}}}`)
	p, ok := cfg.Resolve("@app/config")
	if !ok || p != "packages/app/config.ts" {
		t.Fatalf("unexpected resolution: %q ok=%v", p, ok)
	}
}

func TestResolveStarEntrySubstitutesMatchedRest(t *testing.T) {
	cfg := mustParse(t, `{"compilerOptions":{"paths":{"glob/lib/*":["packages/glob/src/*"]}}}`)
	p, ok := cfg.Resolve("glob/lib/sub/the/one")
	if !ok || p != "packages/glob/src/sub/the/one" {
		t.Fatalf("unexpected resolution: %q ok=%v", p, ok)
	}
}

func TestResolveCollapsesDotSegments(t *testing.T) {
	cfg := mustParse(t, `{"compilerOptions":{"paths":{"glob/lib/*":["packages/glob/src/*"]}}}`)
	// ".." removes the "." segment before it, so "sub" survives.
	p, ok := cfg.Resolve("glob/lib/sub/./../the/one")
	if !ok || p != "packages/glob/src/sub/the/one" {
		t.Fatalf("unexpected resolution: %q ok=%v", p, ok)
	}
}

func TestResolveTargetWithoutStarUsedVerbatim(t *testing.T) {
	cfg := mustParse(t, `{"compilerOptions":{"paths":{"legacy/*":["packages/shim/fixed-target.ts"]}}}`)
	p, ok := cfg.Resolve("legacy/anything")
	if !ok || p != "packages/shim/fixed-target.ts" {
		t.Fatalf("unexpected resolution: %q ok=%v", p, ok)
	}
}

func TestResolveLongestPrefixWinsOverShorter(t *testing.T) {
	cfg := mustParse(t, `{"compilerOptions":{"paths":{
		"@app/*":["src/app/*"],
		"@app/widgets/*":["src/widgets/*"]
	}}}`)
	p, ok := cfg.Resolve("@app/widgets/button")
	if !ok || p != "src/widgets/button" {
		t.Fatalf("expected most specific prefix to win, got %q ok=%v", p, ok)
	}
}

func TestResolveNoMatchReturnsFalse(t *testing.T) {
	cfg := mustParse(t, `{"compilerOptions":{"paths":{"@app/*":["src/app/*"]}}}`)
	_, ok := cfg.Resolve("unrelated/specifier")
	if ok {
		t.Fatalf("expected no match")
	}
}

func TestBaseURLAppliedWhenSet(t *testing.T) {
	cfg := mustParse(t, `{"compilerOptions":{"baseUrl":"./src"}}`)
	if got := cfg.WithBaseURL("feature/module"); got != "src/feature/module" {
		t.Fatalf("unexpected base url join: %q", got)
	}
}

func TestBaseURLNoopWhenUnset(t *testing.T) {
	cfg := mustParse(t, `{"compilerOptions":{}}`)
	if got := cfg.WithBaseURL("feature/module"); got != "feature/module" {
		t.Fatalf("expected target unchanged without baseUrl, got %q", got)
	}
}

func TestHasPathsReflectsConfig(t *testing.T) {
	empty := mustParse(t, `{"compilerOptions":{}}`)
	if empty.HasPaths() {
		t.Fatalf("expected no paths configured")
	}
	withPaths := mustParse(t, `{"compilerOptions":{"paths":{"@app/*":["src/*"]}}}`)
	if !withPaths.HasPaths() {
		t.Fatalf("expected paths configured")
	}
}
