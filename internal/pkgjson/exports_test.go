package pkgjson

import (
	"encoding/json"
	"testing"
)

func mustExportsMap(t *testing.T, raw string) *ExportsMap {
	t.Helper()
	em, err := ParseExportsMap(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("unexpected error parsing exports map: %v", err)
	}
	return em
}

func TestResolveSugarSingleEntryPoint(t *testing.T) {
	em := mustExportsMap(t, `"./index.js"`)
	p, status := em.Resolve(".", nil)
	if status != Matched || p != "./index.js" {
		t.Fatalf("expected matched ./index.js, got %q status=%v", p, status)
	}
}

func TestResolveLiteralBeatsStarWhenBothMatch(t *testing.T) {
	em := mustExportsMap(t, `{".":"./index.js","./feature":"./literal-feature.js","./*":"./star/*.js"}`)
	p, status := em.Resolve("./feature", nil)
	if status != Matched || p != "./literal-feature.js" {
		t.Fatalf("expected literal entry to win, got %q status=%v", p, status)
	}
}

func TestResolveDirectoryEntryJoinsRest(t *testing.T) {
	em := mustExportsMap(t, `{"./features/":"./dist/features/"}`)
	p, status := em.Resolve("./features/login", nil)
	if status != Matched || p != "dist/features/login" {
		t.Fatalf("unexpected directory resolution: %q status=%v", p, status)
	}
}

func TestResolveStarEntrySubstitutesWildcard(t *testing.T) {
	em := mustExportsMap(t, `{"./*":"./dist/*.js"}`)
	p, status := em.Resolve("./widgets/button", nil)
	if status != Matched || p != "./dist/widgets/button.js" {
		t.Fatalf("unexpected star resolution: %q status=%v", p, status)
	}
}

func TestResolveConditionsWalkedInRequestOrderDefaultLast(t *testing.T) {
	em := mustExportsMap(t, `{".":{"require":"./index.cjs","import":"./index.mjs","default":"./index.js"}}`)

	p, status := em.Resolve(".", []string{"import", "require"})
	if status != Matched || p != "./index.mjs" {
		t.Fatalf("expected import to win when requested first, got %q status=%v", p, status)
	}

	p, status = em.Resolve(".", []string{"require", "import"})
	if status != Matched || p != "./index.cjs" {
		t.Fatalf("expected require to win when requested first, got %q status=%v", p, status)
	}

	p, status = em.Resolve(".", []string{"browser"})
	if status != Matched || p != "./index.js" {
		t.Fatalf("expected fallback to default, got %q status=%v", p, status)
	}
}

func TestResolveDefaultAlwaysTriedLastEvenIfRequestedFirst(t *testing.T) {
	em := mustExportsMap(t, `{".":{"default":"./index.js","import":"./index.mjs"}}`)
	p, status := em.Resolve(".", []string{"default", "import"})
	if status != Matched || p != "./index.mjs" {
		t.Fatalf("expected default to be deferred behind import, got %q status=%v", p, status)
	}
}

func TestResolvePrivateExportBlocksAccess(t *testing.T) {
	em := mustExportsMap(t, `{"./internal/*":null}`)
	_, status := em.Resolve("./internal/secret", nil)
	if status != Private {
		t.Fatalf("expected private status, got %v", status)
	}
}

func TestParseExportsMapRejectsMultipleStars(t *testing.T) {
	_, err := ParseExportsMap(json.RawMessage(`{"./*/foo/*":"./dist/*/foo/*.js"}`))
	if err == nil {
		t.Fatalf("expected error for pattern with more than one '*'")
	}
}

func TestResolveUnrecognizedTargetReported(t *testing.T) {
	em := mustExportsMap(t, `{".":42}`)
	_, status := em.Resolve(".", nil)
	if status != Unrecognized {
		t.Fatalf("expected unrecognized status, got %v", status)
	}
}

func TestResolveNoMatchWhenNoConditionSatisfied(t *testing.T) {
	em := mustExportsMap(t, `{".":{"worker":"./worker.js"}}`)
	_, status := em.Resolve(".", []string{"node"})
	if status != NoMatch {
		t.Fatalf("expected no-match, got %v", status)
	}
}

func TestIsExportedLiteral(t *testing.T) {
	em := mustExportsMap(t, `{".":"./src/index.ts","./feature":"./src/feature.ts"}`)

	conds, ok := em.IsExported("src/feature.ts", []string{"import", "require"})
	if !ok || len(conds) == 0 {
		t.Fatalf("expected src/feature.ts to be exported, got conds=%v ok=%v", conds, ok)
	}

	_, ok = em.IsExported("src/not-exported.ts", []string{"import", "require"})
	if ok {
		t.Fatalf("expected src/not-exported.ts to not be exported")
	}
}

func TestIsExportedDirectory(t *testing.T) {
	em := mustExportsMap(t, `{"./features/":"./src/features/"}`)
	conds, ok := em.IsExported("src/features/login.ts", []string{"import"})
	if !ok || len(conds) == 0 {
		t.Fatalf("expected nested file under exported directory to be reachable, got %v", conds)
	}
}

func TestIsExportedStar(t *testing.T) {
	em := mustExportsMap(t, `{"./*":"./src/*.ts"}`)
	conds, ok := em.IsExported("src/widgets/button.ts", []string{"import"})
	if !ok || len(conds) == 0 {
		t.Fatalf("expected star-matched file to be reachable, got %v", conds)
	}
}

func TestResolveStarWithSuffixAndConditions(t *testing.T) {
	em := mustExportsMap(t, `{"./*dex":{"import":"./_*dex.js","default":"./dex_*.js"}}`)

	p, status := em.Resolve("./index", []string{"import", "default"})
	if status != Matched || p != "./_index.js" {
		t.Fatalf("expected ./_index.js under import, got %q status=%v", p, status)
	}

	conds, ok := em.IsExported("./_index.js", []string{"import", "default"})
	if !ok || len(conds) != 1 || conds[0] != "import" {
		t.Fatalf("expected reverse query to report [import], got %v ok=%v", conds, ok)
	}
}

func TestIsExportedRespectsPerConditionTargets(t *testing.T) {
	em := mustExportsMap(t, `{".":{"node":"./src/node.ts","browser":"./src/browser.ts"}}`)

	conds, ok := em.IsExported("src/node.ts", []string{"node", "browser"})
	if !ok {
		t.Fatalf("expected src/node.ts reachable under node condition")
	}
	for _, c := range conds {
		if c == "browser" {
			t.Fatalf("did not expect browser condition to match node.ts target, got %v", conds)
		}
	}
}
