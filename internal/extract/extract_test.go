package extract

import (
	"testing"

	"github.com/ben-ranford/fenceguard/internal/symbol"
)

func mustExtract(t *testing.T, path, source string) *symbol.RawImportExport {
	t.Helper()
	e := New()
	raw, err := e.Extract(path, []byte(source))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return raw
}

func TestExtractDefaultImport(t *testing.T) {
	raw := mustExtract(t, "a.ts", `import x from "p";`)
	if _, ok := raw.ImportedSymbols["p"][symbol.Default()]; !ok {
		t.Fatalf("expected default import from p, got %+v", raw.ImportedSymbols)
	}
}

func TestExtractNamedImports(t *testing.T) {
	raw := mustExtract(t, "a.ts", `import { a, b as c } from "p";`)
	syms := raw.ImportedSymbols["p"]
	if _, ok := syms[symbol.Named("a")]; !ok {
		t.Fatalf("expected Named(a), got %+v", syms)
	}
	if _, ok := syms[symbol.Named("b")]; !ok {
		t.Fatalf("expected Named(b) tracked by upstream name, got %+v", syms)
	}
}

func TestExtractNamespaceImport(t *testing.T) {
	raw := mustExtract(t, "a.ts", `import * as ns from "p";`)
	if _, ok := raw.ImportedSymbols["p"][symbol.Namespace()]; !ok {
		t.Fatalf("expected namespace import, got %+v", raw.ImportedSymbols)
	}
}

func TestExtractSideEffectImport(t *testing.T) {
	raw := mustExtract(t, "a.ts", `import "p";`)
	if _, ok := raw.ExecutedPaths["p"]; !ok {
		t.Fatalf("expected executed path p, got %+v", raw.ExecutedPaths)
	}
}

func TestExtractDynamicImport(t *testing.T) {
	raw := mustExtract(t, "a.ts", `const m = import("p");`)
	if _, ok := raw.DynamicImports["p"]; !ok {
		t.Fatalf("expected dynamic import p, got %+v", raw.DynamicImports)
	}
}

func TestExtractRequireCall(t *testing.T) {
	raw := mustExtract(t, "a.js", `const x = require("p");`)
	if _, ok := raw.RequirePaths["p"]; !ok {
		t.Fatalf("expected require path p, got %+v", raw.RequirePaths)
	}
}

func TestExtractRequireShadowedNotCaptured(t *testing.T) {
	raw := mustExtract(t, "a.js", `
function f(require) {
  const x = require("p");
}
`)
	if _, ok := raw.RequirePaths["p"]; ok {
		t.Fatalf("expected shadowed require not to be captured, got %+v", raw.RequirePaths)
	}
}

func TestExtractNamedExports(t *testing.T) {
	raw := mustExtract(t, "a.ts", `const a = 1; export { a, a as c };`)
	if _, ok := raw.Exports[symbol.Named("a")]; !ok {
		t.Fatalf("expected Named(a) export, got %+v", raw.Exports)
	}
	if _, ok := raw.Exports[symbol.Named("c")]; !ok {
		t.Fatalf("expected Named(c) export, got %+v", raw.Exports)
	}
}

func TestExtractDefaultExportExpression(t *testing.T) {
	raw := mustExtract(t, "a.ts", `export default 1;`)
	if _, ok := raw.Exports[symbol.Default()]; !ok {
		t.Fatalf("expected default export, got %+v", raw.Exports)
	}
}

func TestExtractExportDeclaration(t *testing.T) {
	raw := mustExtract(t, "a.ts", `export const x = 1;`)
	if _, ok := raw.Exports[symbol.Named("x")]; !ok {
		t.Fatalf("expected Named(x) export, got %+v", raw.Exports)
	}
}

func TestExtractExportInterfaceIsTypeOnly(t *testing.T) {
	raw := mustExtract(t, "a.ts", `export interface Foo { x: number }`)
	meta, ok := raw.Exports[symbol.Named("Foo")]
	if !ok || !meta.IsTypeOnly {
		t.Fatalf("expected type-only export Foo, got %+v", raw.Exports)
	}
}

func soleReExport(t *testing.T, reexports map[symbol.ReExport]symbol.ExportMeta) symbol.ReExport {
	t.Helper()
	if len(reexports) != 1 {
		t.Fatalf("expected exactly one re-export, got %+v", reexports)
	}
	for re := range reexports {
		return re
	}
	panic("unreachable")
}

func TestExtractReExportNamed(t *testing.T) {
	raw := mustExtract(t, "a.ts", `export { a } from "p";`)
	re := soleReExport(t, raw.ReexportFrom["p"])
	if re.Imported != symbol.Named("a") {
		t.Fatalf("unexpected re-export: %+v", re)
	}
}

func TestExtractReExportRenamed(t *testing.T) {
	raw := mustExtract(t, "a.ts", `export { a as b } from "p";`)
	re := soleReExport(t, raw.ReexportFrom["p"])
	if re.PublishedAs() != symbol.Named("b") {
		t.Fatalf("unexpected re-export: %+v", re)
	}
}

func TestExtractReExportStar(t *testing.T) {
	raw := mustExtract(t, "a.ts", `export * from "p";`)
	re := soleReExport(t, raw.ReexportFrom["p"])
	if re.Imported != symbol.Namespace() || re.HasRename {
		t.Fatalf("unexpected re-export: %+v", re)
	}
}

func TestExtractReExportStarAsNamespace(t *testing.T) {
	raw := mustExtract(t, "a.ts", `export * as ns from "p";`)
	re := soleReExport(t, raw.ReexportFrom["p"])
	if re.PublishedAs() != symbol.Named("ns") {
		t.Fatalf("unexpected re-export: %+v", re)
	}
}

func TestExtractImportEqualsRequire(t *testing.T) {
	raw := mustExtract(t, "a.ts", `import x = require("p");`)
	if _, ok := raw.DynamicImports["p"]; !ok {
		t.Fatalf("expected import-equals form recorded as dynamic import, got %+v", raw.DynamicImports)
	}
}

func TestExtractExportSpansRecorded(t *testing.T) {
	raw := mustExtract(t, "a.ts", "const pad = 1;\nexport const x = 1;")
	meta, ok := raw.Exports[symbol.Named("x")]
	if !ok {
		t.Fatalf("expected Named(x) export, got %+v", raw.Exports)
	}
	if meta.Span.StartLine != 2 {
		t.Fatalf("expected export span on line 2, got %+v", meta.Span)
	}
}

func TestExtractAllowUnusedMarkerAttaches(t *testing.T) {
	raw := mustExtract(t, "a.ts", `
// @ALLOW-UNUSED-EXPORT
export const x = 1;
export const y = 2;
`)
	xMeta, ok := raw.Exports[symbol.Named("x")]
	if !ok || !xMeta.AllowUnused {
		t.Fatalf("expected x to be marked allow_unused, got %+v", raw.Exports)
	}
	yMeta, ok := raw.Exports[symbol.Named("y")]
	if !ok || yMeta.AllowUnused {
		t.Fatalf("expected y not to be marked allow_unused, got %+v", raw.Exports)
	}
}
