package graph

import (
	"github.com/ben-ranford/fenceguard/internal/resolve"
	"github.com/ben-ranford/fenceguard/internal/symbol"
)

// ResolveFile replaces every specifier in raw with the absolute path a
// Resolver resolves it to. Specifiers that fail to resolve are dropped
// from the per-category maps and recorded in Unresolved instead;
// failures are per-file and never abort the run.
// Specifiers that resolve outside the project (node_modules, resource
// files) are silently omitted: they resolved successfully, but they are
// not graph nodes C4 tracks edges between.
func ResolveFile(raw *symbol.RawImportExport, resolver *resolve.Resolver, conditions []string) *symbol.ResolvedImportExport {
	out := symbol.NewResolvedImportExport(raw)

	// resolveToProjectPath resolves specifier once, reporting failures
	// into out.Unresolved. ok is true only for a project-local match.
	resolveToProjectPath := func(specifier string, category symbol.UnresolvedCategory) (string, bool) {
		res, err := resolver.Resolve(raw.Path, specifier, conditions)
		if err != nil {
			out.Unresolved = append(out.Unresolved, symbol.UnresolvedImport{
				Specifier: specifier,
				Category:  category,
				Reason:    err.Error(),
			})
			return "", false
		}
		return res.Path, res.Kind == resolve.ProjectLocal
	}

	copySpecifierSet := func(specifiers map[string]struct{}, category symbol.UnresolvedCategory, dst map[string]struct{}) {
		for specifier := range specifiers {
			if path, ok := resolveToProjectPath(specifier, category); ok {
				dst[path] = struct{}{}
			}
		}
	}

	copySpecifierSet(raw.RequirePaths, symbol.CategoryRequire, out.RequirePaths)
	copySpecifierSet(raw.DynamicImports, symbol.CategoryDynamic, out.DynamicImports)
	copySpecifierSet(raw.ExecutedPaths, symbol.CategoryExecuted, out.ExecutedPaths)

	for specifier, syms := range raw.ImportedSymbols {
		path, ok := resolveToProjectPath(specifier, symbol.CategoryImport)
		if !ok {
			continue
		}
		dst, exists := out.ImportedSymbols[path]
		if !exists {
			dst = make(map[symbol.Symbol]struct{}, len(syms))
			out.ImportedSymbols[path] = dst
		}
		for sym := range syms {
			dst[sym] = struct{}{}
		}
	}

	for specifier, reexports := range raw.ReexportFrom {
		path, ok := resolveToProjectPath(specifier, symbol.CategoryReexport)
		if !ok {
			continue
		}
		dst, exists := out.ReexportFrom[path]
		if !exists {
			dst = make(map[symbol.ReExport]symbol.ExportMeta, len(reexports))
			out.ReexportFrom[path] = dst
		}
		for re, meta := range reexports {
			dst[re] = meta
		}
	}

	return out
}
