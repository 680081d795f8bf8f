// Package symbol defines the data model shared by the parser, resolver,
// and reachability engine: the tagged Symbol identity, export/re-export
// metadata, and the raw and resolved per-file import/export records.
package symbol

import (
	"fmt"
	"strings"
)

// Kind tags the four forms a Symbol can take.
type Kind uint8

const (
	// KindNamed is an export/import referring to a named binding.
	KindNamed Kind = iota
	// KindDefault is the `export default` / `import x from` form.
	KindDefault
	// KindNamespace is the `import * as ns` / `export * from` form.
	KindNamespace
	// KindExecutionOnly is a side-effect-only `import "./foo"`.
	KindExecutionOnly
)

func (k Kind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindDefault:
		return "default"
	case KindNamespace:
		return "namespace"
	case KindExecutionOnly:
		return "execution-only"
	default:
		return "unknown"
	}
}

// Symbol identifies what an import refers to or what an export publishes.
// A Symbol is a plain comparable value: two Symbols with the same Kind and
// Name are the same symbol, which lets it be used directly as a map key.
type Symbol struct {
	Kind Kind
	Name string
}

// Named constructs a named symbol. A re-export named "default" normalizes
// to the Default symbol, per the identity rule exercised by the round-trip
// test: Named("default") and Default() must compare equal.
func Named(name string) Symbol {
	if name == "default" {
		return Default()
	}
	return Symbol{Kind: KindNamed, Name: name}
}

// Default is the `export default` / `import x from "p"` symbol.
func Default() Symbol { return Symbol{Kind: KindDefault} }

// Namespace is the `import * as ns` / `export * from "p"` symbol.
func Namespace() Symbol { return Symbol{Kind: KindNamespace} }

// ExecutionOnly is the `import "./foo"` side-effect symbol.
func ExecutionOnly() Symbol { return Symbol{Kind: KindExecutionOnly} }

// Encode renders a Symbol as a string that Decode can parse back into an
// identical value, including the Named("default") -> Default normalization.
func (s Symbol) Encode() string {
	switch s.Kind {
	case KindDefault:
		return "default"
	case KindNamespace:
		return "namespace"
	case KindExecutionOnly:
		return "execution-only"
	default:
		return "named:" + s.Name
	}
}

// Decode parses a string produced by Encode back into a Symbol.
func Decode(encoded string) (Symbol, error) {
	switch encoded {
	case "default":
		return Default(), nil
	case "namespace":
		return Namespace(), nil
	case "execution-only":
		return ExecutionOnly(), nil
	}
	if name, ok := strings.CutPrefix(encoded, "named:"); ok {
		return Named(name), nil
	}
	return Symbol{}, fmt.Errorf("symbol: invalid encoded value %q", encoded)
}

// DisplayName renders a Symbol for human-facing reports.
func (s Symbol) DisplayName() string {
	switch s.Kind {
	case KindDefault:
		return "default"
	case KindNamespace:
		return "*"
	case KindExecutionOnly:
		return "(side effect)"
	default:
		return s.Name
	}
}

// Span is an opaque source-location range. The core never inspects a
// Span's contents; it flows through unchanged from extraction to reporting.
type Span struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// ExportMeta is the metadata attached to each declared export.
type ExportMeta struct {
	Span        Span
	AllowUnused bool
	IsTypeOnly  bool
}

// ReExport pairs the upstream name a module imports with the (optional)
// name it republishes that symbol as. A bare `export * from "x"` has no
// rename; `export * as ns from "x"` renames the namespace to ns.
type ReExport struct {
	Imported  Symbol
	HasRename bool
	RenamedTo Symbol
}

// PublishedAs returns the symbol this re-export is known as from the
// importer's point of view.
func (r ReExport) PublishedAs() Symbol {
	if r.HasRename {
		return r.RenamedTo
	}
	return r.Imported
}

// UnresolvedCategory names which RawImportExport bucket an unresolved
// specifier came from, for §7's per-file Resolution error reporting.
type UnresolvedCategory string

const (
	CategoryImport    UnresolvedCategory = "import"
	CategoryRequire   UnresolvedCategory = "require"
	CategoryDynamic   UnresolvedCategory = "dynamic-import"
	CategoryExecuted  UnresolvedCategory = "executed"
	CategoryReexport  UnresolvedCategory = "reexport"
)

// UnresolvedImport records a specifier C1 failed to resolve, along with
// which declaration category it came from and why resolution failed.
type UnresolvedImport struct {
	Specifier string
	Category  UnresolvedCategory
	Reason    string
}

// RawImportExport is C3's per-file output: specifiers have not yet been
// resolved to paths.
type RawImportExport struct {
	Path string

	// ImportedSymbols maps a raw specifier to the set of symbols imported
	// from it via static `import` declarations.
	ImportedSymbols map[string]map[Symbol]struct{}
	RequirePaths    map[string]struct{}
	DynamicImports  map[string]struct{}
	ExecutedPaths   map[string]struct{}

	// ReexportFrom maps a raw specifier to the re-export bindings sourced
	// from it, each carrying its own ExportMeta (span + allow_unused +
	// is_type_only).
	ReexportFrom map[string]map[ReExport]ExportMeta
	Exports      map[Symbol]ExportMeta

	Warnings []string
}

// NewRawImportExport returns a RawImportExport with all maps initialized.
func NewRawImportExport(path string) *RawImportExport {
	return &RawImportExport{
		Path:            path,
		ImportedSymbols: make(map[string]map[Symbol]struct{}),
		RequirePaths:    make(map[string]struct{}),
		DynamicImports:  make(map[string]struct{}),
		ExecutedPaths:   make(map[string]struct{}),
		ReexportFrom:    make(map[string]map[ReExport]ExportMeta),
		Exports:         make(map[Symbol]ExportMeta),
	}
}

func (r *RawImportExport) addImportedSymbol(specifier string, sym Symbol) {
	set, ok := r.ImportedSymbols[specifier]
	if !ok {
		set = make(map[Symbol]struct{})
		r.ImportedSymbols[specifier] = set
	}
	set[sym] = struct{}{}
}

// AddNamedImport records `import { name as local } from specifier`.
func (r *RawImportExport) AddNamedImport(specifier, name string) {
	r.addImportedSymbol(specifier, Named(name))
}

// AddDefaultImport records `import x from specifier`.
func (r *RawImportExport) AddDefaultImport(specifier string) {
	r.addImportedSymbol(specifier, Default())
}

// AddNamespaceImport records `import * as ns from specifier`.
func (r *RawImportExport) AddNamespaceImport(specifier string) {
	r.addImportedSymbol(specifier, Namespace())
}

// AddExecuted records a side-effect-only `import "specifier"`.
func (r *RawImportExport) AddExecuted(specifier string) {
	r.ExecutedPaths[specifier] = struct{}{}
}

// AddRequire records a `require(specifier)` call not shadowed locally.
func (r *RawImportExport) AddRequire(specifier string) {
	r.RequirePaths[specifier] = struct{}{}
}

// AddDynamicImport records `import(specifier)` or `import x = require(...)`.
func (r *RawImportExport) AddDynamicImport(specifier string) {
	r.DynamicImports[specifier] = struct{}{}
}

// AddExport records a declared export and its metadata.
func (r *RawImportExport) AddExport(sym Symbol, meta ExportMeta) {
	r.Exports[sym] = meta
}

// AddReExport records `export { a as b } from specifier` (and its siblings).
func (r *RawImportExport) AddReExport(specifier string, re ReExport, meta ExportMeta) {
	set, ok := r.ReexportFrom[specifier]
	if !ok {
		set = make(map[ReExport]ExportMeta)
		r.ReexportFrom[specifier] = set
	}
	set[re] = meta
}

// ResolvedImportExport mirrors RawImportExport, but every specifier has
// been replaced by an absolute path. Specifiers that failed resolution are
// dropped from the maps and surfaced via Unresolved instead.
type ResolvedImportExport struct {
	Path string

	ImportedSymbols map[string]map[Symbol]struct{}
	RequirePaths    map[string]struct{}
	DynamicImports  map[string]struct{}
	ExecutedPaths   map[string]struct{}
	ReexportFrom    map[string]map[ReExport]ExportMeta
	Exports         map[Symbol]ExportMeta

	Unresolved []UnresolvedImport
	Warnings   []string
}

// NewResolvedImportExport returns a ResolvedImportExport with all maps
// initialized, copying over the declared exports (which never need
// resolution) from the raw record.
func NewResolvedImportExport(raw *RawImportExport) *ResolvedImportExport {
	exports := make(map[Symbol]ExportMeta, len(raw.Exports))
	for sym, meta := range raw.Exports {
		exports[sym] = meta
	}
	return &ResolvedImportExport{
		Path:            raw.Path,
		ImportedSymbols: make(map[string]map[Symbol]struct{}),
		RequirePaths:    make(map[string]struct{}),
		DynamicImports:  make(map[string]struct{}),
		ExecutedPaths:   make(map[string]struct{}),
		ReexportFrom:    make(map[string]map[ReExport]ExportMeta),
		Exports:         exports,
		Warnings:        append([]string(nil), raw.Warnings...),
	}
}
