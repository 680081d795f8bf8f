package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/ben-ranford/fenceguard/internal/symbol"
)

// AllowUnusedMarker is the line-comment text that flags the export
// declaration immediately following it as intentionally unused.
const AllowUnusedMarker = "@ALLOW-UNUSED-EXPORT"

// Extractor parses source files and extracts their raw import/export
// record. It is safe for concurrent use: each call to Extract creates
// its own tree-sitter parser.
type Extractor struct {
	parser *sourceParser
}

// New builds an Extractor.
func New() *Extractor {
	return &Extractor{parser: newSourceParser()}
}

// Extract runs the full single-pass walk over one file's source text,
// returning its RawImportExport.
func (e *Extractor) Extract(path string, content []byte) (*symbol.RawImportExport, error) {
	tree, err := e.parser.parse(path, content)
	if err != nil {
		return nil, err
	}

	raw := symbol.NewRawImportExport(path)
	root := tree.RootNode()

	markerLines := collectAllowUnusedMarkerLines(root, content)

	walkNode(root, func(node *sitter.Node) {
		switch node.Type() {
		case "import_statement":
			extractImportStatement(node, content, raw)
		case "export_statement":
			extractExportStatement(node, content, raw, markerLines)
		case "call_expression":
			extractCallExpression(node, content, raw)
		}
	})

	scopes := BuildScopes(root, content)
	raw.Warnings = append(raw.Warnings, scopes.Diagnostics...)

	return raw, nil
}

// collectAllowUnusedMarkerLines returns the set of source lines that
// immediately follow a comment containing @ALLOW-UNUSED-EXPORT; an
// export declaration starting on one of them carries the marker.
func collectAllowUnusedMarkerLines(root *sitter.Node, content []byte) map[uint32]bool {
	lines := make(map[uint32]bool)
	walkNode(root, func(node *sitter.Node) {
		if node.Type() != "comment" {
			return
		}
		text := nodeText(node, content)
		if !strings.Contains(text, AllowUnusedMarker) {
			return
		}
		lines[node.EndPoint().Row+1] = true
	})
	return lines
}

func hasAllowUnusedMarker(node *sitter.Node, markerLines map[uint32]bool) bool {
	return markerLines[node.StartPoint().Row]
}

// ---- imports ----

func extractImportStatement(node *sitter.Node, content []byte, raw *symbol.RawImportExport) {
	if requireClause := firstNamedChildOfType(node, "import_require_clause"); requireClause != nil {
		// import x = require("p"): the string lives inside the clause,
		// not in the statement's source field.
		if module, ok := extractStringLiteral(firstNamedChildOfType(requireClause, "string"), content); ok {
			raw.AddDynamicImport(module)
		}
		return
	}

	sourceNode := node.ChildByFieldName("source")
	module, ok := extractStringLiteral(sourceNode, content)
	if !ok {
		return
	}

	clause := firstNamedChildOfType(node, "import_clause")
	if clause == nil {
		// import "p" with no bindings: a pure side-effect import.
		raw.AddExecuted(module)
		return
	}

	matched := false
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case "identifier":
			raw.AddDefaultImport(module)
			matched = true
		case "namespace_import":
			raw.AddNamespaceImport(module)
			matched = true
		case "named_imports":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				name := spec.ChildByFieldName("name")
				if name == nil {
					continue
				}
				raw.AddNamedImport(module, nodeText(name, content))
				matched = true
			}
		}
	}
	if !matched {
		raw.AddExecuted(module)
	}
}

// ---- exports ----

func extractExportStatement(node *sitter.Node, content []byte, raw *symbol.RawImportExport, markerLines map[uint32]bool) {
	meta := symbol.ExportMeta{
		Span:        nodeSpan(node),
		AllowUnused: hasAllowUnusedMarker(node, markerLines),
	}

	sourceNode := node.ChildByFieldName("source")
	module, hasSource := extractStringLiteral(sourceNode, content)

	if isDefaultExport(node, content) {
		declNode := node.ChildByFieldName("declaration")
		if declNode == nil {
			declNode = node.ChildByFieldName("value")
		}
		meta.IsTypeOnly = declNode != nil && declNode.Type() == "interface_declaration"
		raw.AddExport(symbol.Default(), meta)
		return
	}

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		extractDeclarationExport(decl, content, raw, meta)
		return
	}

	if namespaceExport := firstNamedChildOfType(node, "namespace_export"); namespaceExport != nil && hasSource {
		alias := firstNamedChildOfType(namespaceExport, "identifier")
		re := symbol.ReExport{Imported: symbol.Namespace()}
		if alias != nil {
			re.HasRename = true
			re.RenamedTo = symbol.Named(nodeText(alias, content))
		}
		raw.AddReExport(module, re, meta)
		return
	}

	if hasStarToken(node) && hasSource {
		raw.AddReExport(module, symbol.ReExport{Imported: symbol.Namespace()}, meta)
		return
	}

	clause := firstNamedChildOfType(node, "export_clause")
	if clause == nil {
		return
	}
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		spec := clause.NamedChild(i)
		if spec.Type() != "export_specifier" {
			continue
		}
		extractExportSpecifier(spec, content, raw, module, hasSource, meta)
	}
}

// isDefaultExport reports whether an export_statement carries the
// "default" keyword as a direct anonymous child token.
func isDefaultExport(node *sitter.Node, content []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "default" {
			return true
		}
	}
	return false
}

// hasStarToken reports whether a bare `export * from "p"` star token is
// a direct child of the statement. The token is anonymous, so the named
// child helpers never see it.
func hasStarToken(node *sitter.Node) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "*" {
			return true
		}
	}
	return false
}

func nodeSpan(node *sitter.Node) symbol.Span {
	start, end := node.StartPoint(), node.EndPoint()
	return symbol.Span{
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column),
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column),
	}
}

func extractDeclarationExport(decl *sitter.Node, content []byte, raw *symbol.RawImportExport, meta symbol.ExportMeta) {
	switch decl.Type() {
	case "interface_declaration", "type_alias_declaration":
		meta.IsTypeOnly = true
		addNamedDeclExport(decl, content, raw, meta)
	case "function_declaration", "class_declaration", "enum_declaration",
		"internal_module", "module", "abstract_class_declaration":
		addNamedDeclExport(decl, content, raw, meta)
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			declarator := decl.NamedChild(i)
			if declarator.Type() != "variable_declarator" {
				continue
			}
			name := declarator.ChildByFieldName("name")
			if name == nil || name.Type() != "identifier" {
				continue
			}
			raw.AddExport(symbol.Named(nodeText(name, content)), meta)
		}
	}
}

func addNamedDeclExport(decl *sitter.Node, content []byte, raw *symbol.RawImportExport, meta symbol.ExportMeta) {
	name := decl.ChildByFieldName("name")
	if name == nil {
		return
	}
	raw.AddExport(symbol.Named(nodeText(name, content)), meta)
}

func extractExportSpecifier(spec *sitter.Node, content []byte, raw *symbol.RawImportExport, module string, hasSource bool, meta symbol.ExportMeta) {
	name := spec.ChildByFieldName("name")
	if name == nil {
		return
	}
	localName := nodeText(name, content)
	alias := spec.ChildByFieldName("alias")
	aliasName := ""
	if alias != nil {
		aliasName = nodeText(alias, content)
	}

	if !hasSource {
		exported := localName
		if aliasName != "" {
			exported = aliasName
		}
		raw.AddExport(symbol.Named(exported), meta)
		return
	}

	imported := symbol.Named(localName)
	re := symbol.ReExport{Imported: imported}
	if aliasName != "" {
		re.HasRename = true
		re.RenamedTo = symbol.Named(aliasName)
	}
	raw.AddReExport(module, re, meta)
}

// ---- require / dynamic import ----

func extractCallExpression(node *sitter.Node, content []byte, raw *symbol.RawImportExport) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}

	args := node.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	module, ok := extractStringLiteral(args.NamedChild(0), content)
	if !ok {
		return
	}

	switch fn.Type() {
	case "identifier":
		if nodeText(fn, content) != "require" {
			return
		}
		if isRequireShadowed(fn, content) {
			return
		}
		raw.AddRequire(module)
	case "import":
		raw.AddDynamicImport(module)
	}
}

func firstNamedChildOfType(node *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		for _, typ := range types {
			if child.Type() == typ {
				return child
			}
		}
	}
	return nil
}
