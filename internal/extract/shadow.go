package extract

import sitter "github.com/smacker/go-tree-sitter"

// scopeBoundary is every node type that introduces a new lexical
// scope: functions, blocks, and the looping/catch forms that bind
// their own names.
var scopeBoundary = map[string]bool{
	"function_declaration":    true,
	"function_expression":     true,
	"arrow_function":          true,
	"generator_function":      true,
	"method_definition":       true,
	"statement_block":         true,
	"for_statement":           true,
	"for_in_statement":        true,
	"while_statement":         true,
	"do_statement":            true,
	"catch_clause":            true,
}

// isRequireShadowed walks the scope chain from callee upward, stopping
// at the program root, and reports whether any enclosing scope
// (function parameter, variable/const/let binding, or catch binding)
// declares an identifier named "require". Rather than a full binding
// resolver keyed by declaration site, a nested scope that
// re-declares "require" is treated as shadowing every use within it,
// which matches the common shadowing patterns (a parameter or local
// reassignment named require) without requiring def-use edges.
func isRequireShadowed(callee *sitter.Node, content []byte) bool {
	for ancestor := callee.Parent(); ancestor != nil; ancestor = ancestor.Parent() {
		if ancestor.Type() == "program" {
			return false
		}
		if !scopeBoundary[ancestor.Type()] {
			continue
		}
		if scopeDeclaresRequire(ancestor, content) {
			return true
		}
	}
	return false
}

// scopeDeclaresRequire checks whether a scope-introducing node
// directly declares a "require" binding: a function parameter, a
// lexical/variable declarator name, or a catch clause's bound
// identifier. It does not recurse into nested scope boundaries, since
// those declarations belong to a narrower scope.
func scopeDeclaresRequire(scope *sitter.Node, content []byte) bool {
	switch scope.Type() {
	case "function_declaration", "function_expression", "arrow_function",
		"generator_function", "method_definition":
		params := scope.ChildByFieldName("parameters")
		if params != nil && containsIdentifierNamed(params, content, "require", true) {
			return true
		}
		name := scope.ChildByFieldName("name")
		if name != nil && nodeText(name, content) == "require" {
			return true
		}
		return false
	case "catch_clause":
		param := scope.ChildByFieldName("parameter")
		return param != nil && containsIdentifierNamed(param, content, "require", true)
	default:
		return declaresRequireInBlock(scope, content)
	}
}

// declaresRequireInBlock scans a block-like scope's direct statement
// children for a variable declarator binding named "require", without
// descending into nested scope-introducing statements.
func declaresRequireInBlock(scope *sitter.Node, content []byte) bool {
	found := false
	for i := 0; i < int(scope.NamedChildCount()); i++ {
		child := scope.NamedChild(i)
		if scopeBoundary[child.Type()] {
			continue
		}
		if child.Type() == "lexical_declaration" || child.Type() == "variable_declaration" {
			for j := 0; j < int(child.NamedChildCount()); j++ {
				decl := child.NamedChild(j)
				if decl.Type() != "variable_declarator" {
					continue
				}
				name := decl.ChildByFieldName("name")
				if name != nil && containsIdentifierNamed(name, content, "require", true) {
					found = true
				}
			}
		}
	}
	return found
}

// containsIdentifierNamed reports whether node (an identifier or a
// destructuring pattern) binds the given name anywhere within it.
func containsIdentifierNamed(node *sitter.Node, content []byte, name string, includeRoot bool) bool {
	if includeRoot && node.Type() == "identifier" && nodeText(node, content) == name {
		return true
	}
	match := false
	walkNode(node, func(n *sitter.Node) {
		if n.Type() == "identifier" && nodeText(n, content) == name {
			match = true
		}
	})
	return match
}
