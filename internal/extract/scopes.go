package extract

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/ben-ranford/fenceguard/internal/symbol"
)

// HoistKind distinguishes how a declaration's visibility reaches the top
// of its scope: import bindings and function declarations hoist to the
// enclosing scope, let/const bindings stay where they are declared.
type HoistKind int

const (
	HoistImport HoistKind = iota
	HoistFunction
	HoistLexical
)

func (k HoistKind) String() string {
	switch k {
	case HoistImport:
		return "import"
	case HoistFunction:
		return "function"
	default:
		return "lexical"
	}
}

// Declaration is one name bound in a scope.
type Declaration struct {
	Name  string
	Hoist HoistKind
	Span  symbol.Span
}

// Scope is one lexical scope in a file's scope tree. Functions,
// constructors, blocks, catch clauses, and the looping statement forms
// each introduce a child scope.
type Scope struct {
	Parent       *Scope
	Children     []*Scope
	Declarations map[string]Declaration

	// Escaped holds every identifier referenced in this scope (or bubbled
	// up from a child) that no local declaration binds.
	Escaped map[string]bool

	referenced map[string]bool
}

func newScope(parent *Scope) *Scope {
	s := &Scope{
		Parent:       parent,
		Declarations: make(map[string]Declaration),
		Escaped:      make(map[string]bool),
		referenced:   make(map[string]bool),
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// ScopeInfo is the auxiliary name-tracking result: the scope tree plus
// any duplicate-declaration diagnostics. Diagnostics never abort
// extraction; callers surface them as warnings.
type ScopeInfo struct {
	Root        *Scope
	Diagnostics []string
}

// Resolves reports whether name is declared in s or any enclosing scope.
func (s *Scope) Resolves(name string) bool {
	for scope := s; scope != nil; scope = scope.Parent {
		if _, ok := scope.Declarations[name]; ok {
			return true
		}
	}
	return false
}

// BuildScopes runs the per-file variable-scope sub-pass over a parsed
// tree, for diagnostics alongside the main extraction walk.
func BuildScopes(root *sitter.Node, content []byte) *ScopeInfo {
	info := &ScopeInfo{Root: newScope(nil)}
	b := &scopeBuilder{content: content, info: info}
	b.visitChildren(root, info.Root)
	resolveEscapes(info.Root)
	return info
}

type scopeBuilder struct {
	content []byte
	info    *ScopeInfo
}

func (b *scopeBuilder) visitChildren(node *sitter.Node, scope *Scope) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		b.visit(node.NamedChild(i), scope)
	}
}

func (b *scopeBuilder) visit(node *sitter.Node, scope *Scope) {
	switch node.Type() {
	case "import_statement":
		b.declareImportBindings(node, scope)

	case "function_declaration", "generator_function_declaration":
		// Function declarations hoist their name to the enclosing scope;
		// the body and parameters live in a child scope.
		if name := node.ChildByFieldName("name"); name != nil {
			b.declare(scope, nodeText(name, b.content), HoistFunction, name)
		}
		child := newScope(scope)
		b.declareParameters(node, child)
		if body := node.ChildByFieldName("body"); body != nil {
			b.visitChildren(body, child)
		}

	case "function_expression", "arrow_function", "generator_function", "method_definition":
		// A function expression's own name (if any) and its parameters
		// are pre-declared in the child scope, not the enclosing one.
		child := newScope(scope)
		if name := node.ChildByFieldName("name"); name != nil {
			b.declare(child, nodeText(name, b.content), HoistFunction, name)
		}
		b.declareParameters(node, child)
		if body := node.ChildByFieldName("body"); body != nil {
			b.visit(body, child)
		}

	case "statement_block", "class_body":
		b.visitChildren(node, newScope(scope))

	case "for_statement", "for_in_statement", "while_statement", "do_statement":
		b.visitChildren(node, newScope(scope))

	case "catch_clause":
		child := newScope(scope)
		if param := node.ChildByFieldName("parameter"); param != nil {
			b.declarePattern(child, param, HoistLexical)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			b.visitChildren(body, child)
		}

	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			declarator := node.NamedChild(i)
			if declarator.Type() != "variable_declarator" {
				continue
			}
			if name := declarator.ChildByFieldName("name"); name != nil {
				b.declarePattern(scope, name, HoistLexical)
			}
			if value := declarator.ChildByFieldName("value"); value != nil {
				b.visit(value, scope)
			}
		}

	case "identifier":
		scope.referenced[nodeText(node, b.content)] = true

	default:
		b.visitChildren(node, scope)
	}
}

func (b *scopeBuilder) declareImportBindings(node *sitter.Node, scope *Scope) {
	walkNode(node, func(n *sitter.Node) {
		switch n.Type() {
		case "identifier":
			b.declare(scope, nodeText(n, b.content), HoistImport, n)
		case "import_specifier":
			bound := n.ChildByFieldName("alias")
			if bound == nil {
				bound = n.ChildByFieldName("name")
			}
			if bound != nil && bound.Type() == "identifier" {
				b.declare(scope, nodeText(bound, b.content), HoistImport, bound)
			}
		}
	})
}

func (b *scopeBuilder) declareParameters(fn *sitter.Node, scope *Scope) {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		params = fn.ChildByFieldName("parameter")
	}
	if params == nil {
		return
	}
	b.declarePattern(scope, params, HoistLexical)
}

// declarePattern binds every identifier inside a (possibly destructuring)
// binding pattern into scope.
func (b *scopeBuilder) declarePattern(scope *Scope, pattern *sitter.Node, kind HoistKind) {
	if pattern.Type() == "identifier" {
		b.declare(scope, nodeText(pattern, b.content), kind, pattern)
		return
	}
	walkNode(pattern, func(n *sitter.Node) {
		if n.Type() == "identifier" || n.Type() == "shorthand_property_identifier_pattern" {
			b.declare(scope, nodeText(n, b.content), kind, n)
		}
	})
}

func (b *scopeBuilder) declare(scope *Scope, name string, kind HoistKind, node *sitter.Node) {
	if name == "" {
		return
	}
	if prev, ok := scope.Declarations[name]; ok {
		b.info.Diagnostics = append(b.info.Diagnostics, fmt.Sprintf(
			"duplicate declaration of %q (%s hoisting, previously %s) at line %d",
			name, kind, prev.Hoist, node.StartPoint().Row+1))
		return
	}
	scope.Declarations[name] = Declaration{Name: name, Hoist: kind, Span: nodeSpan(node)}
}

// resolveEscapes walks the scope tree bottom-up: every referenced name a
// scope does not declare is marked escaped there and bubbled up to its
// parent as a reference, so an undeclared identifier escapes every scope
// between its use and the root.
func resolveEscapes(scope *Scope) {
	for _, child := range scope.Children {
		resolveEscapes(child)
		for name := range child.Escaped {
			scope.referenced[name] = true
		}
	}
	for name := range scope.referenced {
		if _, ok := scope.Declarations[name]; !ok {
			scope.Escaped[name] = true
		}
	}
}
