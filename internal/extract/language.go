// Package extract implements the parse-and-extract stage (C3): a
// tree-sitter parse of one source file that produces a
// symbol.RawImportExport, with @ALLOW-UNUSED-EXPORT marker comments
// already applied to the exports they precede.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	tsxlang "github.com/smacker/go-tree-sitter/typescript/tsx"
	tslang "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// sourceParser dispatches to the right tree-sitter grammar by file
// extension.
type sourceParser struct {
	js  *sitter.Language
	ts  *sitter.Language
	tsx *sitter.Language
}

func newSourceParser() *sourceParser {
	return &sourceParser{
		js:  javascript.GetLanguage(),
		ts:  tslang.GetLanguage(),
		tsx: tsxlang.GetLanguage(),
	}
}

func (p *sourceParser) parse(path string, content []byte) (*sitter.Tree, error) {
	lang, err := p.languageForPath(path)
	if err != nil {
		return nil, err
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree := parser.Parse(nil, content)
	if tree == nil {
		return nil, fmt.Errorf("extract: tree-sitter returned nil tree for %s", path)
	}
	return tree, nil
}

func (p *sourceParser) languageForPath(path string) (*sitter.Language, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".cjs", ".mjs", ".jsx":
		return p.js, nil
	case ".ts", ".mts", ".cts":
		return p.ts, nil
	case ".tsx":
		return p.tsx, nil
	default:
		return nil, fmt.Errorf("extract: unsupported extension for %s", path)
	}
}

// SupportedExtensions lists the extensions this extractor can parse.
var SupportedExtensions = map[string]bool{
	".js": true, ".cjs": true, ".mjs": true, ".jsx": true,
	".ts": true, ".mts": true, ".cts": true, ".tsx": true,
}

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

func walkNode(node *sitter.Node, visit func(*sitter.Node)) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		visit(child)
		walkNode(child, visit)
	}
}

// extractStringLiteral returns the unquoted contents of a string node,
// or false if node isn't a plain string literal.
func extractStringLiteral(node *sitter.Node, content []byte) (string, bool) {
	if node == nil || node.Type() != "string" {
		return "", false
	}
	raw := nodeText(node, content)
	if len(raw) < 2 {
		return "", false
	}
	return raw[1 : len(raw)-1], true
}
