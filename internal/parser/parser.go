// Package parser refines the provided-declaration sets of source files
// using tree-sitter. The byte-level lexer stays authoritative; a clean
// parse only adds declaration names the heuristics missed.
package parser

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Parser wraps a tree-sitter parser for C and C++ sources.
type Parser struct {
	inner *sitter.Parser
}

// New creates a parser.
func New() *Parser {
	return &Parser{inner: sitter.NewParser()}
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	p.inner.Close()
}

func languageFor(path string) *sitter.Language {
	if strings.ToLower(filepath.Ext(path)) == ".c" {
		return c.GetLanguage()
	}
	// Headers are parsed as C++, a near superset at declaration level.
	return cpp.GetLanguage()
}

// Declarations parses content and returns the names it declares at any
// scope level. Returns nil without error when the tree contains parse
// errors; callers fall back to the lexer's view.
func (p *Parser) Declarations(ctx context.Context, path string, content []byte) ([]string, error) {
	p.inner.SetLanguage(languageFor(path))
	tree, err := p.inner.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, nil
	}

	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	// Iterative pre-order walk; include trees can be arbitrarily deep
	// but syntax trees are too, with heavily nested templates.
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch node.Type() {
		case "function_definition", "declaration", "field_declaration", "type_definition":
			if d := node.ChildByFieldName("declarator"); d != nil {
				add(declaratorName(d, content))
			}
		case "struct_specifier", "class_specifier", "union_specifier", "enum_specifier":
			if n := node.ChildByFieldName("name"); n != nil {
				add(n.Content(content))
			}
		case "alias_declaration", "namespace_definition", "concept_definition":
			if n := node.ChildByFieldName("name"); n != nil {
				add(n.Content(content))
			}
		case "enumerator":
			if n := node.ChildByFieldName("name"); n != nil {
				add(n.Content(content))
			}
		}

		for i := int(node.NamedChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, node.NamedChild(i))
		}
	}
	return names, nil
}

// declaratorName digs through pointer, reference, array and function
// declarators to the declared identifier.
func declaratorName(node *sitter.Node, content []byte) string {
	for node != nil {
		switch node.Type() {
		case "identifier", "field_identifier", "type_identifier", "operator_name":
			return node.Content(content)
		case "qualified_identifier":
			if n := node.ChildByFieldName("name"); n != nil {
				node = n
				continue
			}
			return ""
		}
		if d := node.ChildByFieldName("declarator"); d != nil {
			node = d
			continue
		}
		return ""
	}
	return ""
}
