// Package depscan extracts dependency declarations from C++ test sources and
// resolves them into transitive dependency closures.
package depscan

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// DeclarationKind distinguishes the three recognized dependency forms.
type DeclarationKind int

const (
	KindTestNeeds DeclarationKind = iota
	KindSystemInclude
	KindLocalInclude
)

// Declaration is a single dependency declared in a source file.
type Declaration struct {
	Path string
	Kind DeclarationKind
}

// declarationMatcher inspects one preprocessor directive node and returns a
// declaration if the node encodes a recognized dependency form.
type declarationMatcher func(node *sitter.Node, source []byte) (Declaration, bool)

// Matchers are tried in priority order; the first match wins.
var declarationMatchers = []declarationMatcher{
	matchTestNeeds,
	matchSystemInclude,
	matchLocalInclude,
}

// ScanSource parses C++ source code and extracts its dependency declarations
// in document order.
func ScanSource(source []byte) ([]Declaration, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(cpp.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse C++ code: %w", err)
	}
	defer tree.Close()

	return extractDeclarations(tree.RootNode(), source), nil
}

func extractDeclarations(rootNode *sitter.Node, source []byte) []Declaration {
	var decls []Declaration

	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}

		switch n.Type() {
		case "preproc_include", "preproc_call":
			for _, match := range declarationMatchers {
				if decl, ok := match(n, source); ok {
					decls = append(decls, decl)
					break
				}
			}
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}

	walk(rootNode)
	return decls
}

// matchTestNeeds recognizes the explicit test annotation
// #pragma test needs("path/to/file.ext").
func matchTestNeeds(node *sitter.Node, source []byte) (Declaration, bool) {
	if node.Type() != "preproc_call" {
		return Declaration{}, false
	}

	directive := node.ChildByFieldName("directive")
	if directive == nil {
		return Declaration{}, false
	}
	name := strings.TrimSpace(strings.TrimPrefix(directive.Content(source), "#"))
	if name != "pragma" {
		return Declaration{}, false
	}

	argument := node.ChildByFieldName("argument")
	if argument == nil {
		return Declaration{}, false
	}

	path, ok := parseNeedsArgument(argument.Content(source))
	if !ok || !hasFileExtension(path) {
		return Declaration{}, false
	}

	return Declaration{Path: path, Kind: KindTestNeeds}, true
}

// parseNeedsArgument extracts the quoted path from a pragma argument of the
// form `test needs("path")`.
func parseNeedsArgument(arg string) (string, bool) {
	rest := strings.TrimSpace(arg)
	if !strings.HasPrefix(rest, "test") {
		return "", false
	}
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "test"))
	if !strings.HasPrefix(rest, "needs") {
		return "", false
	}
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "needs"))
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return "", false
	}

	quoted := strings.TrimSpace(rest[1 : len(rest)-1])
	if len(quoted) < 2 || !strings.HasPrefix(quoted, `"`) || !strings.HasSuffix(quoted, `"`) {
		return "", false
	}

	path := quoted[1 : len(quoted)-1]
	return path, path != ""
}

// matchSystemInclude recognizes #include <path.ext>.
func matchSystemInclude(node *sitter.Node, source []byte) (Declaration, bool) {
	path, ok := includePath(node, source, "system_lib_string", cleanSystemInclude)
	if !ok {
		return Declaration{}, false
	}
	return Declaration{Path: path, Kind: KindSystemInclude}, true
}

// matchLocalInclude recognizes #include "path.ext".
func matchLocalInclude(node *sitter.Node, source []byte) (Declaration, bool) {
	path, ok := includePath(node, source, "string_literal", cleanStringLiteral)
	if !ok {
		return Declaration{}, false
	}
	return Declaration{Path: path, Kind: KindLocalInclude}, true
}

func includePath(node *sitter.Node, source []byte, childType string, clean func(string) string) (string, bool) {
	if node.Type() != "preproc_include" {
		return "", false
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || child.Type() != childType {
			continue
		}
		path := clean(child.Content(source))
		if hasFileExtension(path) {
			return path, true
		}
	}

	return "", false
}

func cleanStringLiteral(raw string) string {
	return strings.Trim(raw, `"' `)
}

func cleanSystemInclude(raw string) string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "<")
	trimmed = strings.TrimSuffix(trimmed, ">")
	return strings.TrimSpace(trimmed)
}

// hasFileExtension reports whether a declared path names a concrete file with
// an extension. Bare system headers such as <vector> carry none and can never
// resolve to project files, so they must not enter the dependency set.
func hasFileExtension(path string) bool {
	if len(path) < 3 {
		return false
	}
	return strings.Contains(path[1:len(path)-1], ".")
}
