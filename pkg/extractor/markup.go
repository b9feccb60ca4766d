package extractor

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsxify/pkg/parser"
)

// returnsMarkup reports whether a function body produces markup: an
// expression body containing markup, or a block with a return statement
// (outside nested functions) whose value contains markup.
func returnsMarkup(body *ts.Node) bool {
	if body == nil {
		return false
	}
	if body.Kind() != "statement_block" {
		return containsMarkup(body)
	}

	found := false
	parser.Walk(body, func(n *ts.Node) bool {
		if found || isNestedScope(n) {
			return false
		}
		if n.Kind() == "return_statement" {
			found = containsMarkup(n)
			return false
		}
		return true
	})
	return found
}

// containsMarkup recursively checks if any descendant is a markup element.
func containsMarkup(node *ts.Node) bool {
	found := false
	parser.Walk(node, func(n *ts.Node) bool {
		if found {
			return false
		}
		switch n.Kind() {
		case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
			found = true
			return false
		}
		return true
	})
	return found
}

func isNestedScope(n *ts.Node) bool {
	switch n.Kind() {
	case "function_declaration", "function_expression", "function", "arrow_function",
		"generator_function", "generator_function_declaration",
		"method_definition", "class", "class_declaration":
		return true
	}
	return false
}
