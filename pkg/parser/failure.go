package parser

import (
	"fmt"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// ParseFailure describes why a unit could not be parsed. Line and Column
// are 1-based and point at the first offending token.
type ParseFailure struct {
	Line    int
	Column  int
	Message string
}

func (f *ParseFailure) Error() string {
	return fmt.Sprintf("%d:%d: %s", f.Line, f.Column, f.Message)
}

const maxSnippet = 24

// firstFailure locates the first ERROR or MISSING node in document order.
func firstFailure(root *ts.Node, source []byte) *ParseFailure {
	if node := findFailureNode(root); node != nil {
		pos := node.StartPosition()
		return &ParseFailure{
			Line:    int(pos.Row) + 1,
			Column:  int(pos.Column) + 1,
			Message: describeFailure(node, source),
		}
	}

	pos := root.StartPosition()
	return &ParseFailure{
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column) + 1,
		Message: "syntax error",
	}
}

func findFailureNode(node *ts.Node) *ts.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.IsError() || child.IsMissing() || child.HasError() {
			if found := findFailureNode(child); found != nil {
				return found
			}
		}
	}
	return nil
}

func describeFailure(node *ts.Node, source []byte) string {
	if node.IsMissing() {
		return fmt.Sprintf("missing %q", node.Kind())
	}

	snippet := strings.TrimSpace(node.Utf8Text(source))
	if i := strings.IndexByte(snippet, '\n'); i >= 0 {
		snippet = snippet[:i]
	}
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet] + "..."
	}
	if snippet == "" {
		return "syntax error"
	}
	return fmt.Sprintf("unexpected %q", snippet)
}
