package parser

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// SyntaxTree is a cleanly parsed source unit. It is owned by a single
// conversion run and must be closed at the end of it.
type SyntaxTree struct {
	Name    string
	Source  []byte
	Grammar Grammar

	tree *ts.Tree
}

// Root returns the program node.
func (t *SyntaxTree) Root() *ts.Node {
	return t.tree.RootNode()
}

// Tree exposes the underlying tree-sitter tree for query execution.
func (t *SyntaxTree) Tree() *ts.Tree {
	return t.tree
}

// Text returns the source text covered by node.
func (t *SyntaxTree) Text(node *ts.Node) string {
	return NodeText(node, t.Source)
}

// Close releases the tree-sitter tree.
func (t *SyntaxTree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// NodeText returns the source text covered by node, or "" for nil.
func NodeText(node *ts.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return node.Utf8Text(source)
}

// SameNode reports whether a and b denote the same syntax node.
func SameNode(a, b *ts.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Kind() == b.Kind()
}

// NamedChildren returns the named children of node in order.
func NamedChildren(node *ts.Node) []*ts.Node {
	if node == nil {
		return nil
	}
	count := node.NamedChildCount()
	children := make([]*ts.Node, 0, count)
	for i := uint(0); i < count; i++ {
		if child := node.NamedChild(i); child != nil {
			children = append(children, child)
		}
	}
	return children
}

// FindChildByKind returns the first direct child of the given kind.
func FindChildByKind(node *ts.Node, kind string) *ts.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// Walk visits node and its descendants depth-first in document order.
// Returning false from visit skips the node's children.
func Walk(node *ts.Node, visit func(*ts.Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		Walk(node.Child(i), visit)
	}
}

// Position returns the 1-based line and column of node's start.
func Position(node *ts.Node) (line, column int) {
	pos := node.StartPosition()
	return int(pos.Row) + 1, int(pos.Column) + 1
}
