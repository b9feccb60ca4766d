package inference

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsxify/pkg/parser"
)

// arrayMembers are members that only arrays provide; reading them is
// iteration evidence.
var arrayMembers = map[string]bool{
	"map": true, "forEach": true, "filter": true, "reduce": true, "reduceRight": true,
	"some": true, "every": true, "find": true, "findIndex": true, "findLast": true,
	"findLastIndex": true, "flatMap": true, "flat": true, "join": true, "sort": true,
	"reverse": true, "push": true, "pop": true, "shift": true, "unshift": true,
	"splice": true,
}

// neutralMembers exist on strings and arrays alike, so they say nothing
// about the kind.
var neutralMembers = map[string]bool{
	"length": true, "includes": true, "indexOf": true, "lastIndexOf": true,
	"slice": true, "concat": true, "at": true, "toString": true, "valueOf": true,
}

// usage is the evidence one reference site provides.
type usage struct {
	kind  Kind
	guard bool
	// call is set when the reference is invoked.
	call *ts.Node
}

// classifyRef inspects the parent of a reading expression.
func classifyRef(ref *ts.Node, source []byte) usage {
	parent := ref.Parent()
	if parent == nil {
		return usage{}
	}

	switch parent.Kind() {
	case "member_expression":
		if !isField(parent, "object", ref) {
			return usage{}
		}
		u := usage{guard: hasOptionalChain(parent)}
		member := parser.NodeText(parent.ChildByFieldName("property"), source)
		switch {
		case arrayMembers[member]:
			u.kind = KindArray
		case neutralMembers[member]:
		default:
			u.kind = KindObject
		}
		return u

	case "subscript_expression":
		if !isField(parent, "object", ref) {
			return usage{}
		}
		u := usage{kind: KindArray, guard: hasOptionalChain(parent)}
		if index := parent.ChildByFieldName("index"); index != nil && index.Kind() == "string" {
			u.kind = KindObject
		}
		return u

	case "call_expression":
		if !isField(parent, "function", ref) {
			return usage{}
		}
		return usage{kind: KindFunction, guard: hasOptionalChain(parent), call: parent}

	case "for_in_statement":
		if !isField(parent, "right", ref) {
			return usage{}
		}
		if parser.FindChildByKind(parent, "of") != nil {
			return usage{kind: KindArray}
		}
		return usage{kind: KindObject}

	case "spread_element":
		switch grand := parent.Parent(); {
		case grand == nil:
		case grand.Kind() == "array" || grand.Kind() == "arguments":
			return usage{kind: KindArray}
		case grand.Kind() == "object" || grand.Kind() == "jsx_expression":
			return usage{kind: KindObject}
		}
		return usage{}

	case "binary_expression":
		switch parser.NodeText(parent.ChildByFieldName("operator"), source) {
		case "&&", "||", "??":
			return usage{guard: isField(parent, "left", ref)}
		}
		return usage{}

	case "ternary_expression":
		return usage{guard: isField(parent, "condition", ref)}

	case "unary_expression":
		return usage{guard: parser.NodeText(parent.ChildByFieldName("operator"), source) == "!"}

	case "parenthesized_expression":
		grand := parent.Parent()
		if grand == nil {
			return usage{}
		}
		switch grand.Kind() {
		case "if_statement", "while_statement", "do_statement":
			return usage{guard: isField(grand, "condition", parent)}
		}
	}
	return usage{}
}

func isField(parent *ts.Node, field string, child *ts.Node) bool {
	return parser.SameNode(parent.ChildByFieldName(field), child)
}

func hasOptionalChain(n *ts.Node) bool {
	return parser.FindChildByKind(n, "optional_chain") != nil
}

// literal describes the static type of a literal expression.
type literal struct {
	kind      Kind
	primitive string
	node      *ts.Node
}

// literalKind classifies a literal. ok is false for null, undefined and
// anything that is not a literal.
func literalKind(node *ts.Node, source []byte) (literal, bool) {
	for node != nil && node.Kind() == "parenthesized_expression" {
		children := parser.NamedChildren(node)
		if len(children) == 0 {
			return literal{}, false
		}
		node = children[0]
	}
	if node == nil {
		return literal{}, false
	}

	switch node.Kind() {
	case "string", "template_string":
		return literal{kind: KindPrimitive, primitive: "string", node: node}, true
	case "number":
		return literal{kind: KindPrimitive, primitive: "number", node: node}, true
	case "true", "false":
		return literal{kind: KindPrimitive, primitive: "boolean", node: node}, true
	case "unary_expression":
		arg := node.ChildByFieldName("argument")
		switch parser.NodeText(node.ChildByFieldName("operator"), source) {
		case "-", "+":
			if arg != nil && arg.Kind() == "number" {
				return literal{kind: KindPrimitive, primitive: "number", node: node}, true
			}
		case "!":
			return literal{kind: KindPrimitive, primitive: "boolean", node: node}, true
		}
	case "array":
		return literal{kind: KindArray, node: node}, true
	case "object":
		return literal{kind: KindObject, node: node}, true
	case "arrow_function", "function_expression", "function":
		return literal{kind: KindFunction, node: node}, true
	}
	return literal{}, false
}

// isNullish reports whether node is null or undefined.
func isNullish(node *ts.Node, source []byte) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "null", "undefined":
		return true
	case "identifier":
		return parser.NodeText(node, source) == "undefined"
	}
	return false
}

// literalType renders the type of a literal, using element types for
// arrays.
func literalType(lit literal, source []byte) string {
	switch lit.kind {
	case KindPrimitive:
		return lit.primitive
	case KindArray:
		if element := elementType(lit.node, source); element != "" {
			return ArrayOf(element)
		}
		return "any[]"
	case KindObject:
		return "Record<string, any>"
	case KindFunction:
		return functionLiteralSignature(lit.node).String()
	}
	return "any"
}

// elementType returns the common element type of an array literal, or ""
// when the array is empty or mixed.
func elementType(array *ts.Node, source []byte) string {
	element := ""
	for _, item := range parser.NamedChildren(array) {
		if item.Kind() == "comment" {
			continue
		}
		lit, ok := literalKind(item, source)
		if !ok || lit.kind == KindArray || lit.kind == KindFunction {
			return ""
		}
		t := literalType(lit, source)
		if element != "" && element != t {
			return ""
		}
		element = t
	}
	return element
}

// functionLiteralSignature derives a signature from a function literal:
// one any per parameter, returning void when the body is an empty block.
func functionLiteralSignature(fn *ts.Node) Signature {
	sig := Signature{Returns: "any"}
	if p := fn.ChildByFieldName("parameter"); p != nil {
		sig.Params = []string{"any"}
	}
	for _, p := range parser.NamedChildren(fn.ChildByFieldName("parameters")) {
		if p.Kind() != "comment" {
			sig.Params = append(sig.Params, "any")
		}
	}
	if body := fn.ChildByFieldName("body"); body != nil && body.Kind() == "statement_block" && !hasValueReturn(body) {
		sig.Returns = "void"
	}
	return sig
}

func hasValueReturn(body *ts.Node) bool {
	found := false
	parser.Walk(body, func(n *ts.Node) bool {
		if found {
			return false
		}
		switch n.Kind() {
		case "arrow_function", "function_expression", "function", "function_declaration", "method_definition":
			return false
		case "return_statement":
			found = len(parser.NamedChildren(n)) > 0
			return false
		}
		return true
	})
	return found
}

// callSignature derives a signature from the first call of a function prop:
// literal argument types and void when the result is discarded.
func callSignature(call *ts.Node, source []byte) *Signature {
	sig := &Signature{Returns: "any"}
	for _, arg := range parser.NamedChildren(call.ChildByFieldName("arguments")) {
		if arg.Kind() == "comment" {
			continue
		}
		t := "any"
		if lit, ok := literalKind(arg, source); ok {
			t = literalType(lit, source)
		}
		sig.Params = append(sig.Params, t)
	}

	if parent := call.Parent(); parent != nil {
		switch parent.Kind() {
		case "expression_statement":
			sig.Returns = "void"
		case "arrow_function":
			if isField(parent, "body", call) {
				sig.Returns = "void"
			}
		}
	}
	return sig
}
