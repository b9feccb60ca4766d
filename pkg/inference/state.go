package inference

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/extractor"
	"github.com/gnana997/tsxify/pkg/parser"
)

// HookCall is a call expression found by the hooks query.
type HookCall struct {
	Call      *ts.Node
	Callee    *ts.Node
	Arguments *ts.Node
}

// StateHint is a type argument to add to a state hook call.
type StateHint struct {
	Hook string
	// Callee is the node the type argument is inserted after.
	Callee       *ts.Node
	TypeArgument string
	Line         int
	Column       int
}

// intrinsicElements maps lowercase tags to their DOM element types.
var intrinsicElements = map[string]string{
	"a":        "HTMLAnchorElement",
	"audio":    "HTMLAudioElement",
	"button":   "HTMLButtonElement",
	"canvas":   "HTMLCanvasElement",
	"dialog":   "HTMLDialogElement",
	"div":      "HTMLDivElement",
	"form":     "HTMLFormElement",
	"h1":       "HTMLHeadingElement",
	"h2":       "HTMLHeadingElement",
	"h3":       "HTMLHeadingElement",
	"h4":       "HTMLHeadingElement",
	"h5":       "HTMLHeadingElement",
	"h6":       "HTMLHeadingElement",
	"iframe":   "HTMLIFrameElement",
	"img":      "HTMLImageElement",
	"input":    "HTMLInputElement",
	"label":    "HTMLLabelElement",
	"li":       "HTMLLIElement",
	"ol":       "HTMLOListElement",
	"p":        "HTMLParagraphElement",
	"select":   "HTMLSelectElement",
	"span":     "HTMLSpanElement",
	"svg":      "SVGSVGElement",
	"table":    "HTMLTableElement",
	"textarea": "HTMLTextAreaElement",
	"ul":       "HTMLUListElement",
	"video":    "HTMLVideoElement",
}

// InferStates derives type arguments for useState and useRef calls inside
// desc. It only runs at the Advanced level; calls that already carry type
// arguments or whose type cannot be derived are skipped.
func (inf *Inferencer) InferStates(tree *parser.SyntaxTree, desc *extractor.ComponentDescriptor, shape *Shape, calls []HookCall) []StateHint {
	if inf.level != config.LevelAdvanced || desc.Body == nil {
		return nil
	}

	var hints []StateHint
	for _, call := range calls {
		if !within(call.Call, desc.Body) {
			continue
		}
		hook := hookName(call.Callee, tree)
		if hook == "" {
			continue
		}
		if call.Call.ChildByFieldName("type_arguments") != nil {
			continue
		}

		var typeArg string
		switch hook {
		case "useState":
			typeArg = inf.stateType(tree, desc, shape, call)
		case "useRef":
			typeArg = inf.refType(tree, desc, call)
		}
		if typeArg == "" {
			continue
		}

		line, col := parser.Position(call.Call)
		hints = append(hints, StateHint{
			Hook:         hook,
			Callee:       call.Callee,
			TypeArgument: typeArg,
			Line:         line,
			Column:       col,
		})
	}

	inf.logger.Debug("inferred state hooks", "component", desc.Name, "hints", len(hints))
	return hints
}

// hookName returns "useState" or "useRef" for `useState` and
// `React.useState` callees, "" otherwise.
func hookName(callee *ts.Node, tree *parser.SyntaxTree) string {
	name := callee
	if callee.Kind() == "member_expression" {
		name = callee.ChildByFieldName("property")
	}
	switch text := tree.Text(name); text {
	case "useState", "useRef":
		return text
	}
	return ""
}

func firstArgument(call HookCall) *ts.Node {
	for _, arg := range parser.NamedChildren(call.Arguments) {
		if arg.Kind() != "comment" {
			return arg
		}
	}
	return nil
}

func (inf *Inferencer) stateType(tree *parser.SyntaxTree, desc *extractor.ComponentDescriptor, shape *Shape, call HookCall) string {
	init := firstArgument(call)
	if init == nil {
		return ""
	}
	if isNullish(init, tree.Source) {
		return "any"
	}
	if lit, ok := literalKind(init, tree.Source); ok {
		if lit.kind == KindFunction {
			// Lazy initializers are typed by their return value.
			return ""
		}
		return literalType(lit, tree.Source)
	}

	for _, site := range desc.UsageSites {
		if site.IsBinding() || !parser.SameNode(site.Ref, init) {
			continue
		}
		if p := shape.Lookup(site.Property); p != nil && p.Kind != KindUnknown {
			return p.TypeExpr()
		}
		break
	}
	return ""
}

func (inf *Inferencer) refType(tree *parser.SyntaxTree, desc *extractor.ComponentDescriptor, call HookCall) string {
	init := firstArgument(call)
	if init != nil && !isNullish(init, tree.Source) {
		if lit, ok := literalKind(init, tree.Source); ok && lit.kind != KindFunction {
			return literalType(lit, tree.Source)
		}
		return ""
	}

	declarator := call.Call.Parent()
	if declarator == nil || declarator.Kind() != "variable_declarator" {
		return "any"
	}
	name := declarator.ChildByFieldName("name")
	if name == nil || name.Kind() != "identifier" {
		return "any"
	}
	if element := refTarget(tree, desc.Body, tree.Text(name)); element != "" {
		return element
	}
	return "any"
}

// refTarget finds the element a `ref={name}` attribute is placed on and
// returns its DOM type.
func refTarget(tree *parser.SyntaxTree, body *ts.Node, name string) string {
	var target string
	parser.Walk(body, func(n *ts.Node) bool {
		if target != "" {
			return false
		}
		if n.Kind() != "jsx_attribute" {
			return true
		}
		children := parser.NamedChildren(n)
		if len(children) < 2 || tree.Text(children[0]) != "ref" || children[1].Kind() != "jsx_expression" {
			return false
		}
		value := parser.NamedChildren(children[1])
		if len(value) != 1 || value[0].Kind() != "identifier" || tree.Text(value[0]) != name {
			return false
		}

		element := n.Parent()
		if element == nil {
			return false
		}
		tag := tree.Text(element.ChildByFieldName("name"))
		if tag == "" || tag[0] < 'a' || tag[0] > 'z' {
			target = "HTMLElement"
			return false
		}
		if t, ok := intrinsicElements[tag]; ok {
			target = t
		} else {
			target = "HTMLElement"
		}
		return false
	})
	return target
}

func within(n, outer *ts.Node) bool {
	return n.StartByte() >= outer.StartByte() && n.EndByte() <= outer.EndByte()
}
