package extractor

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsxify/pkg/diagnostics"
	"github.com/gnana997/tsxify/pkg/parser"
)

// Extractor recognises components among the top-level bindings of a tree.
//
// Usage:
//
//	ex := NewExtractor(logger)
//	diags := diagnostics.NewCollector()
//	components := ex.Extract(tree, diags)
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor. Logger can be nil.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract returns one descriptor per component in source order. Each
// top-level binding is classified exactly once; an unsupported binding adds
// a warning and does not affect its siblings.
func (e *Extractor) Extract(tree *parser.SyntaxTree, diags *diagnostics.Collector) []*ComponentDescriptor {
	var components []*ComponentDescriptor

	for _, stmt := range parser.NamedChildren(tree.Root()) {
		for _, c := range e.Classify(tree, stmt, diags) {
			switch c.Verdict {
			case Component:
				components = append(components, c.Descriptor)
			case Unsupported:
				line, col := parser.Position(c.Descriptor.Statement)
				diags.Warn(diagnostics.CodeUnsupportedConstruct, line, col, c.Descriptor.Name, "%s", c.Reason)
			}
		}
	}

	e.logger.Debug("extracted components",
		"file", tree.Name,
		"components", len(components))

	return components
}

// binding is a name bound at the top level together with its value.
type binding struct {
	name      string
	value     *ts.Node
	statement *ts.Node
	isDefault bool
}

// Classify classifies every binding introduced by one top-level statement.
func (e *Extractor) Classify(tree *parser.SyntaxTree, stmt *ts.Node, diags *diagnostics.Collector) []Classification {
	var out []Classification
	for _, b := range bindings(stmt, tree) {
		out = append(out, e.classify(b, tree, diags))
	}
	return out
}

func bindings(stmt *ts.Node, tree *parser.SyntaxTree) []binding {
	switch stmt.Kind() {
	case "function_declaration", "class_declaration":
		name := stmt.ChildByFieldName("name")
		if name == nil {
			return nil
		}
		return []binding{{name: tree.Text(name), value: stmt, statement: stmt}}

	case "lexical_declaration", "variable_declaration":
		var out []binding
		for _, decl := range parser.NamedChildren(stmt) {
			if decl.Kind() != "variable_declarator" {
				continue
			}
			name := decl.ChildByFieldName("name")
			value := decl.ChildByFieldName("value")
			if name == nil || value == nil || name.Kind() != "identifier" {
				continue
			}
			out = append(out, binding{name: tree.Text(name), value: value, statement: stmt})
		}
		return out

	case "export_statement":
		isDefault := parser.FindChildByKind(stmt, "default") != nil
		if decl := stmt.ChildByFieldName("declaration"); decl != nil {
			inner := bindings(decl, tree)
			for i := range inner {
				inner[i].statement = stmt
				inner[i].isDefault = isDefault
			}
			return inner
		}
		if value := stmt.ChildByFieldName("value"); value != nil && isDefault {
			name := defaultExportName(tree.Name)
			if n := value.ChildByFieldName("name"); n != nil {
				name = tree.Text(n)
			}
			return []binding{{name: name, value: value, statement: stmt, isDefault: true}}
		}
	}
	return nil
}

func (e *Extractor) classify(b binding, tree *parser.SyntaxTree, diags *diagnostics.Collector) Classification {
	if !b.isDefault && !isUppercase(b.name) {
		return Classification{Verdict: NotComponent}
	}

	desc := &ComponentDescriptor{Name: b.name, Statement: b.statement}
	desc.Line, desc.Column = parser.Position(b.statement)

	value := unwrapParens(b.value)
	switch value.Kind() {
	case "function_declaration":
		desc.Form = FormFunction
		return e.classifyFunction(desc, value, tree, diags)
	case "function_expression", "function":
		desc.Form = FormFunctionExpression
		return e.classifyFunction(desc, value, tree, diags)
	case "arrow_function":
		desc.Form = FormArrow
		return e.classifyFunction(desc, value, tree, diags)
	case "call_expression":
		fn, form := unwrapWrapper(value, tree.Source)
		if fn == nil {
			return Classification{Verdict: NotComponent}
		}
		desc.Form = form
		return e.classifyFunction(desc, fn, tree, diags)
	case "class_declaration", "class":
		desc.Form = FormClass
		return e.classifyClass(desc, value, tree, diags)
	}
	return Classification{Verdict: NotComponent}
}

// unwrapWrapper unwraps memo(...) and forwardRef(...) calls, including
// memo(forwardRef(...)), down to the wrapped function.
func unwrapWrapper(call *ts.Node, source []byte) (*ts.Node, Form) {
	form := FormMemo
	for depth := 0; depth < 3; depth++ {
		switch callee(call, source) {
		case "forwardRef", "React.forwardRef":
			form = FormForwardRef
		case "memo", "React.memo":
		default:
			return nil, form
		}

		args := parser.NamedChildren(call.ChildByFieldName("arguments"))
		if len(args) == 0 {
			return nil, form
		}
		arg := unwrapParens(args[0])
		switch arg.Kind() {
		case "arrow_function", "function_expression", "function":
			return arg, form
		case "call_expression":
			call = arg
		default:
			return nil, form
		}
	}
	return nil, form
}

func callee(call *ts.Node, source []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	return parser.NodeText(fn, source)
}

func (e *Extractor) classifyFunction(desc *ComponentDescriptor, fn *ts.Node, tree *parser.SyntaxTree, diags *diagnostics.Collector) Classification {
	body := fn.ChildByFieldName("body")
	if body == nil || !returnsMarkup(body) {
		return Classification{Verdict: NotComponent}
	}
	desc.Function = fn
	desc.Body = body

	params, bare := parameterList(fn)
	maxParams := 1
	if desc.Form == FormForwardRef {
		maxParams = 2
	}
	if len(params) > maxParams {
		return Classification{Verdict: NotComponent}
	}
	if len(params) == 0 {
		return Classification{Verdict: Component, Descriptor: desc}
	}

	if reason := analyzeParameter(desc, params[0], bare, tree); reason != "" {
		return Classification{Verdict: Unsupported, Descriptor: desc, Reason: reason}
	}

	collectUsage(desc, tree, diags)
	return Classification{Verdict: Component, Descriptor: desc}
}

// parameterList returns the declared parameters of a function. bare is set
// for a single unparenthesized arrow parameter.
func parameterList(fn *ts.Node) (params []*ts.Node, bare bool) {
	if p := fn.ChildByFieldName("parameter"); p != nil {
		return []*ts.Node{p}, true
	}
	for _, child := range parser.NamedChildren(fn.ChildByFieldName("parameters")) {
		if child.Kind() != "comment" {
			params = append(params, child)
		}
	}
	return params, false
}

func analyzeParameter(desc *ComponentDescriptor, param *ts.Node, bare bool, tree *parser.SyntaxTree) string {
	node := param
	switch node.Kind() {
	case "required_parameter", "optional_parameter":
		desc.AlreadyTyped = node.ChildByFieldName("type") != nil
		node = node.ChildByFieldName("pattern")
	case "assignment_pattern":
		node = node.ChildByFieldName("left")
	}
	if node == nil {
		return fmt.Sprintf("unsupported input parameter in component %s; left untyped", desc.Name)
	}

	switch node.Kind() {
	case "identifier":
		desc.Bag = Bag{Kind: BagNamed, Name: tree.Text(node), Pattern: node, Bare: bare}
	case "object_pattern":
		desc.Bag = Bag{Kind: BagDestructured, Pattern: node}
	default:
		return fmt.Sprintf("unsupported input parameter pattern (%s) in component %s; left untyped",
			strings.ReplaceAll(node.Kind(), "_", " "), desc.Name)
	}
	return ""
}

func (e *Extractor) classifyClass(desc *ComponentDescriptor, cls *ts.Node, tree *parser.SyntaxTree, diags *diagnostics.Collector) Classification {
	heritage := parser.FindChildByKind(cls, "class_heritage")
	if heritage == nil {
		return Classification{Verdict: NotComponent}
	}

	var base *ts.Node
	if ext := parser.FindChildByKind(heritage, "extends_clause"); ext != nil {
		base = ext.ChildByFieldName("value")
		desc.AlreadyTyped = ext.ChildByFieldName("type_arguments") != nil
	} else if children := parser.NamedChildren(heritage); len(children) > 0 {
		base = children[0]
	}
	if base == nil || !isComponentBase(tree.Text(base)) {
		return Classification{Verdict: NotComponent}
	}

	body := cls.ChildByFieldName("body")
	render := findRenderMethod(body, tree.Source)
	if render == nil || !returnsMarkup(render.ChildByFieldName("body")) {
		return Classification{Verdict: NotComponent}
	}

	desc.Function = cls
	desc.Body = body
	desc.Heritage = base
	desc.Bag = Bag{Kind: BagThisProps}

	collectUsage(desc, tree, diags)
	return Classification{Verdict: Component, Descriptor: desc}
}

func isComponentBase(text string) bool {
	text = strings.TrimPrefix(text, "React.")
	return text == "Component" || text == "PureComponent"
}

func findRenderMethod(body *ts.Node, source []byte) *ts.Node {
	for _, member := range parser.NamedChildren(body) {
		if member.Kind() != "method_definition" {
			continue
		}
		if name := member.ChildByFieldName("name"); name != nil && parser.NodeText(name, source) == "render" {
			return member
		}
	}
	return nil
}

func unwrapParens(node *ts.Node) *ts.Node {
	for node != nil && node.Kind() == "parenthesized_expression" {
		inner := parser.NamedChildren(node)
		if len(inner) == 0 {
			break
		}
		node = inner[0]
	}
	return node
}

// isUppercase checks if a string starts with an uppercase letter.
func isUppercase(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// defaultExportName derives a component name for an anonymous default
// export from the unit name: "date-picker.jsx" becomes "DatePicker".
func defaultExportName(unitName string) string {
	base := strings.TrimSuffix(filepath.Base(unitName), filepath.Ext(unitName))

	var b strings.Builder
	upper := true
	for _, r := range base {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}

	name := b.String()
	if name == "" || !unicode.IsLetter([]rune(name)[0]) {
		name = "Component" + name
	}
	return name
}
