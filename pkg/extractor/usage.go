package extractor

import (
	"sort"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsxify/pkg/diagnostics"
	"github.com/gnana997/tsxify/pkg/parser"
)

// usageCollector gathers the usage sites of one component.
type usageCollector struct {
	desc  *ComponentDescriptor
	tree  *parser.SyntaxTree
	diags *diagnostics.Collector

	// locals maps destructured local names to property names.
	locals map[string]string
	// bagPatterns are body patterns destructuring the bag; the names they
	// bind do not shadow the bag's own locals.
	bagPatterns []*ts.Node
	sites       []UsageSite
}

func collectUsage(desc *ComponentDescriptor, tree *parser.SyntaxTree, diags *diagnostics.Collector) {
	c := &usageCollector{
		desc:   desc,
		tree:   tree,
		diags:  diags,
		locals: make(map[string]string),
	}

	switch desc.Bag.Kind {
	case BagDestructured:
		c.bindPattern(desc.Bag.Pattern, true)
	case BagNamed:
		c.collectBagReads(func(obj *ts.Node) bool {
			return obj.Kind() == "identifier" && tree.Text(obj) == desc.Bag.Name
		})
	case BagThisProps:
		c.collectBagReads(c.isThisProps)
	}

	if len(c.locals) > 0 {
		c.collectLocalRefs()
	}

	sort.SliceStable(c.sites, func(i, j int) bool {
		return c.sites[i].offset < c.sites[j].offset
	})
	desc.UsageSites = c.sites
}

func (c *usageCollector) isThisProps(obj *ts.Node) bool {
	if obj.Kind() != "member_expression" {
		return false
	}
	base := obj.ChildByFieldName("object")
	prop := obj.ChildByFieldName("property")
	return base != nil && base.Kind() == "this" && c.tree.Text(prop) == "props"
}

// collectBagReads records bag.prop reads and `const { a } = bag`
// destructurings inside the component body.
func (c *usageCollector) collectBagReads(isBag func(*ts.Node) bool) {
	tracked := func(name string) bool { return name == c.desc.Bag.Name }
	c.walkScoped(c.desc.Body, tracked, func(n *ts.Node, shadowed map[string]bool) bool {
		switch n.Kind() {
		case "member_expression":
			obj := n.ChildByFieldName("object")
			prop := n.ChildByFieldName("property")
			if obj != nil && prop != nil && prop.Kind() == "property_identifier" && c.isLiveBag(obj, isBag, shadowed) {
				c.addRef(c.tree.Text(prop), n)
				return false
			}
		case "variable_declarator":
			name := n.ChildByFieldName("name")
			value := n.ChildByFieldName("value")
			if name != nil && value != nil && name.Kind() == "object_pattern" && c.isLiveBag(value, isBag, shadowed) {
				c.bagPatterns = append(c.bagPatterns, name)
				c.bindPattern(name, false)
			}
		}
		return true
	})
}

func (c *usageCollector) isLiveBag(obj *ts.Node, isBag func(*ts.Node) bool, shadowed map[string]bool) bool {
	if obj.Kind() == "identifier" && shadowed[c.tree.Text(obj)] {
		return false
	}
	return isBag(obj)
}

// bindPattern records binding sites for each entry of an object pattern.
// Rest elements mark the bag open when the pattern is the parameter itself.
func (c *usageCollector) bindPattern(pattern *ts.Node, isParameter bool) {
	for _, entry := range parser.NamedChildren(pattern) {
		switch entry.Kind() {
		case "shorthand_property_identifier_pattern":
			name := c.tree.Text(entry)
			c.locals[name] = name
			c.addBinding(name, entry, nil, nil)

		case "object_assignment_pattern":
			left := entry.ChildByFieldName("left")
			right := entry.ChildByFieldName("right")
			if left == nil {
				continue
			}
			if left.Kind() == "shorthand_property_identifier_pattern" {
				name := c.tree.Text(left)
				c.locals[name] = name
				c.addBinding(name, entry, right, nil)
			}

		case "pair_pattern":
			c.bindPair(entry)

		case "rest_pattern":
			if isParameter {
				c.desc.Bag.Open = true
			}
		}
	}
}

func (c *usageCollector) bindPair(entry *ts.Node) {
	key := entry.ChildByFieldName("key")
	value := entry.ChildByFieldName("value")
	if key == nil || value == nil {
		return
	}

	var prop string
	switch key.Kind() {
	case "property_identifier":
		prop = c.tree.Text(key)
	case "string":
		prop = unquoteString(c.tree.Text(key))
	default:
		line, col := parser.Position(key)
		c.diags.Warn(diagnostics.CodeUnsupportedConstruct, line, col, c.desc.Name,
			"computed property %s in input pattern of %s is not typed", c.tree.Text(key), c.desc.Name)
		return
	}

	var def *ts.Node
	if value.Kind() == "assignment_pattern" {
		def = value.ChildByFieldName("right")
		value = value.ChildByFieldName("left")
		if value == nil {
			return
		}
	}

	switch value.Kind() {
	case "identifier":
		c.locals[c.tree.Text(value)] = prop
		c.addBinding(prop, entry, def, nil)
	case "object_pattern", "array_pattern":
		c.addBinding(prop, entry, def, value)
	default:
		c.addBinding(prop, entry, def, nil)
	}
}

// collectLocalRefs records every read of a destructured local that is not
// hidden by a redeclaration in a nested scope.
func (c *usageCollector) collectLocalRefs() {
	tracked := func(name string) bool {
		_, ok := c.locals[name]
		return ok
	}
	c.walkScoped(c.desc.Body, tracked, func(n *ts.Node, shadowed map[string]bool) bool {
		if n.Kind() != "identifier" {
			return true
		}
		name := c.tree.Text(n)
		prop, ok := c.locals[name]
		if ok && !shadowed[name] && !isDeclarationName(n) {
			c.addRef(prop, n)
		}
		return false
	})
}

// walkScoped walks root depth-first. visit receives the tracked names that
// an enclosing nested scope redeclares; declarations made directly by root
// never shadow. Returning false skips the node's children.
func (c *usageCollector) walkScoped(root *ts.Node, tracked func(string) bool, visit func(*ts.Node, map[string]bool) bool) {
	var walk func(n *ts.Node, shadowed map[string]bool)
	walk = func(n *ts.Node, shadowed map[string]bool) {
		if !parser.SameNode(n, root) {
			shadowed = c.shadow(n, tracked, shadowed)
		}
		if !visit(n, shadowed) {
			return
		}
		for _, child := range parser.NamedChildren(n) {
			walk(child, shadowed)
		}
	}
	if root != nil {
		walk(root, nil)
	}
}

// shadow returns shadowed extended with the tracked names n declares for
// its own scope. The input map is never modified.
func (c *usageCollector) shadow(n *ts.Node, tracked func(string) bool, shadowed map[string]bool) map[string]bool {
	out, copied := shadowed, false
	for _, name := range c.scopeDeclarations(n) {
		if !tracked(name) || out[name] {
			continue
		}
		if !copied {
			out = make(map[string]bool, len(shadowed)+1)
			for k := range shadowed {
				out[k] = true
			}
			copied = true
		}
		out[name] = true
	}
	return out
}

// scopeDeclarations lists the names n introduces when n opens a scope:
// function parameters, block-level declarations, catch parameters and
// loop variables.
func (c *usageCollector) scopeDeclarations(n *ts.Node) []string {
	switch n.Kind() {
	case "arrow_function":
		if p := n.ChildByFieldName("parameter"); p != nil {
			return c.patternNames(p, nil)
		}
		return c.parameterNames(n.ChildByFieldName("parameters"))
	case "function_expression", "function", "function_declaration",
		"generator_function", "generator_function_declaration", "method_definition":
		return c.parameterNames(n.ChildByFieldName("parameters"))
	case "statement_block", "switch_case", "switch_default":
		var names []string
		for _, stmt := range parser.NamedChildren(n) {
			names = append(names, c.statementDeclarations(stmt)...)
		}
		return names
	case "catch_clause":
		if p := n.ChildByFieldName("parameter"); p != nil {
			return c.patternNames(p, nil)
		}
	case "for_statement":
		if init := n.ChildByFieldName("initializer"); init != nil {
			return c.statementDeclarations(init)
		}
	case "for_in_statement":
		if n.ChildByFieldName("kind") != nil {
			return c.patternNames(n.ChildByFieldName("left"), nil)
		}
	}
	return nil
}

func (c *usageCollector) statementDeclarations(stmt *ts.Node) []string {
	switch stmt.Kind() {
	case "lexical_declaration", "variable_declaration":
		var names []string
		for _, decl := range parser.NamedChildren(stmt) {
			if decl.Kind() != "variable_declarator" {
				continue
			}
			name := decl.ChildByFieldName("name")
			if name == nil || c.isBagPattern(name) {
				continue
			}
			names = c.patternNames(name, names)
		}
		return names
	case "function_declaration", "class_declaration", "generator_function_declaration":
		if name := stmt.ChildByFieldName("name"); name != nil {
			return []string{c.tree.Text(name)}
		}
	}
	return nil
}

func (c *usageCollector) parameterNames(params *ts.Node) []string {
	if params == nil {
		return nil
	}
	var names []string
	for _, p := range parser.NamedChildren(params) {
		if p.Kind() == "required_parameter" || p.Kind() == "optional_parameter" {
			p = p.ChildByFieldName("pattern")
		}
		names = c.patternNames(p, names)
	}
	return names
}

// patternNames appends the identifiers a binding pattern declares.
func (c *usageCollector) patternNames(p *ts.Node, names []string) []string {
	if p == nil {
		return names
	}
	switch p.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		return append(names, c.tree.Text(p))
	case "pair_pattern":
		return c.patternNames(p.ChildByFieldName("value"), names)
	case "object_assignment_pattern", "assignment_pattern":
		return c.patternNames(p.ChildByFieldName("left"), names)
	case "object_pattern", "array_pattern", "rest_pattern":
		for _, child := range parser.NamedChildren(p) {
			names = c.patternNames(child, names)
		}
	}
	return names
}

func (c *usageCollector) isBagPattern(n *ts.Node) bool {
	for _, p := range c.bagPatterns {
		if parser.SameNode(p, n) {
			return true
		}
	}
	return false
}

// isDeclarationName reports whether an identifier is being declared rather
// than read.
func isDeclarationName(n *ts.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	switch parent.Kind() {
	case "variable_declarator", "function_declaration", "class_declaration":
		return parser.SameNode(parent.ChildByFieldName("name"), n)
	case "formal_parameters", "required_parameter", "optional_parameter", "rest_pattern", "array_pattern":
		return true
	case "assignment_pattern":
		return parser.SameNode(parent.ChildByFieldName("left"), n)
	case "arrow_function":
		return parser.SameNode(parent.ChildByFieldName("parameter"), n)
	}
	return false
}

func (c *usageCollector) addBinding(prop string, at, def, nested *ts.Node) {
	line, col := parser.Position(at)
	c.sites = append(c.sites, UsageSite{
		Property: prop,
		Default:  def,
		Nested:   nested,
		Line:     line,
		Column:   col,
		offset:   at.StartByte(),
	})
}

func (c *usageCollector) addRef(prop string, ref *ts.Node) {
	line, col := parser.Position(ref)
	c.sites = append(c.sites, UsageSite{
		Property: prop,
		Ref:      ref,
		Line:     line,
		Column:   col,
		offset:   ref.StartByte(),
	})
}

// unquoteString strips matching single, double or backtick quotes.
func unquoteString(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && strings.ContainsRune(`"'`+"`", rune(first)) {
			return s[1 : len(s)-1]
		}
	}
	return s
}
