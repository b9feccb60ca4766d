package validator

import (
	"strings"
	"unicode"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsxify/pkg/parser"
)

// fragmentTag names fragments (<>...</>) in extractions.
const fragmentTag = "<>"

// Element is one markup element of a unit.
type Element struct {
	Tag string `json:"tag"`
	// Attributes are attribute names in source order; spreads are "...".
	Attributes  []string `json:"attributes,omitempty"`
	Component   bool     `json:"component"`
	HasChildren bool     `json:"has_children"`
	// Parent is the nearest enclosing component ("" if none).
	Parent string `json:"parent,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// ImportInfo is one import statement.
type ImportInfo struct {
	Source      string   `json:"source"`
	Names       []string `json:"names,omitempty"`
	DefaultName string   `json:"default_name,omitempty"`
	Line        int      `json:"line"`
}

// MarkupExtraction holds the markup elements and imports of a unit, in
// document order.
type MarkupExtraction struct {
	Elements []Element
	Imports  []ImportInfo
}

// ExtractMarkup walks a syntax tree and collects its markup and imports.
func ExtractMarkup(root *ts.Node, source []byte) *MarkupExtraction {
	result := &MarkupExtraction{}
	extractImports(root, source, result)

	var parents []string
	walkMarkup(root, source, &parents, result)
	return result
}

func extractImports(root *ts.Node, source []byte, result *MarkupExtraction) {
	for _, stmt := range parser.NamedChildren(root) {
		if stmt.Kind() != "import_statement" {
			continue
		}
		info := ImportInfo{Line: int(stmt.StartPosition().Row) + 1}
		if src := stmt.ChildByFieldName("source"); src != nil {
			info.Source = unquote(parser.NodeText(src, source))
		}
		if clause := parser.FindChildByKind(stmt, "import_clause"); clause != nil {
			for _, part := range parser.NamedChildren(clause) {
				switch part.Kind() {
				case "identifier":
					info.DefaultName = parser.NodeText(part, source)
				case "named_imports":
					for _, spec := range parser.NamedChildren(part) {
						if spec.Kind() == "import_specifier" {
							info.Names = append(info.Names, parser.NodeText(spec.ChildByFieldName("name"), source))
						}
					}
				}
			}
		}
		if info.Source != "" {
			result.Imports = append(result.Imports, info)
		}
	}
}

func unquote(text string) string {
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

func walkMarkup(node *ts.Node, source []byte, parents *[]string, result *MarkupExtraction) {
	switch node.Kind() {
	case "jsx_element":
		el := element(node.ChildByFieldName("open_tag"), source, *parents)
		if el.Line == 0 {
			el.Line = int(node.StartPosition().Row) + 1
			el.Column = int(node.StartPosition().Column) + 1
		}
		el.HasChildren = hasContent(node, source)
		result.Elements = append(result.Elements, el)

		if el.Component {
			*parents = append(*parents, el.Tag)
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if k := child.Kind(); k != "jsx_opening_element" && k != "jsx_closing_element" {
				walkMarkup(child, source, parents, result)
			}
		}
		if el.Component {
			*parents = (*parents)[:len(*parents)-1]
		}
		return

	case "jsx_fragment":
		el := element(nil, source, *parents)
		el.Line = int(node.StartPosition().Row) + 1
		el.Column = int(node.StartPosition().Column) + 1
		el.HasChildren = hasContent(node, source)
		result.Elements = append(result.Elements, el)

	case "jsx_self_closing_element":
		result.Elements = append(result.Elements, element(node, source, *parents))
		// Attribute values may hold markup.
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkMarkup(node.Child(i), source, parents, result)
	}
}

// element describes an opening or self-closing element. A nil opening
// node, or one without a name, is a fragment.
func element(node *ts.Node, source []byte, parents []string) Element {
	el := Element{Tag: fragmentTag}
	if len(parents) > 0 {
		el.Parent = parents[len(parents)-1]
	}
	if node == nil {
		return el
	}
	el.Line = int(node.StartPosition().Row) + 1
	el.Column = int(node.StartPosition().Column) + 1

	if name := node.ChildByFieldName("name"); name != nil {
		el.Tag = parser.NodeText(name, source)
		el.Component = isComponentTag(el.Tag)
	}
	for _, attr := range parser.NamedChildren(node) {
		switch attr.Kind() {
		case "jsx_attribute":
			if children := parser.NamedChildren(attr); len(children) > 0 {
				el.Attributes = append(el.Attributes, parser.NodeText(children[0], source))
			}
		case "jsx_expression":
			el.Attributes = append(el.Attributes, "...")
		}
	}
	return el
}

// hasContent reports whether an element has child elements, expressions or
// non-blank text.
func hasContent(node *ts.Node, source []byte) bool {
	for _, child := range parser.NamedChildren(node) {
		switch child.Kind() {
		case "jsx_element", "jsx_self_closing_element", "jsx_expression":
			return true
		case "jsx_text":
			if strings.TrimFunc(parser.NodeText(child, source), unicode.IsSpace) != "" {
				return true
			}
		}
	}
	return false
}

// isComponentTag reports whether a tag names a component rather than an
// intrinsic element.
func isComponentTag(tag string) bool {
	if tag == "" {
		return false
	}
	return unicode.IsUpper(rune(tag[0])) || strings.Contains(tag, ".")
}
