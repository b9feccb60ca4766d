package validator

import (
	"fmt"
	"strings"
)

// UnitSummary is a compact structural summary of a unit's markup.
type UnitSummary struct {
	FilePath   string           `json:"file_path"`
	Elements   int              `json:"elements"`
	Components []ComponentUsage `json:"components"`
	Imports    []string         `json:"imports"`
	LineCount  int              `json:"line_count"`
	ParseError string           `json:"parse_error,omitempty"`
}

// ComponentUsage describes one use of a component in markup.
type ComponentUsage struct {
	Name       string   `json:"name"`
	Line       int      `json:"line"`
	Attributes []string `json:"attributes"`
	Children   int      `json:"children_count"`
}

// Summarize parses code (grammar chosen from name) and summarizes the
// components it renders, so a caller can inspect a unit before or after
// conversion without reading all of it.
func (v *Validator) Summarize(name, code string) *UnitSummary {
	summary := &UnitSummary{
		FilePath:   name,
		Components: []ComponentUsage{},
		Imports:    []string{},
		LineCount:  strings.Count(code, "\n") + 1,
	}

	tree, err := v.parser.ParseUnit(name, []byte(code))
	if err != nil {
		summary.ParseError = err.Error()
		return summary
	}
	defer tree.Close()

	extraction := ExtractMarkup(tree.Root(), tree.Source)
	summary.Elements = len(extraction.Elements)

	// Direct component children per parent use, keyed by name and line.
	children := make(map[string]int)
	var uses []Element
	for _, el := range extraction.Elements {
		if !el.Component {
			continue
		}
		if el.Parent != "" {
			for i := len(uses) - 1; i >= 0; i-- {
				if uses[i].Tag == el.Parent {
					children[fmt.Sprintf("%s:%d", uses[i].Tag, uses[i].Line)]++
					break
				}
			}
		}
		uses = append(uses, el)
	}

	for _, el := range uses {
		attrs := el.Attributes
		if attrs == nil {
			attrs = []string{}
		}
		summary.Components = append(summary.Components, ComponentUsage{
			Name:       el.Tag,
			Line:       el.Line,
			Attributes: attrs,
			Children:   children[fmt.Sprintf("%s:%d", el.Tag, el.Line)],
		})
	}

	for _, imp := range extraction.Imports {
		summary.Imports = append(summary.Imports, imp.Source)
	}

	return summary
}
