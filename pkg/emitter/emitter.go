// Package emitter renders inferred shapes as interface declarations and
// computes the signature edits that reference them.
package emitter

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/extractor"
	"github.com/gnana997/tsxify/pkg/inference"
	"github.com/gnana997/tsxify/pkg/parser"
)

const indent = "  "

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Declaration is a rendered interface declaration.
type Declaration struct {
	Name string
	// Text is the declaration without a trailing newline.
	Text string
}

// TextEdit replaces the source bytes [Start, End) with Text. Start == End
// is an insertion.
type TextEdit struct {
	Start uint
	End   uint
	Text  string
}

// Emitter renders declarations. Output depends only on its inputs.
type Emitter struct {
	logger *slog.Logger
}

// NewEmitter creates an Emitter. Logger can be nil.
func NewEmitter(logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{logger: logger}
}

// EmitDeclaration renders the interface for a component's shape. It returns
// false when the shape is empty.
func (e *Emitter) EmitDeclaration(component string, shape *inference.Shape, cfg config.ConversionConfig) (Declaration, bool) {
	if shape == nil || shape.Empty() {
		return Declaration{}, false
	}

	name := cfg.DeclarationName(component)

	var b strings.Builder
	b.WriteString("interface ")
	b.WriteString(name)
	b.WriteString(" {\n")
	for _, p := range shape.Properties {
		b.WriteString(indent)
		b.WriteString(propertyKey(p.Name))
		if p.Optional {
			b.WriteString("?")
		}
		b.WriteString(": ")
		b.WriteString(p.TypeExpr())
		b.WriteString(";\n")
	}
	if shape.Open {
		b.WriteString(indent)
		b.WriteString("[key: string]: any;\n")
	}
	b.WriteString("}")

	e.logger.Debug("emitted declaration",
		"component", component,
		"declaration", name,
		"fields", len(shape.Properties))

	return Declaration{Name: name, Text: b.String()}, true
}

func propertyKey(name string) string {
	if identifierPattern.MatchString(name) {
		return name
	}
	return strconv.Quote(name)
}

// Annotations returns the edits that make desc's signature reference
// declName, followed by one edit per state hint. Edits are sorted by
// position.
func (e *Emitter) Annotations(tree *parser.SyntaxTree, desc *extractor.ComponentDescriptor, declName string, states []inference.StateHint) []TextEdit {
	var edits []TextEdit

	if declName != "" && !desc.AlreadyTyped {
		if edit, ok := signatureEdit(tree, desc, declName); ok {
			edits = append(edits, edit)
		}
	}

	for _, hint := range states {
		at := hint.Callee.EndByte()
		edits = append(edits, TextEdit{Start: at, End: at, Text: "<" + hint.TypeArgument + ">"})
	}

	sortEdits(edits)
	return edits
}

func signatureEdit(tree *parser.SyntaxTree, desc *extractor.ComponentDescriptor, declName string) (TextEdit, bool) {
	bag := desc.Bag
	switch bag.Kind {
	case extractor.BagDestructured, extractor.BagNamed:
		if bag.Pattern == nil {
			return TextEdit{}, false
		}
		if bag.Bare {
			return TextEdit{
				Start: bag.Pattern.StartByte(),
				End:   bag.Pattern.EndByte(),
				Text:  "(" + tree.Text(bag.Pattern) + ": " + declName + ")",
			}, true
		}
		at := bag.Pattern.EndByte()
		return TextEdit{Start: at, End: at, Text: ": " + declName}, true

	case extractor.BagThisProps:
		if desc.Heritage == nil {
			return TextEdit{}, false
		}
		at := desc.Heritage.EndByte()
		return TextEdit{Start: at, End: at, Text: "<" + declName + ">"}, true
	}
	return TextEdit{}, false
}

// sortEdits orders edits by start offset, keeping the input order of edits
// at the same offset.
func sortEdits(edits []TextEdit) {
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].Start < edits[j].Start
	})
}
