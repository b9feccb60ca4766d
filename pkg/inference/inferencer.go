package inference

import (
	"log/slog"

	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/diagnostics"
	"github.com/gnana997/tsxify/pkg/extractor"
	"github.com/gnana997/tsxify/pkg/parser"
)

// Inferencer turns the usage sites of a component into a Shape.
//
// The level controls which evidence is honoured:
//   - Basic: destructuring defaults only
//   - Standard: defaults plus usage evidence and guards
//   - Advanced: Standard plus array element types, call signatures and
//     state hook type arguments (see InferStates)
type Inferencer struct {
	level  config.Level
	logger *slog.Logger
}

// NewInferencer creates an Inferencer for a conversion level. Logger can be nil.
func NewInferencer(level config.Level, logger *slog.Logger) *Inferencer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inferencer{level: level, logger: logger}
}

// propertyState tracks inference for one property.
type propertyState struct {
	prop *Property
	// fixed is set once a literal default decided the kind.
	fixed bool
}

// Infer builds the shape of desc's input bag. Ambiguities and unresolved
// properties are reported to diags.
func (inf *Inferencer) Infer(tree *parser.SyntaxTree, desc *extractor.ComponentDescriptor, diags *diagnostics.Collector) *Shape {
	shape := &Shape{Open: desc.Bag.Open}
	source := tree.Source

	index := make(map[string]*propertyState)
	var order []*propertyState

	for _, site := range desc.UsageSites {
		st, ok := index[site.Property]
		if !ok {
			st = &propertyState{prop: &Property{
				Name:   site.Property,
				Line:   site.Line,
				Column: site.Column,
			}}
			index[site.Property] = st
			order = append(order, st)
		}

		if site.IsBinding() {
			inf.applyBinding(st, site, source, diags, desc.Name)
			continue
		}
		if inf.level == config.LevelBasic {
			continue
		}

		u := classifyRef(site.Ref, source)
		if u.guard {
			st.prop.Optional = true
		}
		if u.kind == KindUnknown {
			continue
		}
		inf.addEvidence(st, u.kind, site, diags, desc.Name)
		if u.kind == KindFunction && u.call != nil && inf.level == config.LevelAdvanced &&
			st.prop.Kind == KindFunction && st.prop.Signature == nil {
			st.prop.Signature = callSignature(u.call, source)
		}
	}

	shape.Properties = make([]Property, 0, len(order))
	for _, st := range order {
		p := st.prop
		if p.Kind == KindUnknown {
			diags.Warn(diagnostics.CodeUnknownType, p.Line, p.Column, desc.Name,
				"could not infer a type for %q, using any", p.Name)
		}
		shape.Properties = append(shape.Properties, *p)
	}

	inf.logger.Debug("inferred shape",
		"component", desc.Name,
		"properties", len(shape.Properties),
		"open", shape.Open)

	return shape
}

func (inf *Inferencer) applyBinding(st *propertyState, site extractor.UsageSite, source []byte, diags *diagnostics.Collector, component string) {
	if site.Default != nil {
		st.prop.Optional = true
		if lit, ok := literalKind(site.Default, source); ok {
			if !st.fixed {
				st.prop.Kind = lit.kind
				st.prop.Primitive = lit.primitive
				st.prop.Element = ""
				st.prop.Signature = nil
				if inf.level == config.LevelAdvanced {
					inf.refineFromLiteral(st.prop, lit, source)
				}
				st.fixed = true
			}
			return
		}
	}

	if site.Nested == nil || inf.level == config.LevelBasic {
		return
	}
	kind := KindObject
	if site.Nested.Kind() == "array_pattern" {
		kind = KindArray
	}
	inf.addEvidence(st, kind, site, diags, component)
}

func (inf *Inferencer) refineFromLiteral(p *Property, lit literal, source []byte) {
	switch lit.kind {
	case KindArray:
		p.Element = elementType(lit.node, source)
	case KindFunction:
		sig := functionLiteralSignature(lit.node)
		p.Signature = &sig
	}
}

// addEvidence records usage evidence. The first kind seen wins; each later
// disagreeing site produces one Warning.
func (inf *Inferencer) addEvidence(st *propertyState, kind Kind, site extractor.UsageSite, diags *diagnostics.Collector, component string) {
	if st.fixed {
		return
	}
	p := st.prop
	switch p.Kind {
	case KindUnknown:
		p.Kind = kind
	case kind:
	default:
		diags.Warn(diagnostics.CodeInferenceAmbiguity, site.Line, site.Column, component,
			"conflicting usage of %q: used as %s, keeping %s", p.Name, kind, p.Kind)
	}
}
