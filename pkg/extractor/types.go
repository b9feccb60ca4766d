// Package extractor finds UI components in a parsed source unit and records
// how each one receives its input bag.
package extractor

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// Form describes how a component is declared.
type Form int

const (
	FormFunction Form = iota
	FormArrow
	FormFunctionExpression
	FormMemo
	FormForwardRef
	FormClass
)

// String returns the form name used in logs.
func (f Form) String() string {
	switch f {
	case FormFunction:
		return "function"
	case FormArrow:
		return "arrow"
	case FormFunctionExpression:
		return "function-expression"
	case FormMemo:
		return "memo"
	case FormForwardRef:
		return "forwardRef"
	case FormClass:
		return "class"
	default:
		return "unknown"
	}
}

// BagKind describes the shape of a component's input parameter.
type BagKind int

const (
	// BagNone means the component takes no input.
	BagNone BagKind = iota
	// BagDestructured is a `{ a, b = 1 }` parameter.
	BagDestructured
	// BagNamed is a `props` parameter read as props.a.
	BagNamed
	// BagThisProps is a class component reading this.props.
	BagThisProps
)

// Bag is the input bag of a component.
type Bag struct {
	Kind BagKind
	// Name is the parameter name for BagNamed.
	Name string
	// Pattern is the node the type annotation follows: the object pattern
	// or identifier with any whole-bag default stripped. Nil for BagNone and
	// BagThisProps.
	Pattern *ts.Node
	// Bare is set for an unparenthesized arrow parameter (`props => ...`),
	// which must gain parentheses when annotated.
	Bare bool
	// Open is set when the bag pattern has a rest element.
	Open bool
}

// UsageSite is one place a property of the input bag appears.
//
// Binding sites come from destructuring patterns and may carry a default or
// a nested pattern. Reference sites point at the expression that reads the
// property (a local identifier, props.x or this.props.x); the inferencer
// classifies them by their parent.
type UsageSite struct {
	Property string

	// Ref is the reading expression; nil for binding sites.
	Ref *ts.Node

	// Default is the destructuring default at a binding site.
	Default *ts.Node
	// Nested is a nested object or array pattern at a binding site.
	Nested *ts.Node

	Line   int
	Column int

	offset uint
}

// IsBinding reports whether the site is a destructuring binding.
func (u UsageSite) IsBinding() bool {
	return u.Ref == nil
}

// ComponentDescriptor describes one recognised component.
type ComponentDescriptor struct {
	Name string
	Form Form

	// Statement is the top-level statement holding the component. Emitted
	// declarations are inserted before it.
	Statement *ts.Node
	// Function is the function (or class) node.
	Function *ts.Node
	// Body is the function body, the arrow expression body, or the class body.
	Body *ts.Node
	// Heritage is the superclass expression of a class component.
	Heritage *ts.Node

	Bag Bag

	// UsageSites are in source order.
	UsageSites []UsageSite

	// AlreadyTyped is set when the bag already has a type annotation.
	AlreadyTyped bool

	Line   int
	Column int
}

// Properties returns the bag's property names in first-seen order.
func (d *ComponentDescriptor) Properties() []string {
	seen := make(map[string]bool)
	var names []string
	for _, site := range d.UsageSites {
		if !seen[site.Property] {
			seen[site.Property] = true
			names = append(names, site.Property)
		}
	}
	return names
}

// Verdict is the outcome of classifying one top-level binding.
type Verdict int

const (
	NotComponent Verdict = iota
	Component
	// Unsupported is a component whose input bag cannot be typed. It is
	// reported and passed through unchanged.
	Unsupported
)

// Classification is the tagged result of classifying a binding.
type Classification struct {
	Verdict    Verdict
	Descriptor *ComponentDescriptor
	// Reason explains an Unsupported verdict.
	Reason string
}
