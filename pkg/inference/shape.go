// Package inference derives the shape of a component's input bag from the
// way the component reads it.
package inference

import (
	"fmt"
	"strings"
)

// Kind is the inferred category of a property.
type Kind int

const (
	KindUnknown Kind = iota
	KindPrimitive
	KindArray
	KindObject
	KindFunction
)

// String returns the kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Signature is a call signature derived from a call site.
type Signature struct {
	Params  []string
	Returns string
}

// String renders the signature as a function type.
func (s Signature) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = fmt.Sprintf("arg%d: %s", i, p)
	}
	returns := s.Returns
	if returns == "" {
		returns = "any"
	}
	return "(" + strings.Join(params, ", ") + ") => " + returns
}

// Property is one inferred field of a shape.
type Property struct {
	Name     string
	Kind     Kind
	Optional bool

	// Primitive is "string", "number" or "boolean" for KindPrimitive.
	Primitive string
	// Element is the element type of an array, when known.
	Element string
	// Signature is the call signature of a function, when known.
	Signature *Signature

	// Line and Column locate the first site of the property.
	Line   int
	Column int
}

// TypeExpr renders the property's type.
func (p Property) TypeExpr() string {
	switch p.Kind {
	case KindPrimitive:
		if p.Primitive != "" {
			return p.Primitive
		}
		return "any"
	case KindArray:
		if p.Element == "" {
			return "any[]"
		}
		return ArrayOf(p.Element)
	case KindObject:
		return "Record<string, any>"
	case KindFunction:
		if p.Signature != nil {
			return p.Signature.String()
		}
		return "(...args: any[]) => any"
	default:
		return "any"
	}
}

// ArrayOf returns the array type of element, parenthesizing compound types.
func ArrayOf(element string) string {
	if strings.ContainsAny(element, "|&") || strings.Contains(element, "=>") {
		return "(" + element + ")[]"
	}
	return element + "[]"
}

// Shape is the ordered set of properties of one input bag. Properties keep
// the order in which they were first seen.
type Shape struct {
	Properties []Property
	// Open is set when the bag has a rest element; extra keys are allowed.
	Open bool
}

// Empty reports whether the shape declares nothing.
func (s *Shape) Empty() bool {
	return len(s.Properties) == 0 && !s.Open
}

// Lookup returns the property with the given name, or nil.
func (s *Shape) Lookup(name string) *Property {
	for i := range s.Properties {
		if s.Properties[i].Name == name {
			return &s.Properties[i]
		}
	}
	return nil
}

// AllUnknown reports whether every property has an unknown kind.
func (s *Shape) AllUnknown() bool {
	for _, p := range s.Properties {
		if p.Kind != KindUnknown {
			return false
		}
	}
	return len(s.Properties) > 0
}
