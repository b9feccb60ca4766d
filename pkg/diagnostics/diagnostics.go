// Package diagnostics accumulates per-file warnings and errors produced while
// converting a source unit.
package diagnostics

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic. It never gates output.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns "warning" or "error".
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// MarshalText encodes the severity by name for JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes "warning" or "error".
func (s *Severity) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Code categorizes a diagnostic.
type Code string

const (
	CodeParseError           Code = "parse-error"
	CodeInferenceAmbiguity   Code = "inference-ambiguity"
	CodeUnknownType          Code = "unknown-type"
	CodeUnsupportedConstruct Code = "unsupported-construct"
	CodeInvalidOutput        Code = "invalid-output"
	CodeCancelled            Code = "cancelled"
	// CodeInternal marks a unit the engine could not process for a reason
	// other than its content, such as a grammar or query failure.
	CodeInternal Code = "internal-error"
)

// Diagnostic is one finding about a source unit. Line and Column are
// 1-based; zero means the finding has no position.
type Diagnostic struct {
	Severity  Severity `json:"severity"`
	Code      Code     `json:"code"`
	Message   string   `json:"message"`
	Line      int      `json:"line"`
	Column    int      `json:"column"`
	Component string   `json:"component,omitempty"`
}

func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Line > 0 {
		fmt.Fprintf(&b, "%d:%d: ", d.Line, d.Column)
	}
	b.WriteString(d.Severity.String())
	b.WriteString(": ")
	b.WriteString(d.Message)
	if d.Component != "" {
		fmt.Fprintf(&b, " [%s]", d.Component)
	}
	return b.String()
}

// Collector accumulates diagnostics in arrival order. It is not safe for
// concurrent use; each conversion run owns one.
type Collector struct {
	items []Diagnostic
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends d. Duplicates are kept.
func (c *Collector) Add(d Diagnostic) {
	c.items = append(c.items, d)
}

// Warn appends a warning.
func (c *Collector) Warn(code Code, line, column int, component, format string, args ...any) {
	c.Add(Diagnostic{
		Severity:  SeverityWarning,
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Line:      line,
		Column:    column,
		Component: component,
	})
}

// Error appends an error.
func (c *Collector) Error(code Code, line, column int, component, format string, args ...any) {
	c.Add(Diagnostic{
		Severity:  SeverityError,
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Line:      line,
		Column:    column,
		Component: component,
	})
}

// Diagnostics returns a copy of the accumulated diagnostics.
func (c *Collector) Diagnostics() []Diagnostic {
	if len(c.items) == 0 {
		return nil
	}
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of accumulated diagnostics.
func (c *Collector) Len() int {
	return len(c.items)
}

// HasErrors reports whether any diagnostic has error severity.
func (c *Collector) HasErrors() bool {
	return HasErrors(c.items)
}

// HasErrors reports whether any of ds has error severity.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics of the given severity.
func Count(ds []Diagnostic, severity Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity == severity {
			n++
		}
	}
	return n
}
