// Package validator checks converted output: it must parse with the typed
// markup grammar and keep the markup of the input unchanged.
package validator

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/gnana997/tsxify/pkg/parser"
)

// Rule names reported in violations.
const (
	RuleParse  = "parse"
	RuleMarkup = "markup"
)

// Validator re-parses converted output.
type Validator struct {
	parser *parser.ParserManager
	logger *slog.Logger
}

// NewValidator creates a Validator that parses with pm. Logger can be nil.
func NewValidator(pm *parser.ParserManager, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{parser: pm, logger: logger}
}

// ValidationResult is the outcome of verifying one converted unit.
type ValidationResult struct {
	FilePath   string      `json:"file_path"`
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
}

// Violation is one failed check.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// Verify checks output, the converted text of input.
func (v *Validator) Verify(input *parser.SyntaxTree, output string) *ValidationResult {
	name := parser.TypedFileName(input.Name)
	result := &ValidationResult{FilePath: name, Valid: true}

	tree, err := v.parser.ParseWith(name, []byte(output), parser.GrammarTSX)
	if err != nil {
		violation := Violation{Rule: RuleParse, Message: err.Error()}
		var failure *parser.ParseFailure
		if errors.As(err, &failure) {
			violation.Line = failure.Line
			violation.Column = failure.Column
			violation.Message = "converted output does not parse: " + failure.Message
		}
		result.add(violation)
		v.logger.Debug("converted output failed to parse", "file", name, "error", err)
		return result
	}
	defer tree.Close()

	before := ExtractMarkup(input.Root(), input.Source)
	after := ExtractMarkup(tree.Root(), tree.Source)
	if violation, ok := compareMarkup(before, after); !ok {
		result.add(violation)
	}

	return result
}

func (r *ValidationResult) add(v Violation) {
	r.Valid = false
	r.Violations = append(r.Violations, v)
}

// compareMarkup requires the same elements with the same attributes in the
// same order.
func compareMarkup(before, after *MarkupExtraction) (Violation, bool) {
	n := min(len(before.Elements), len(after.Elements))
	for i := 0; i < n; i++ {
		b, a := before.Elements[i], after.Elements[i]
		if b.Tag != a.Tag || !slices.Equal(b.Attributes, a.Attributes) {
			return Violation{
				Rule:    RuleMarkup,
				Message: fmt.Sprintf("element <%s> became <%s> after conversion", b.Tag, a.Tag),
				Line:    a.Line,
				Column:  a.Column,
			}, false
		}
	}
	if len(before.Elements) != len(after.Elements) {
		return Violation{
			Rule: RuleMarkup,
			Message: fmt.Sprintf("converted output has %d markup elements, input has %d",
				len(after.Elements), len(before.Elements)),
		}, false
	}
	return Violation{}, true
}
