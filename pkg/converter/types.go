// Package converter runs the single-unit conversion pipeline: parse,
// extract, infer, emit, rewrite and verify.
package converter

import (
	"github.com/gnana997/tsxify/pkg/diagnostics"
)

// SourceUnit is one input file.
type SourceUnit struct {
	Name string `json:"name"`
	Text string `json:"content"`
}

// Result is the outcome of converting one unit.
//
// A unit that failed to parse has empty Code and a single Error
// diagnostic. Any other unit has best-effort Code, even when Diagnostics
// contains errors.
type Result struct {
	// Name is the input name; OutputName is the converted file name.
	Name       string `json:"name"`
	OutputName string `json:"output_name"`

	Code        string                   `json:"code"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`

	// Components is the number of components recognised in the unit.
	Components int `json:"components"`
}

// Fatal reports whether the unit failed to parse.
func (r *Result) Fatal() bool {
	if r.Code != "" || len(r.Diagnostics) != 1 {
		return false
	}
	d := r.Diagnostics[0]
	return d.Severity == diagnostics.SeverityError && d.Code == diagnostics.CodeParseError
}

// clone returns a copy that shares no slices with r.
func (r *Result) clone() *Result {
	out := *r
	if r.Diagnostics != nil {
		out.Diagnostics = append([]diagnostics.Diagnostic(nil), r.Diagnostics...)
	}
	return &out
}
