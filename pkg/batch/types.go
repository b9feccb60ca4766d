// Package batch converts many units in parallel and packages the results.
package batch

import (
	"github.com/gnana997/tsxify/pkg/diagnostics"
)

// ArchiveName is the name of the archive produced for multi-file batches.
const ArchiveName = "converted.zip"

// ConvertedFile is a unit that produced output. Diagnostics holds its
// non-fatal findings.
type ConvertedFile struct {
	Name        string                   `json:"name"`
	OutputName  string                   `json:"output_name"`
	Code        string                   `json:"code"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics,omitempty"`
}

// FailedFile is a unit that produced no output.
type FailedFile struct {
	Name        string                   `json:"name"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

// Artifact is a named byte sequence ready to be saved.
type Artifact struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// Result is the outcome of a batch. Converted and Failed keep input order.
type Result struct {
	Converted []ConvertedFile `json:"convertedFiles"`
	Failed    []FailedFile    `json:"errors"`
	// Archive is set when more than one unit converted.
	Archive *Artifact `json:"-"`
}

// Artifact returns the downloadable output: the archive for several
// converted units, the raw text of a single one, or nil when nothing
// converted.
func (r *Result) Artifact() *Artifact {
	switch {
	case r.Archive != nil:
		return r.Archive
	case len(r.Converted) == 1:
		f := r.Converted[0]
		return &Artifact{
			Name:        f.OutputName,
			ContentType: "text/plain; charset=utf-8",
			Data:        []byte(f.Code),
		}
	}
	return nil
}
