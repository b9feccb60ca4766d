// Package rewriter produces the converted text of a unit: declarations
// inserted before their components and signature edits applied, either as a
// minimal diff or in a canonical layout.
package rewriter

import (
	"bytes"
	"log/slog"
	"sort"
	"strings"

	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/emitter"
	"github.com/gnana997/tsxify/pkg/extractor"
	"github.com/gnana997/tsxify/pkg/parser"
)

// Plan bundles what the rewriter needs for one component.
type Plan struct {
	Descriptor *extractor.ComponentDescriptor
	// Declaration is nil when nothing is emitted for the component.
	Declaration *emitter.Declaration
	Edits       []emitter.TextEdit
}

// Rewriter renders converted units.
type Rewriter struct {
	logger *slog.Logger
}

// NewRewriter creates a Rewriter. Logger can be nil.
func NewRewriter(logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rewriter{logger: logger}
}

// Rewrite returns the converted text of tree. Plans must be in source order.
//
// With PreserveFormatting every byte outside the edits and insertion points
// is kept. Otherwise top-level statements are laid out canonically.
func (r *Rewriter) Rewrite(tree *parser.SyntaxTree, comments *CommentIndex, plans []Plan, cfg config.ConversionConfig) string {
	eol := lineEnding(tree.Source)

	var out string
	if cfg.PreserveFormatting {
		out = r.preserve(tree, comments, plans, cfg, eol)
	} else {
		out = r.canonical(tree, comments, plans, cfg, eol)
	}

	r.logger.Debug("rewrote unit",
		"file", tree.Name,
		"plans", len(plans),
		"preserve", cfg.PreserveFormatting,
		"bytes", len(out))
	return out
}

func lineEnding(source []byte) string {
	if bytes.Contains(source, []byte("\r\n")) {
		return "\r\n"
	}
	return "\n"
}

func (r *Rewriter) preserve(tree *parser.SyntaxTree, comments *CommentIndex, plans []Plan, cfg config.ConversionConfig, eol string) string {
	var edits []emitter.TextEdit
	for _, plan := range plans {
		if plan.Declaration != nil {
			stmt := plan.Descriptor.Statement
			at := stmt.StartByte()
			var text strings.Builder
			if doc, ok := comments.DocFor(at); ok {
				at = doc.Start
				if cfg.IncludeDocComments {
					text.WriteString(doc.Text)
					text.WriteString(eol)
				}
			}
			text.WriteString(strings.ReplaceAll(plan.Declaration.Text, "\n", eol))
			text.WriteString(eol)
			text.WriteString(eol)
			edits = append(edits, emitter.TextEdit{Start: at, End: at, Text: text.String()})
		}
		edits = append(edits, plan.Edits...)
	}

	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].Start < edits[j].Start
	})
	return applyEdits(tree.Source, 0, uint(len(tree.Source)), edits)
}

// applyEdits applies the edits that fall inside [start, end) to that range
// of source. Edits must be sorted and must not overlap.
func applyEdits(source []byte, start, end uint, edits []emitter.TextEdit) string {
	var b strings.Builder
	b.Grow(int(end-start) + 64)

	last := start
	for _, e := range edits {
		if e.Start < start || e.End > end || e.Start < last {
			continue
		}
		b.Write(source[last:e.Start])
		b.WriteString(e.Text)
		last = e.End
	}
	b.Write(source[last:end])
	return b.String()
}
