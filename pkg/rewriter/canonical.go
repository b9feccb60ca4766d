package rewriter

import (
	"sort"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/emitter"
	"github.com/gnana997/tsxify/pkg/parser"
)

// block is one top-level unit of canonical output.
type block struct {
	text string

	comment    bool
	importStmt bool
	// trailing marks a comment that shares a line with the previous block.
	trailing bool
	// blankBefore is set when a blank line separated the block from its
	// predecessor in the source.
	blankBefore bool
}

// separator returns the text placed between prev and next.
func separator(prev, next block, eol string) string {
	switch {
	case next.trailing:
		return " "
	case prev.comment && !prev.trailing && !next.blankBefore:
		return eol
	case prev.importStmt && next.importStmt:
		return eol
	default:
		return eol + eol
	}
}

func (r *Rewriter) canonical(tree *parser.SyntaxTree, comments *CommentIndex, plans []Plan, cfg config.ConversionConfig, eol string) string {
	var edits []emitter.TextEdit
	byStatement := make(map[uint][]Plan)
	docOwner := make(map[uint]uint)
	for _, plan := range plans {
		edits = append(edits, plan.Edits...)
		start := plan.Descriptor.Statement.StartByte()
		if _, seen := byStatement[start]; !seen {
			if doc, ok := comments.DocFor(start); ok {
				docOwner[doc.Start] = start
			}
		}
		byStatement[start] = append(byStatement[start], plan)
	}
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].Start < edits[j].Start
	})

	emitted := make(map[uint]bool)
	declarations := func(stmt uint, doc string) []block {
		if emitted[stmt] {
			return nil
		}
		emitted[stmt] = true

		var out []block
		for _, plan := range byStatement[stmt] {
			if plan.Declaration == nil {
				continue
			}
			text := plan.Declaration.Text
			if doc != "" {
				text = doc + "\n" + text
				doc = ""
			}
			out = append(out, block{text: text, blankBefore: true})
		}
		return out
	}

	var blocks []block
	var prev *ts.Node
	for _, child := range parser.NamedChildren(tree.Root()) {
		b := block{
			text:        applyEdits(tree.Source, child.StartByte(), child.EndByte(), edits),
			comment:     child.Kind() == "comment",
			importStmt:  child.Kind() == "import_statement",
			blankBefore: prev == nil || child.StartPosition().Row > prev.EndPosition().Row+1,
		}
		b.trailing = b.comment && prev != nil && child.StartPosition().Row == prev.EndPosition().Row
		prev = child

		if b.comment {
			if owner, ok := docOwner[child.StartByte()]; ok {
				doc := ""
				if cfg.IncludeDocComments {
					doc = b.text
				}
				blocks = append(blocks, declarations(owner, doc)...)
			}
		} else {
			blocks = append(blocks, declarations(child.StartByte(), "")...)
		}
		blocks = append(blocks, b)
	}

	if len(blocks) == 0 {
		return ""
	}

	var out strings.Builder
	for i, b := range blocks {
		if i > 0 {
			out.WriteString(separator(blocks[i-1], b, eol))
		}
		out.WriteString(normalizeLines(b.text, eol))
	}
	out.WriteString(eol)
	return out.String()
}

// normalizeLines trims trailing whitespace from every line and converts
// leading tabs to two spaces each.
func normalizeLines(text, eol string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		n := 0
		for n < len(line) && (line[n] == '\t' || line[n] == ' ') {
			n++
		}
		if indent := line[:n]; strings.Contains(indent, "\t") {
			line = strings.ReplaceAll(indent, "\t", "  ") + line[n:]
		}
		lines[i] = line
	}
	return strings.Join(lines, eol)
}
