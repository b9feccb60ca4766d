package rewriter

import (
	"sort"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Comment is one comment of a source unit.
type Comment struct {
	Start    uint
	End      uint
	StartRow uint
	EndRow   uint
	Text     string
}

// IsDoc reports whether the comment is a documentation block (/** ... */).
func (c Comment) IsDoc() bool {
	return strings.HasPrefix(c.Text, "/**") && c.Text != "/**/"
}

// CommentIndex maps byte ranges to comments so documentation blocks can be
// associated with the statement that follows them. Built once per unit.
type CommentIndex struct {
	source   []byte
	comments []Comment
}

// NewCommentIndex indexes the given comment nodes of source.
func NewCommentIndex(source []byte, nodes []*ts.Node) *CommentIndex {
	idx := &CommentIndex{source: source, comments: make([]Comment, 0, len(nodes))}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		idx.comments = append(idx.comments, Comment{
			Start:    n.StartByte(),
			End:      n.EndByte(),
			StartRow: n.StartPosition().Row,
			EndRow:   n.EndPosition().Row,
			Text:     string(source[n.StartByte():n.EndByte()]),
		})
	}
	sort.Slice(idx.comments, func(i, j int) bool {
		return idx.comments[i].Start < idx.comments[j].Start
	})
	return idx
}

// Len returns the number of indexed comments.
func (idx *CommentIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.comments)
}

// DocFor returns the documentation block attached to the node starting at
// offset: a /** */ comment that starts its own line and is separated from
// the node by whitespace holding at most one line break.
func (idx *CommentIndex) DocFor(offset uint) (Comment, bool) {
	if idx == nil || len(idx.comments) == 0 {
		return Comment{}, false
	}

	i := sort.Search(len(idx.comments), func(i int) bool {
		return idx.comments[i].End > offset
	}) - 1
	if i < 0 {
		return Comment{}, false
	}

	c := idx.comments[i]
	if !c.IsDoc() {
		return Comment{}, false
	}

	gap := idx.source[c.End:offset]
	if strings.TrimSpace(string(gap)) != "" || strings.Count(string(gap), "\n") > 1 {
		return Comment{}, false
	}
	if !startsLine(idx.source, c.Start) {
		return Comment{}, false
	}
	return c, true
}

func startsLine(source []byte, offset uint) bool {
	for i := int(offset) - 1; i >= 0; i-- {
		switch source[i] {
		case '\n':
			return true
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return true
}
