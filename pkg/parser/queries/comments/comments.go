// Package comments holds the comment query shared by every grammar.
package comments

// Queries captures every comment node. Block comments that start with
// "/**" are treated as documentation by the rewriter.
const Queries = `
(comment) @comment.text
`
