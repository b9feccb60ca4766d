// Package queries provides tree-sitter query compilation, caching, and execution.
package queries

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsxify/pkg/parser"
	"github.com/gnana997/tsxify/pkg/parser/queries/comments"
	"github.com/gnana997/tsxify/pkg/parser/queries/declarations"
	"github.com/gnana997/tsxify/pkg/parser/queries/hooks"
)

// QueryType identifies which query to execute.
type QueryType int

const (
	// QueryTypeComments captures every comment (documentation association)
	QueryTypeComments QueryType = iota
	// QueryTypeHooks captures call expressions that may be state hooks
	QueryTypeHooks
	// QueryTypeDeclarations captures existing interface and type alias names
	QueryTypeDeclarations
)

// String returns the string representation of a QueryType.
func (qt QueryType) String() string {
	switch qt {
	case QueryTypeComments:
		return "comments"
	case QueryTypeHooks:
		return "hooks"
	case QueryTypeDeclarations:
		return "declarations"
	default:
		return "unknown"
	}
}

// ErrUnsupportedQuery is returned when a query type has no pattern for a
// grammar (declarations in the untyped grammar).
var ErrUnsupportedQuery = fmt.Errorf("query not supported for grammar")

// queryKey uniquely identifies a compiled query. Queries are bound to the
// grammar they were compiled with, so the TSX variant is part of the key.
type queryKey struct {
	grammar parser.Grammar
	qtype   QueryType
}

// QueryManager manages tree-sitter query compilation and caching.
//
// Usage:
//
//	qm := NewQueryManager(parserManager, logger)
//	defer qm.Close()
//
//	matches, err := qm.Run(tree, QueryTypeComments)
type QueryManager struct {
	parserManager *parser.ParserManager
	cache         map[queryKey]*ts.Query
	mutex         sync.RWMutex
	logger        *slog.Logger
}

// NewQueryManager creates a new query manager. Logger can be nil.
func NewQueryManager(pm *parser.ParserManager, logger *slog.Logger) *QueryManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &QueryManager{
		parserManager: pm,
		cache:         make(map[queryKey]*ts.Query),
		logger:        logger,
	}
}

// GetQuery returns a compiled query for the grammar and type, compiling it
// on first access. Thread-safe.
func (qm *QueryManager) GetQuery(grammar parser.Grammar, qtype QueryType) (*ts.Query, error) {
	key := queryKey{grammar: grammar, qtype: qtype}

	qm.mutex.RLock()
	query, exists := qm.cache[key]
	qm.mutex.RUnlock()

	if exists {
		return query, nil
	}

	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	if query, exists = qm.cache[key]; exists {
		return query, nil
	}

	queryString, err := getQueryString(grammar, qtype)
	if err != nil {
		return nil, err
	}

	langPtr, err := qm.parserManager.GetLanguagePointer(grammar)
	if err != nil {
		return nil, fmt.Errorf("failed to get language pointer for %s: %w", grammar, err)
	}

	query, qerr := ts.NewQuery(ts.NewLanguage(langPtr), queryString)
	if qerr != nil {
		return nil, fmt.Errorf("failed to compile %s query for %s: %s", qtype, grammar, qerr.Message)
	}

	qm.cache[key] = query

	qm.logger.Debug("compiled query",
		"grammar", grammar.String(),
		"type", qtype.String())

	return query, nil
}

func getQueryString(grammar parser.Grammar, qtype QueryType) (string, error) {
	switch qtype {
	case QueryTypeComments:
		return comments.Queries, nil
	case QueryTypeHooks:
		return hooks.Queries, nil
	case QueryTypeDeclarations:
		if grammar.Language != parser.LanguageTypeScript {
			return "", fmt.Errorf("%w: %s for %s", ErrUnsupportedQuery, qtype, grammar)
		}
		return declarations.TSQueries, nil
	default:
		return "", fmt.Errorf("unknown query type: %d", qtype)
	}
}

// Run compiles (or reuses) the query for the tree's grammar and executes it
// over the whole tree.
func (qm *QueryManager) Run(tree *parser.SyntaxTree, qtype QueryType) ([]QueryMatch, error) {
	query, err := qm.GetQuery(tree.Grammar, qtype)
	if err != nil {
		return nil, err
	}
	return qm.ExecuteQuery(tree.Tree(), query, tree.Source)
}

// ExecuteQuery runs a compiled query on a parse tree and returns the
// matches in document order.
func (qm *QueryManager) ExecuteQuery(tree *ts.Tree, query *ts.Query, source []byte) ([]QueryMatch, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	if query == nil {
		return nil, fmt.Errorf("query is nil")
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	iter := cursor.Matches(query, tree.RootNode(), source)
	captureNames := query.CaptureNames()

	var matches []QueryMatch
	for match := iter.Next(); match != nil; match = iter.Next() {
		captures := make([]QueryCapture, 0, len(match.Captures))
		for _, capture := range match.Captures {
			var captureName string
			if int(capture.Index) < len(captureNames) {
				captureName = captureNames[capture.Index]
			}
			category, field := parseCaptureName(captureName)

			node := capture.Node
			captures = append(captures, QueryCapture{
				Name:     captureName,
				Category: category,
				Field:    field,
				Node:     &node,
				Text:     node.Utf8Text(source),
				Location: nodeLocation(&node),
			})
		}

		matches = append(matches, QueryMatch{
			PatternIndex: uint32(match.PatternIndex),
			Captures:     captures,
		})
	}

	return matches, nil
}

// Close releases all compiled queries. After Close(), the QueryManager
// cannot be used.
func (qm *QueryManager) Close() error {
	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	qm.logger.Debug("closing QueryManager", "queries_compiled", len(qm.cache))

	for key, query := range qm.cache {
		if query != nil {
			query.Close()
		}
		delete(qm.cache, key)
	}

	return nil
}

// QueryMatch is a single pattern match.
type QueryMatch struct {
	PatternIndex uint32
	Captures     []QueryCapture
}

// Capture returns the first capture whose field part equals field
// ("name" for "declaration.name"), or nil.
func (m QueryMatch) Capture(field string) *QueryCapture {
	for i := range m.Captures {
		if m.Captures[i].Field == field {
			return &m.Captures[i]
		}
	}
	return nil
}

// QueryCapture is one captured node of a match.
type QueryCapture struct {
	// Name is the full capture name, e.g. "hook.callee"
	Name string
	// Category is the part before the dot ("hook")
	Category string
	// Field is the part after the dot ("callee"), empty without a dot
	Field string

	Node     *ts.Node
	Text     string
	Location Location
}

// Location represents a position in source code.
type Location struct {
	StartLine   uint32 // 1-based
	StartColumn uint32 // 1-based
	EndLine     uint32
	EndColumn   uint32
	StartByte   uint32 // 0-based
	EndByte     uint32
}

func parseCaptureName(name string) (category, field string) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return name, ""
}

func nodeLocation(node *ts.Node) Location {
	start := node.StartPosition()
	end := node.EndPosition()

	return Location{
		StartLine:   uint32(start.Row + 1),
		StartColumn: uint32(start.Column + 1),
		EndLine:     uint32(end.Row + 1),
		EndColumn:   uint32(end.Column + 1),
		StartByte:   uint32(node.StartByte()),
		EndByte:     uint32(node.EndByte()),
	}
}
