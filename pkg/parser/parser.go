package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ParserManager hands out pooled tree-sitter parsers per grammar.
//
// Pools are created lazily on first use of a grammar and sized from the CPU
// count. The manager owns the pools and must be closed via Close(); callers
// own the returned trees.
//
// Thread Safety:
//   - Safe for concurrent use; several goroutines can parse the same grammar
//     at once, up to the pool size
//   - Pool creation uses double-checked locking
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.ParseUnit("Widget.jsx", []byte(src))
//	if err != nil {
//	    var failure *ParseFailure
//	    if errors.As(err, &failure) { ... }
//	}
//	defer tree.Close()
type ParserManager struct {
	pools map[Grammar]*parserPool

	// mutex guards pools and stats
	mutex sync.RWMutex

	logger *slog.Logger

	poolSize int

	stats struct {
		parsesCalled int
		failures     int
	}
}

// NewParserManager creates a new ParserManager with CPU-derived pool sizes.
func NewParserManager(logger *slog.Logger) *ParserManager {
	return NewParserManagerWithPoolSize(logger, 0)
}

// NewParserManagerWithPoolSize creates a ParserManager whose pools hold at
// most poolSize parsers. Zero selects the CPU-derived default.
func NewParserManagerWithPoolSize(logger *slog.Logger, poolSize int) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &ParserManager{
		pools:    make(map[Grammar]*parserPool),
		logger:   logger,
		poolSize: getPoolSize(poolSize),
	}
}

// Parse parses source with the given grammar and returns the raw tree.
//
// The tree may contain ERROR nodes; use ParseUnit to turn those into a
// ParseFailure. The returned tree MUST be closed by the caller.
func (pm *ParserManager) Parse(source []byte, grammar Grammar) (*ts.Tree, error) {
	if grammar.Language == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}

	pm.mutex.Lock()
	pm.stats.parsesCalled++
	pm.mutex.Unlock()

	pool, err := pm.getOrCreatePool(grammar)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", grammar, err)
	}

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := parser.Parse(source, nil)
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser.Parse returned nil tree")
	}
	return tree, nil
}

// ParseUnit parses one named source unit into a SyntaxTree.
//
// The grammar is chosen from the name (see DetectGrammar). A unit picked for
// the untyped grammar that only parses as typed markup (for example earlier
// converted output fed back under its old name, or unnamed input) is parsed
// with GrammarTSX instead. A source that does not parse cleanly yields a
// *ParseFailure describing the first offending location under the detected
// grammar; no tree is returned in that case.
func (pm *ParserManager) ParseUnit(name string, source []byte) (*SyntaxTree, error) {
	grammar := DetectGrammar(name)
	tree, err := pm.parse(name, source, grammar)

	var failure *ParseFailure
	if !errors.As(err, &failure) {
		return tree, err
	}
	if grammar == GrammarJSX {
		if typed, terr := pm.parse(name, source, GrammarTSX); terr == nil {
			pm.logger.Debug("parsed as typed markup",
				"file", name,
				"grammar", GrammarTSX.String())
			return typed, nil
		}
	}
	pm.recordFailure(name, grammar, failure)
	return nil, failure
}

// ParseWith is ParseUnit with an explicit grammar and no fallback.
func (pm *ParserManager) ParseWith(name string, source []byte, grammar Grammar) (*SyntaxTree, error) {
	tree, err := pm.parse(name, source, grammar)
	var failure *ParseFailure
	if errors.As(err, &failure) {
		pm.recordFailure(name, grammar, failure)
	}
	return tree, err
}

func (pm *ParserManager) parse(name string, source []byte, grammar Grammar) (*SyntaxTree, error) {
	tree, err := pm.Parse(source, grammar)
	if err != nil {
		return nil, err
	}

	root := tree.RootNode()
	if root.HasError() {
		failure := firstFailure(root, source)
		tree.Close()
		return nil, failure
	}

	return &SyntaxTree{
		Name:    name,
		Source:  source,
		Grammar: grammar,
		tree:    tree,
	}, nil
}

func (pm *ParserManager) recordFailure(name string, grammar Grammar, failure *ParseFailure) {
	pm.mutex.Lock()
	pm.stats.failures++
	pm.mutex.Unlock()

	pm.logger.Debug("parse failure",
		"file", name,
		"grammar", grammar.String(),
		"line", failure.Line,
		"column", failure.Column)
}

// Close releases all parser pool resources.
// After Close(), the ParserManager cannot be used.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.logger.Debug("closing ParserManager",
		"parses_called", pm.stats.parsesCalled,
		"parse_failures", pm.stats.failures)

	for grammar, pool := range pm.pools {
		if pool != nil {
			pool.close()
			pm.logger.Debug("closed parser pool", "grammar", grammar.String())
		}
	}
	pm.pools = make(map[Grammar]*parserPool)

	return nil
}

// getOrCreatePool returns an existing parser pool or creates a new one.
func (pm *ParserManager) getOrCreatePool(grammar Grammar) (*parserPool, error) {
	pm.mutex.RLock()
	pool, exists := pm.pools[grammar]
	pm.mutex.RUnlock()

	if exists {
		return pool, nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pool, exists = pm.pools[grammar]; exists {
		return pool, nil
	}

	langPtr, err := pm.GetLanguagePointer(grammar)
	if err != nil {
		return nil, err
	}

	pool = newParserPool(grammar, langPtr, pm.poolSize, pm.logger)
	pm.pools[grammar] = pool

	pm.logger.Debug("created new parser pool",
		"grammar", grammar.String(),
		"maxSize", pm.poolSize)

	return pool, nil
}

// GetLanguagePointer returns the tree-sitter language for a grammar.
// QueryManager uses it to compile queries against the same grammar the trees
// were produced with.
func (pm *ParserManager) GetLanguagePointer(grammar Grammar) (unsafe.Pointer, error) {
	switch grammar.Language {
	case LanguageTypeScript:
		if grammar.TSX {
			return ts_typescript.LanguageTSX(), nil
		}
		return ts_typescript.LanguageTypescript(), nil
	case LanguageJavaScript:
		return ts_javascript.Language(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", grammar.Language)
	}
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	totalParsers := 0
	for _, pool := range pm.pools {
		totalParsers += pool.getCreatedCount()
	}

	return ParserStats{
		ParsersCreated: totalParsers,
		ParsesCalled:   pm.stats.parsesCalled,
		Failures:       pm.stats.failures,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	// ParsersCreated is the total number of parser instances created
	ParsersCreated int

	// ParsesCalled is the total number of Parse() calls
	ParsesCalled int

	// Failures counts units rejected by ParseUnit
	Failures int
}
