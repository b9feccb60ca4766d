package converter

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/diagnostics"
	"github.com/gnana997/tsxify/pkg/emitter"
	"github.com/gnana997/tsxify/pkg/extractor"
	"github.com/gnana997/tsxify/pkg/inference"
	"github.com/gnana997/tsxify/pkg/parser"
	"github.com/gnana997/tsxify/pkg/parser/queries"
	"github.com/gnana997/tsxify/pkg/rewriter"
	"github.com/gnana997/tsxify/pkg/validator"
)

// Options configures a Converter.
type Options struct {
	Logger *slog.Logger
	// PoolSize bounds the parsers per grammar; zero derives it from the
	// CPU count.
	PoolSize int
	// CacheSize enables the result cache when positive.
	CacheSize int
}

// Converter converts source units. It owns a parser pool and query cache
// and is safe for concurrent use; Close releases them.
//
// Example:
//
//	conv := converter.New(converter.Options{Logger: logger})
//	defer conv.Close()
//
//	result, err := conv.Convert(converter.SourceUnit{Name: "Card.jsx", Text: src}, config.Default())
type Converter struct {
	parser    *parser.ParserManager
	queries   *queries.QueryManager
	extractor *extractor.Extractor
	emitter   *emitter.Emitter
	rewriter  *rewriter.Rewriter
	validator *validator.Validator
	cache     *Cache

	logger *slog.Logger
}

// New creates a Converter.
func New(opts Options) *Converter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pm := parser.NewParserManagerWithPoolSize(logger, opts.PoolSize)
	c := &Converter{
		parser:    pm,
		queries:   queries.NewQueryManager(pm, logger),
		extractor: extractor.NewExtractor(logger),
		emitter:   emitter.NewEmitter(logger),
		rewriter:  rewriter.NewRewriter(logger),
		validator: validator.NewValidator(pm, logger),
		logger:    logger,
	}
	if opts.CacheSize > 0 {
		c.cache = NewCache(opts.CacheSize, logger)
	}
	return c
}

// Validator returns the validator sharing the converter's parser pool.
func (c *Converter) Validator() *validator.Validator {
	return c.validator
}

// Cache returns the result cache, or nil when caching is disabled.
func (c *Converter) Cache() *Cache {
	return c.cache
}

// ParserStats returns statistics of the shared parser pool.
func (c *Converter) ParserStats() parser.ParserStats {
	return c.parser.GetStats()
}

// Convert converts one unit. Problems with the unit itself, including a
// parse failure, are reported as diagnostics in the result; the error is
// reserved for an invalid configuration or an engine failure.
func (c *Converter) Convert(unit SourceUnit, cfg config.ConversionConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var key string
	if c.cache != nil {
		key = Key(unit, cfg)
		if cached, ok := c.cache.Get(key); ok {
			c.logger.Debug("conversion cache hit", "file", unit.Name)
			return cached, nil
		}
	}

	start := time.Now()
	result, err := c.convert(unit, cfg)
	if err != nil {
		return nil, err
	}

	c.logger.Info("converted unit",
		"file", unit.Name,
		"components", result.Components,
		"warnings", diagnostics.Count(result.Diagnostics, diagnostics.SeverityWarning),
		"errors", diagnostics.Count(result.Diagnostics, diagnostics.SeverityError),
		"duration", time.Since(start))

	if c.cache != nil {
		c.cache.Put(key, result)
	}
	return result, nil
}

func (c *Converter) convert(unit SourceUnit, cfg config.ConversionConfig) (*Result, error) {
	result := &Result{Name: unit.Name, OutputName: parser.TypedFileName(unit.Name)}

	tree, err := c.parser.ParseUnit(unit.Name, []byte(unit.Text))
	if err != nil {
		var failure *parser.ParseFailure
		if !errors.As(err, &failure) {
			return nil, fmt.Errorf("parse %s: %w", unit.Name, err)
		}
		result.Diagnostics = []diagnostics.Diagnostic{{
			Severity: diagnostics.SeverityError,
			Code:     diagnostics.CodeParseError,
			Message:  "syntax error: " + failure.Message,
			Line:     failure.Line,
			Column:   failure.Column,
		}}
		return result, nil
	}
	defer tree.Close()

	diags := diagnostics.NewCollector()

	comments, err := c.commentIndex(tree)
	if err != nil {
		return nil, err
	}
	existing, err := c.existingDeclarations(tree)
	if err != nil {
		return nil, err
	}
	var hooks []inference.HookCall
	if cfg.Level == config.LevelAdvanced {
		if hooks, err = c.hookCalls(tree); err != nil {
			return nil, err
		}
	}

	components := c.extractor.Extract(tree, diags)
	inferencer := inference.NewInferencer(cfg.Level, c.logger)

	plans := make([]rewriter.Plan, 0, len(components))
	for _, desc := range components {
		plans = append(plans, c.plan(tree, desc, cfg, inferencer, existing, hooks, diags))
	}

	result.Code = c.rewriter.Rewrite(tree, comments, plans, cfg)
	result.Components = len(components)

	verdict := c.validator.Verify(tree, result.Code)
	for _, v := range verdict.Violations {
		diags.Error(diagnostics.CodeInvalidOutput, v.Line, v.Column, "",
			"converted output is invalid (%s): %s", v.Rule, v.Message)
	}

	result.Diagnostics = diags.Diagnostics()
	return result, nil
}

// plan infers, emits and annotates one component. Components that are
// already typed, or whose declaration name already exists, get no new
// declaration, so converting converted output changes nothing.
func (c *Converter) plan(tree *parser.SyntaxTree, desc *extractor.ComponentDescriptor, cfg config.ConversionConfig,
	inferencer *inference.Inferencer, existing map[string]bool, hooks []inference.HookCall, diags *diagnostics.Collector) rewriter.Plan {

	plan := rewriter.Plan{Descriptor: desc}
	if desc.AlreadyTyped {
		c.logger.Debug("component already typed", "component", desc.Name)
		return plan
	}

	name := cfg.DeclarationName(desc.Name)
	if existing[name] {
		c.logger.Debug("declaration already present", "component", desc.Name, "declaration", name)
		plan.Edits = c.emitter.Annotations(tree, desc, name, nil)
		return plan
	}

	shape := inferencer.Infer(tree, desc, diags)
	states := inferencer.InferStates(tree, desc, shape, hooks)

	decl, ok := c.emitter.EmitDeclaration(desc.Name, shape, cfg)
	if !ok {
		plan.Edits = c.emitter.Annotations(tree, desc, "", states)
		return plan
	}
	plan.Declaration = &decl
	plan.Edits = c.emitter.Annotations(tree, desc, decl.Name, states)
	return plan
}

func (c *Converter) commentIndex(tree *parser.SyntaxTree) (*rewriter.CommentIndex, error) {
	matches, err := c.queries.Run(tree, queries.QueryTypeComments)
	if err != nil {
		return nil, fmt.Errorf("comments query: %w", err)
	}
	nodes := make([]*ts.Node, 0, len(matches))
	for _, m := range matches {
		if capture := m.Capture("text"); capture != nil {
			nodes = append(nodes, capture.Node)
		}
	}
	return rewriter.NewCommentIndex(tree.Source, nodes), nil
}

// existingDeclarations returns the interface and type alias names already
// declared in a typed unit.
func (c *Converter) existingDeclarations(tree *parser.SyntaxTree) (map[string]bool, error) {
	names := make(map[string]bool)
	matches, err := c.queries.Run(tree, queries.QueryTypeDeclarations)
	if errors.Is(err, queries.ErrUnsupportedQuery) {
		return names, nil
	}
	if err != nil {
		return nil, fmt.Errorf("declarations query: %w", err)
	}
	for _, m := range matches {
		if capture := m.Capture("name"); capture != nil {
			names[capture.Text] = true
		}
	}
	return names, nil
}

func (c *Converter) hookCalls(tree *parser.SyntaxTree) ([]inference.HookCall, error) {
	matches, err := c.queries.Run(tree, queries.QueryTypeHooks)
	if err != nil {
		return nil, fmt.Errorf("hooks query: %w", err)
	}
	calls := make([]inference.HookCall, 0, len(matches))
	for _, m := range matches {
		call, callee, args := m.Capture("call"), m.Capture("callee"), m.Capture("arguments")
		if call == nil || callee == nil || args == nil {
			continue
		}
		calls = append(calls, inference.HookCall{Call: call.Node, Callee: callee.Node, Arguments: args.Node})
	}
	return calls, nil
}

// Close releases the parser pool, compiled queries and cached results.
func (c *Converter) Close() error {
	if c.cache != nil {
		c.cache.Purge()
	}
	if err := c.queries.Close(); err != nil {
		return err
	}
	return c.parser.Close()
}
