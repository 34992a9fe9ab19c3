// # internal/engine/analysis/analyzer.go
package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hlsense/internal/core/errors"
	"hlsense/internal/core/ports"
	"hlsense/internal/engine/grammar"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
	"hlsense/internal/engine/projection"
	"hlsense/internal/shared/observability"
)

const DefaultMaxAliasDepth = 64

// Analyzer answers scope, type and access-chain questions about a parse tree.
// It keeps no state between calls; every method re-reads the trees it is
// given and those it loads through its ParseTreeSource.
type Analyzer struct {
	source        ports.ParseTreeSource
	maxAliasDepth int
	logger        *slog.Logger
}

type Option func(*Analyzer)

// WithMaxAliasDepth bounds the number of alias hops followed before a chain
// is reported as cyclic.
func WithMaxAliasDepth(depth int) Option {
	return func(a *Analyzer) {
		if depth > 0 {
			a.maxAliasDepth = depth
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New builds an Analyzer. source may be nil, in which case only the tree
// passed to each call is visible.
func New(source ports.ParseTreeSource, opts ...Option) *Analyzer {
	a := &Analyzer{
		source:        source,
		maxAliasDepth: DefaultMaxAliasDepth,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// moduleTree is a parse tree together with its projection. positions[i] is
// the root position of Declarations[i].
type moduleTree struct {
	root      *parsetree.Node
	module    *model.Module
	positions []parsetree.Position
}

func newModuleTree(root *parsetree.Node) (*moduleTree, error) {
	module, err := projection.NodeToModule(root)
	if err != nil {
		return nil, err
	}
	mt := &moduleTree{root: root, module: module}
	for i, child := range root.Children {
		if child.Label == grammar.Declaration {
			mt.positions = append(mt.positions, parsetree.Position{i})
		}
	}
	return mt, nil
}

func (mt *moduleTree) find(name string) (int, bool) {
	for i, d := range mt.module.Declarations {
		if d.Name == name {
			return i, true
		}
	}
	return -1, false
}

// indexAt maps a root child index to its declaration index.
func (mt *moduleTree) indexAt(rootChild int) (int, bool) {
	for i, pos := range mt.positions {
		if pos[0] == rootChild {
			return i, true
		}
	}
	return -1, false
}

func (mt *moduleTree) result(i int) *DeclarationResult {
	return &DeclarationResult{
		Declaration: mt.module.Declarations[i],
		Position:    mt.positions[i].Clone(),
		Root:        mt.root,
		Module:      mt.module,
	}
}

// query is the state of a single Analyzer call. The loaded trees and the
// recursion guards are dropped when the call returns.
type query struct {
	analyzer  *Analyzer
	ctx       context.Context
	span      trace.Span
	operation string
	id        string
	start     time.Time
	current   *moduleTree
	modules   map[string]*moduleTree
	resolving map[string]bool
}

func (a *Analyzer) begin(ctx context.Context, operation string, root *parsetree.Node) (*query, error) {
	moduleName := projection.ModuleName(root)
	ctx, span := observability.Tracer.Start(ctx, "Analyzer."+operation,
		trace.WithAttributes(attribute.String("module", moduleName)))

	q := &query{
		analyzer:  a,
		ctx:       ctx,
		span:      span,
		operation: operation,
		id:        uuid.NewString(),
		start:     time.Now(),
		modules:   make(map[string]*moduleTree),
		resolving: make(map[string]bool),
	}
	span.SetAttributes(attribute.String("query_id", q.id))
	a.logger.Debug("analyzer query", "operation", operation, "query_id", q.id, "module", moduleName)

	if err := ctx.Err(); err != nil {
		q.end(&err)
		return nil, errors.Cancelled(err, operation)
	}
	current, err := newModuleTree(root)
	if err != nil {
		err = errors.AddContext(err, errors.CtxModule, moduleName)
		q.end(&err)
		return nil, err
	}
	q.current = current
	q.modules[current.module.Name] = current
	return q, nil
}

func (q *query) end(errp *error) {
	elapsed := time.Since(q.start)
	observability.QueryDuration.WithLabelValues(q.operation).Observe(elapsed.Seconds())
	if errp != nil && *errp != nil {
		q.span.RecordError(*errp)
		q.span.SetStatus(codes.Error, (*errp).Error())
		q.analyzer.logger.Debug("analyzer query failed", "operation", q.operation, "query_id", q.id, "error", *errp)
	}
	q.span.End()
}

// in returns a view of q that resolves names relative to mt. It shares the
// loaded trees and recursion guards with q.
func (q *query) in(mt *moduleTree) *query {
	if mt == q.current {
		return q
	}
	sub := *q
	sub.current = mt
	return &sub
}

func (q *query) root() *parsetree.Node {
	return q.current.root
}

func (q *query) module() *model.Module {
	return q.current.module
}

// load returns the tree of moduleName, or nil when the source does not know
// it. Errors from the source are wrapped as internal errors.
func (q *query) load(moduleName string) (*moduleTree, error) {
	if moduleName == "" || moduleName == q.module().Name {
		observability.ParseTreeLoadsTotal.WithLabelValues(observability.LoadCurrent).Inc()
		return q.current, nil
	}
	if mt, ok := q.modules[moduleName]; ok {
		return mt, nil
	}
	if err := q.ctx.Err(); err != nil {
		return nil, errors.Cancelled(err, q.operation)
	}
	if q.analyzer.source == nil {
		q.modules[moduleName] = nil
		return nil, nil
	}

	root, err := q.analyzer.source.GetParseTree(q.ctx, moduleName)
	if err != nil {
		observability.ParseTreeLoadsTotal.WithLabelValues(observability.LoadError).Inc()
		if q.ctx.Err() != nil {
			return nil, errors.Cancelled(err, q.operation)
		}
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "load parse tree"), errors.CtxModule, moduleName)
	}
	if root == nil {
		observability.ParseTreeLoadsTotal.WithLabelValues(observability.LoadMissing).Inc()
		q.analyzer.logger.Debug("module not found", "query_id", q.id, "module", moduleName)
		q.modules[moduleName] = nil
		return nil, nil
	}
	observability.ParseTreeLoadsTotal.WithLabelValues(observability.LoadHit).Inc()

	mt, err := newModuleTree(root)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxModule, moduleName)
	}
	q.modules[moduleName] = mt
	return mt, nil
}
