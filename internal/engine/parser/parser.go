// # internal/engine/parser/parser.go
package parser

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"hlsense/internal/core/errors"
	"hlsense/internal/engine/parsetree"
	"hlsense/internal/shared/observability"
)

// Parser turns source files into parse trees with the grammar registered for
// their extension. It implements ports.SourceParser.
type Parser struct {
	loader *GrammarLoader

	mu    sync.Mutex
	pools map[string]*ParserPool
}

func NewParser(loader *GrammarLoader) *Parser {
	return &Parser{
		loader: loader,
		pools:  make(map[string]*ParserPool),
	}
}

func (p *Parser) IsSupportedPath(path string) bool {
	_, ok := p.loader.ForPath(path)
	return ok
}

func (p *Parser) pool(lang *Language) *ParserPool {
	p.mu.Lock()
	defer p.mu.Unlock()
	pool, ok := p.pools[lang.Name]
	if !ok {
		pool = NewParserPool(lang.Grammar)
		p.pools[lang.Name] = pool
	}
	return pool
}

// Parse parses source. Syntax errors do not fail the parse; they show up as
// ERROR nodes in the returned tree.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*parsetree.Node, error) {
	lang, ok := p.loader.ForPath(path)
	if !ok {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "no grammar for file"), errors.CtxPath, path)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Cancelled(err, "parse")
	}

	start := time.Now()
	pool := p.pool(lang)
	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(source, nil)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxPath, path)
	}
	defer tree.Close()

	root := Convert(tree.RootNode(), source)
	observability.ParsingDuration.WithLabelValues(lang.Name).Observe(time.Since(start).Seconds())
	slog.Debug("parsed file", "path", path, "language", lang.Name, "duration", time.Since(start))

	if err := ctx.Err(); err != nil {
		return nil, errors.Cancelled(err, "parse")
	}
	return root, nil
}
