// # internal/core/ports/ports.go
package ports

import (
	"context"

	"hlsense/internal/engine/parsetree"
)

// ParseTreeSource supplies the parse tree of a module by name. It is the only
// point where an analyzer query may block. A module that does not exist is
// reported as (nil, nil).
type ParseTreeSource interface {
	GetParseTree(ctx context.Context, moduleName string) (*parsetree.Node, error)
}

// ParseTreeSourceFunc adapts a function to ParseTreeSource.
type ParseTreeSourceFunc func(ctx context.Context, moduleName string) (*parsetree.Node, error)

func (f ParseTreeSourceFunc) GetParseTree(ctx context.Context, moduleName string) (*parsetree.Node, error) {
	return f(ctx, moduleName)
}

// SourceParser turns hlang source into a parse tree.
type SourceParser interface {
	Parse(ctx context.Context, path string, source []byte) (*parsetree.Node, error)
	IsSupportedPath(path string) bool
}

// ModuleIndex enumerates the modules a ParseTreeSource can serve.
type ModuleIndex interface {
	ParseTreeSource
	ModuleNames() []string
	PathOf(moduleName string) (string, bool)
}
