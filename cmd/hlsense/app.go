// # cmd/hlsense/app.go
package main

import (
	"context"
	"log/slog"

	"hlsense/internal/core/config"
	"hlsense/internal/core/errors"
	"hlsense/internal/core/ports"
	"hlsense/internal/data/workspace"
	"hlsense/internal/engine/analysis"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parser"
	"hlsense/internal/engine/parsetree"
	"hlsense/internal/engine/projection"
)

type App struct {
	Config    *config.Config
	Workspace *workspace.Workspace
	Analyzer  *analysis.Analyzer
}

func NewApp(cfg *config.Config) (*App, error) {
	loader := parser.NewGrammarLoader()
	if cfg.Grammar.SharedObject != "" {
		if err := loader.LoadSharedObject(cfg.Grammar.SharedObject, cfg.Grammar.Language, cfg.Grammar.SHA256, cfg.Workspace.Extensions...); err != nil {
			return nil, err
		}
	}

	// Without a grammar only snapshots can be served.
	var sourceParser ports.SourceParser
	if len(loader.SupportedExtensions()) > 0 {
		sourceParser = parser.NewParser(loader)
	} else {
		slog.Debug("no hlang grammar configured; serving snapshots only")
	}

	ws, err := workspace.New(workspaceOptions(cfg), sourceParser)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:    cfg,
		Workspace: ws,
		Analyzer:  analysis.New(ws, analysis.WithMaxAliasDepth(cfg.Analysis.MaxAliasDepth)),
	}, nil
}

func workspaceOptions(cfg *config.Config) workspace.Options {
	return workspace.Options{
		Roots:              cfg.Workspace.Roots,
		Extensions:         cfg.Workspace.Extensions,
		SnapshotExtensions: cfg.Workspace.SnapshotExtensions,
		ExcludeDirs:        cfg.Exclude.Dirs,
		ExcludeFiles:       cfg.Exclude.Files,
		CacheCapacity:      cfg.Cache.Capacity,
		ReloadRate:         cfg.Watch.ReloadRate,
		ReloadBurst:        cfg.Watch.ReloadBurst,
	}
}

// config loads the configuration and applies its log level unless
// --verbose was given.
func (c *Context) config() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.Config)
	if err != nil {
		return nil, err
	}
	c.setLogLevel(cfg.SlogLevel())
	return cfg, nil
}

func (c *Context) setLogLevel(level slog.Level) {
	if c.logLevel != nil && !c.Verbose {
		c.logLevel.Set(level)
	}
}

// app loads the configuration and scans the workspace.
func (c *Context) app() (*App, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}

	app, err := NewApp(cfg)
	if err != nil {
		return nil, err
	}
	if err := app.Workspace.Scan(c); err != nil {
		return nil, err
	}
	return app, nil
}

// tree returns the parse tree of moduleName and its projection.
func (a *App) tree(ctx context.Context, moduleName string) (*parsetree.Node, *model.Module, error) {
	root, err := a.Workspace.GetParseTree(ctx, moduleName)
	if err != nil {
		return nil, nil, err
	}
	if root == nil {
		return nil, nil, errors.AddContext(
			errors.Newf(errors.CodeNotFound, "unknown module %q", moduleName),
			errors.CtxModule, moduleName,
		)
	}
	module, err := projection.NodeToModule(root)
	if err != nil {
		return nil, nil, err
	}
	return root, module, nil
}

// declaration looks up a top-level declaration of moduleName by name.
func (a *App) declaration(ctx context.Context, moduleName, name string) (*parsetree.Node, *analysis.DeclarationResult, error) {
	root, _, err := a.tree(ctx, moduleName)
	if err != nil {
		return nil, nil, err
	}
	result, err := a.Analyzer.GetDeclarationUsingParseTree(ctx, root, name)
	if err != nil {
		return nil, nil, err
	}
	if result == nil {
		return nil, nil, errors.AddContext(
			errors.Newf(errors.CodeNotFound, "module %q has no declaration %q", moduleName, name),
			errors.CtxSymbol, name,
		)
	}
	return root, result, nil
}

func parsePosition(s string) (parsetree.Position, error) {
	pos, err := parsetree.ParsePosition(s)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPosition, s)
	}
	return pos, nil
}
