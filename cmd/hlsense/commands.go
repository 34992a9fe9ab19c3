// # cmd/hlsense/commands.go
package main

import (
	"fmt"

	"hlsense/internal/core/errors"
	"hlsense/internal/engine/analysis"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
)

// ModulesCmd lists the indexed modules and the files declaring them.
type ModulesCmd struct{}

func (cmd *ModulesCmd) Run(cli *Context) error {
	app, err := cli.app()
	if err != nil {
		return err
	}
	names := app.Workspace.ModuleNames()
	if len(names) == 0 {
		fmt.Fprintln(cli.Out, dimColor("no modules found"))
		return nil
	}
	for _, name := range names {
		path, _ := app.Workspace.PathOf(name)
		fmt.Fprintf(cli.Out, "%s\t%s\n", nameColor(name), dimColor(path))
	}
	return nil
}

// At is a module and a dotted node position inside it.
type At struct {
	Module   string `arg:"" help:"Module name"`
	Position string `arg:"" help:"Node position, e.g. 1.4.0.2 (empty for the root)"`
}

type SymbolsCmd struct {
	At
}

func (cmd *SymbolsCmd) Run(cli *Context) error {
	app, err := cli.app()
	if err != nil {
		return err
	}
	root, module, err := app.tree(cli, cmd.Module)
	if err != nil {
		return err
	}
	pos, err := parsePosition(cmd.Position)
	if err != nil {
		return err
	}
	symbols, err := app.Analyzer.GetSymbols(cli, root, pos)
	if err != nil {
		return err
	}
	for _, s := range symbols {
		printSymbol(cli.Out, s, module)
	}
	return nil
}

type SymbolCmd struct {
	At
	Name string `arg:"" help:"Name to resolve"`
}

func (cmd *SymbolCmd) Run(cli *Context) error {
	app, err := cli.app()
	if err != nil {
		return err
	}
	root, module, err := app.tree(cli, cmd.Module)
	if err != nil {
		return err
	}
	pos, err := parsePosition(cmd.Position)
	if err != nil {
		return err
	}
	symbol, err := app.Analyzer.GetSymbol(cli, root, pos, cmd.Name)
	if err != nil {
		return err
	}
	if symbol == nil {
		return errors.AddContext(
			errors.Newf(errors.CodeNotFound, "%q is not visible at %s", cmd.Name, pos),
			errors.CtxSymbol, cmd.Name,
		)
	}
	printSymbol(cli.Out, symbol, module)
	return nil
}

type TypeCmd struct {
	At
}

func (cmd *TypeCmd) Run(cli *Context) error {
	app, err := cli.app()
	if err != nil {
		return err
	}
	root, module, err := app.tree(cli, cmd.Module)
	if err != nil {
		return err
	}
	pos, err := parsePosition(cmd.Position)
	if err != nil {
		return err
	}
	result, err := app.Analyzer.GetExpressionTypeAt(cli, root, pos)
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Fprintln(cli.Out, dimColor("unknown"))
		return nil
	}
	category := "type"
	if result.IsValue {
		category = "value"
	}
	fmt.Fprintf(cli.Out, "%s %s\n", typeColor(model.TypeName(result.Types, module)), dimColor("("+category+")"))
	return nil
}

type ComponentsCmd struct {
	At
	Select bool `help:"Print only the component under the position"`
}

func (cmd *ComponentsCmd) Run(cli *Context) error {
	app, err := cli.app()
	if err != nil {
		return err
	}
	root, module, err := app.tree(cli, cmd.Module)
	if err != nil {
		return err
	}
	pos, err := parsePosition(cmd.Position)
	if err != nil {
		return err
	}
	components, err := app.Analyzer.GetAccessExpressionComponents(cli, root, pos)
	if err != nil {
		return err
	}
	if cmd.Select {
		node, err := parsetree.NodeAt(root, pos)
		if err != nil {
			return err
		}
		c, ok := analysis.SelectAccessExpressionComponent(components, node, pos, pos)
		if !ok {
			fmt.Fprintln(cli.Out, dimColor("no component"))
			return nil
		}
		printComponent(cli.Out, 0, c, module)
		return nil
	}
	for i, c := range components {
		printComponent(cli.Out, i, c, module)
	}
	return nil
}

type SignatureCmd struct {
	At
}

func (cmd *SignatureCmd) Run(cli *Context) error {
	app, err := cli.app()
	if err != nil {
		return err
	}
	root, _, err := app.tree(cli, cmd.Module)
	if err != nil {
		return err
	}
	pos, err := parsePosition(cmd.Position)
	if err != nil {
		return err
	}
	result, err := app.Analyzer.GetFunctionValueAndParameterIndexFromExpressionCall(cli, root, pos)
	if err != nil {
		return err
	}
	if result == nil {
		result, err = app.Analyzer.GetFunctionValueAndParameterIndexAtDeclaration(cli, root, pos)
		if err != nil {
			return err
		}
	}
	if result == nil {
		fmt.Fprintln(cli.Out, dimColor("no signature"))
		return nil
	}

	decl := result.Function.Declaration
	fmt.Fprintln(cli.Out, typeColor(model.FunctionSignature(decl, result.Module)))
	names := decl.InputParameterNames
	if !result.IsInput {
		names = decl.OutputParameterNames
	}
	if result.ParameterIndex < len(names) {
		fmt.Fprintf(cli.Out, "parameter %d: %s\n", result.ParameterIndex, nameColor(names[result.ParameterIndex]))
	}
	return nil
}

// Named is a module and a top-level declaration name.
type Named struct {
	Module      string `arg:"" help:"Module name"`
	Declaration string `arg:"" help:"Declaration name"`
}

type MembersCmd struct {
	Named
}

func (cmd *MembersCmd) Run(cli *Context) error {
	app, err := cli.app()
	if err != nil {
		return err
	}
	root, result, err := app.declaration(cli, cmd.Module, cmd.Declaration)
	if err != nil {
		return err
	}
	members, err := app.Analyzer.GetUnderlyingMembers(cli, root, result)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.Out, describe(result.Declaration, result.Module))
	printMembers(cli.Out, members, result.Module)
	return nil
}

type UnderlyingCmd struct {
	Named
}

func (cmd *UnderlyingCmd) Run(cli *Context) error {
	app, err := cli.app()
	if err != nil {
		return err
	}
	root, result, err := app.declaration(cli, cmd.Module, cmd.Declaration)
	if err != nil {
		return err
	}
	underlying, err := app.Analyzer.GetUnderlyingTypeDeclaration(cli, root, result)
	if err != nil {
		return err
	}
	if underlying == nil {
		fmt.Fprintln(cli.Out, dimColor("no underlying declaration"))
		return nil
	}
	fmt.Fprintf(cli.Out, "%s %s\n", nameColor(underlying.Module.Name+"."+underlying.Declaration.Name), dimColor("@"+underlying.Position.String()))
	fmt.Fprintln(cli.Out, describe(underlying.Declaration, underlying.Module))
	return nil
}
