// # cmd/hlsense/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
)

const version = "0.3.0"

// Context is shared by every command.
type Context struct {
	context.Context
	Config   string
	Verbose  bool
	Out      io.Writer
	logLevel *slog.LevelVar
}

// CLI represents the command-line interface
var CLI struct {
	Config  string `help:"Configuration file path" short:"c" type:"path"`
	Verbose bool   `help:"Enable debug logging" short:"v"`
	NoColor bool   `help:"Disable coloured output" name:"no-color"`

	Modules    ModulesCmd    `cmd:"" help:"List the workspace modules"`
	Symbols    SymbolsCmd    `cmd:"" help:"List the names visible at a position"`
	Symbol     SymbolCmd     `cmd:"" help:"Resolve one name at a position"`
	Type       TypeCmd       `cmd:"" help:"Infer the type of the expression at a position"`
	Components ComponentsCmd `cmd:"" help:"Decompose the access chain at a position"`
	Signature  SignatureCmd  `cmd:"" help:"Show the call signature around a position"`
	Members    MembersCmd    `cmd:"" help:"List the members of a declaration"`
	Underlying UnderlyingCmd `cmd:"" help:"Follow aliases to the declaration they name"`
	Dump       DumpCmd       `cmd:"" help:"Print the module projected from a file"`
	Serve      ServeCmd      `cmd:"" help:"Serve metrics and keep the workspace index current"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
}

type VersionCmd struct{}

func (cmd *VersionCmd) Run(cli *Context) error {
	fmt.Fprintf(cli.Out, "hlsense v%s\n", version)
	return nil
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("hlsense"),
		kong.Description("Semantic queries over hlang parse trees."),
		kong.UsageOnError(),
	)

	if CLI.NoColor {
		color.NoColor = true
	}

	level := new(slog.LevelVar)
	if CLI.Verbose {
		level.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := kctx.Run(&Context{
		Context:  ctx,
		Config:   CLI.Config,
		Verbose:  CLI.Verbose,
		Out:      os.Stdout,
		logLevel: level,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		stop()
		os.Exit(1)
	}
}
