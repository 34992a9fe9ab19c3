package main

import (
	"bytes"
	"fmt"

	"hlsense/internal/engine/parsetree"
	"hlsense/internal/engine/projection"
	"hlsense/internal/shared/util"
)

// DumpCmd projects a single file and prints its module. With --snapshot the
// parse tree is also written as YAML, which is how source files are turned
// into fixtures for machines without the compiled grammar.
type DumpCmd struct {
	File     string `arg:"" help:"Source or snapshot file" type:"existingfile"`
	Snapshot string `help:"Write the parse tree to this snapshot file" type:"path"`
}

func (cmd *DumpCmd) Run(cli *Context) error {
	cfg, err := cli.config()
	if err != nil {
		return err
	}
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}

	root, err := app.Workspace.LoadFile(cli, cmd.File)
	if err != nil {
		return err
	}
	module, err := projection.NodeToModule(root)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.Out, "module %s\n", nameColor(module.Name))
	for _, imp := range module.Imports {
		fmt.Fprintf(cli.Out, "import %s as %s\n", imp.ModuleName, nameColor(imp.Alias))
	}
	for i, d := range module.Declarations {
		export := ""
		if d.IsExport {
			export = kindColor("export ")
		}
		fmt.Fprintf(cli.Out, "%3d %s%s\n", i, export, describe(d, module))
	}

	if cmd.Snapshot != "" {
		var buf bytes.Buffer
		if err := parsetree.Encode(&buf, root); err != nil {
			return err
		}
		if err := util.WriteFile(cmd.Snapshot, buf.Bytes(), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cli.Out, "%s %s\n", dimColor("snapshot written to"), cmd.Snapshot)
	}
	return nil
}
