package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"hlsense/internal/engine/analysis"
	"hlsense/internal/engine/model"
)

var (
	nameColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	kindColor = color.New(color.FgYellow).SprintFunc()
	typeColor = color.New(color.FgGreen).SprintFunc()
	dimColor  = color.New(color.Faint).SprintFunc()
)

func printSymbol(w io.Writer, s *analysis.Symbol, module *model.Module) {
	detail := typeColor(model.TypeName(s.Types, module))
	if s.ModuleAlias != nil {
		detail = "import " + typeColor(s.ModuleAlias.ModuleName)
	}
	fmt.Fprintf(w, "%-12s %s %s %s\n", kindColor(s.Kind), nameColor(s.Name), detail, dimColor("@"+s.Position.String()))
}

func printMembers(w io.Writer, members []model.Member, module *model.Module) {
	for _, m := range members {
		fmt.Fprintf(w, "  %s: %s\n", nameColor(m.Name), typeColor(model.TypeName(m.Type, module)))
	}
}

// describe renders the head line of a declaration.
func describe(d model.Declaration, module *model.Module) string {
	switch v := d.Value.(type) {
	case *model.Function:
		return model.FunctionSignature(v.Declaration, module)
	case *model.Alias:
		return fmt.Sprintf("%s %s = %s", d.Kind(), d.Name, model.TypeName(v.Type, module))
	case *model.GlobalVariable:
		return fmt.Sprintf("%s %s: %s", d.Kind(), d.Name, model.TypeName(v.Type, module))
	}

	members := model.Members(d)
	if len(members) == 0 {
		return fmt.Sprintf("%s %s", d.Kind(), d.Name)
	}
	parts := make([]string, 0, len(members))
	for _, m := range members {
		parts = append(parts, m.Name+": "+model.TypeName(m.Type, module))
	}
	return fmt.Sprintf("%s %s { %s }", d.Kind(), d.Name, strings.Join(parts, ", "))
}

func printComponent(w io.Writer, i int, c analysis.AccessExpressionComponent, module *model.Module) {
	detail := ""
	switch {
	case c.Import != nil:
		detail = "import " + c.Import.ModuleName
	case c.Declaration != nil:
		detail = describe(c.Declaration.Declaration, module)
	}
	fmt.Fprintf(w, "%d %-14s %s %s %s\n", i, kindColor(c.Kind), nameColor(c.Value), typeColor(detail), dimColor("@"+c.Position.String()))
}
