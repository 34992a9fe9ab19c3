// # cmd/hlsense/app_test.go
package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"hlsense/internal/core/errors"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
	"hlsense/internal/engine/projection"
)

func geoModule() *model.Module {
	int32Type := model.NewInteger(32, true)
	point := &model.Struct{
		Name:        "Point",
		MemberNames: []string{"x", "y"},
		MemberTypes: []model.TypeReference{int32Type, int32Type},
	}
	origin := &model.Function{
		Declaration: model.FunctionDeclaration{
			Name:                 "origin",
			OutputParameterNames: []string{"p"},
			Type: model.FunctionType{
				OutputParameterTypes: []model.TypeReference{model.NewCustom("", "Point")},
			},
		},
		Definition: &model.FunctionDefinition{Name: "origin"},
	}
	return &model.Module{
		Name: "geo",
		Declarations: []model.Declaration{
			{Name: "Point", IsExport: true, Value: point},
			{Name: "P", IsExport: true, Value: &model.Alias{Name: "P", Type: []model.TypeReference{model.NewCustom("", "Point")}}},
			{Name: "origin", IsExport: true, Value: origin},
		},
	}
}

// setupWorkspace writes a config and one snapshot module into a temp dir and
// returns a command context reading it.
func setupWorkspace(t *testing.T) (*Context, *bytes.Buffer, string) {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	configPath := filepath.Join(dir, "hlsense.toml")
	if err := os.WriteFile(configPath, []byte("version = 1\n[watch]\nenabled = false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	root, err := projection.ModuleToNode(geoModule())
	if err != nil {
		t.Fatal(err)
	}
	snapshot := filepath.Join(dir, "src", "geo.hltree.yaml")
	if err := os.MkdirAll(filepath.Dir(snapshot), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(snapshot)
	if err != nil {
		t.Fatal(err)
	}
	if err := parsetree.Encode(f, root); err != nil {
		t.Fatal(err)
	}
	f.Close()

	var out bytes.Buffer
	return &Context{Context: context.Background(), Config: configPath, Out: &out}, &out, snapshot
}

func TestModulesCmd(t *testing.T) {
	cli, out, snapshot := setupWorkspace(t)

	if err := (&ModulesCmd{}).Run(cli); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "geo") || !strings.Contains(got, snapshot) {
		t.Errorf("expected geo module at %s, got %q", snapshot, got)
	}
}

func TestDeclarationCommands(t *testing.T) {
	tests := []struct {
		name string
		cmd  interface{ Run(*Context) error }
		want []string
	}{
		{
			name: "members follow the alias",
			cmd:  &MembersCmd{Named{Module: "geo", Declaration: "P"}},
			want: []string{"x: Int32", "y: Int32"},
		},
		{
			name: "underlying",
			cmd:  &UnderlyingCmd{Named{Module: "geo", Declaration: "P"}},
			want: []string{"geo.Point", "x: Int32, y: Int32"},
		},
		{
			name: "symbol",
			cmd:  &SymbolCmd{At: At{Module: "geo", Position: "1"}, Name: "origin"},
			want: []string{"value", "origin", "() -> (Point)"},
		},
		{
			name: "symbols",
			cmd:  &SymbolsCmd{At{Module: "geo", Position: "1"}},
			want: []string{"Point", "P", "origin"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out, _ := setupWorkspace(t)
			if err := tt.cmd.Run(cli); err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("expected %q in output %q", want, out.String())
				}
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	cli, _, _ := setupWorkspace(t)

	err := (&MembersCmd{Named{Module: "absent", Declaration: "P"}}).Run(cli)
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("expected not found for unknown module, got %v", err)
	}

	err = (&UnderlyingCmd{Named{Module: "geo", Declaration: "Missing"}}).Run(cli)
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("expected not found for unknown declaration, got %v", err)
	}

	err = (&TypeCmd{At{Module: "geo", Position: "1.x"}}).Run(cli)
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Errorf("expected validation error for bad position, got %v", err)
	}
}

func TestDumpCmd(t *testing.T) {
	cli, out, snapshot := setupWorkspace(t)
	copyPath := filepath.Join(t.TempDir(), "out", "geo.hltree.yaml")

	if err := (&DumpCmd{File: snapshot, Snapshot: copyPath}).Run(cli); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"module geo", "function origin() -> (p: Point)", "P = Point"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output %q", want, got)
		}
	}

	root, err := parsetree.DecodeFile(copyPath)
	if err != nil {
		t.Fatal(err)
	}
	if name := projection.ModuleName(root); name != "geo" {
		t.Errorf("expected written snapshot of geo, got %q", name)
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	if err := (&VersionCmd{}).Run(&Context{Out: &out}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), version) {
		t.Errorf("expected version in %q", out.String())
	}
}

func TestCLIParsing(t *testing.T) {
	parser, err := kong.New(&CLI, kong.Name("hlsense"))
	if err != nil {
		t.Fatal(err)
	}
	tests := [][]string{
		{"modules"},
		{"symbols", "geo", "1.4"},
		{"symbol", "geo", "1", "origin"},
		{"members", "geo", "P"},
		{"components", "geo", "1.4.2", "--select"},
		{"--no-color", "serve", "--metrics", "127.0.0.1:0", "--no-watch"},
	}
	for _, args := range tests {
		if _, err := parser.Parse(args); err != nil {
			t.Errorf("parse %v: %v", args, err)
		}
	}
}
