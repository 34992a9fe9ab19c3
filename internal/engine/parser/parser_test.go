package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"hlsense/internal/core/errors"
	"hlsense/internal/engine/parsetree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoParser() *Parser {
	loader := NewGrammarLoader()
	loader.Register("go", goLanguage(), ".go")
	return NewParser(loader)
}

func TestParseConvertsLabelsAndRanges(t *testing.T) {
	p := newGoParser()
	source := []byte("package main\n\nfunc run() {}\n")

	root, err := p.Parse(context.Background(), "main.go", source)
	require.NoError(t, err)
	require.NotNil(t, root)

	assert.Equal(t, "source_file", root.Label)
	require.NotNil(t, root.Range)
	assert.Equal(t, parsetree.SourcePosition{Line: 1, Column: 1}, root.Range.Start)

	pkg, pkgPos, ok := parsetree.FindDescendant(root, parsetree.Position{}, parsetree.HasLabel("package_clause"))
	require.True(t, ok)
	assert.Equal(t, "packagemain", parsetree.Text(pkg))
	require.Len(t, pkg.Children, 2)
	assert.Equal(t, "package", pkg.Children[0].Label)
	assert.Equal(t, "main", pkg.Children[1].Label)
	assert.Equal(t, parsetree.SourcePosition{Line: 1, Column: 9}, pkg.Children[1].Range.Start)
	assert.Equal(t, pkg, parsetree.MustNodeAt(root, pkgPos))

	fn, _, ok := parsetree.FindDescendant(root, parsetree.Position{}, parsetree.HasLabel("function_declaration"))
	require.True(t, ok)
	assert.Equal(t, 3, fn.Range.Start.Line)
	assert.Equal(t, "run", fn.Children[1].Label)
}

func TestParseKeepsErrorNodes(t *testing.T) {
	p := newGoParser()

	root, err := p.Parse(context.Background(), "broken.go", []byte("package main\nfunc (\n"))
	require.NoError(t, err)

	errorNodes := parsetree.FindDescendants(root, parsetree.Position{}, parsetree.HasLabel("ERROR"))
	missing := parsetree.FindDescendants(root, parsetree.Position{}, func(n *parsetree.Node) bool {
		return n.IsTerminal() && n.Label == ""
	})
	assert.NotEmpty(t, errorNodes)
	assert.Empty(t, missing)
}

func TestParseRejectsUnknownExtension(t *testing.T) {
	p := newGoParser()

	assert.True(t, p.IsSupportedPath("dir/file.GO"))
	assert.False(t, p.IsSupportedPath("file.hl"))

	_, err := p.Parse(context.Background(), "file.hl", nil)
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

func TestParseHonoursCancellation(t *testing.T) {
	p := newGoParser()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Parse(ctx, "main.go", []byte("package main\n"))
	assert.True(t, errors.IsCode(err, errors.CodeCancelled))
}

func TestGrammarLoader(t *testing.T) {
	loader := NewGrammarLoader()
	loader.Register("go", goLanguage(), ".go", ".GOX")

	assert.Equal(t, []string{".go", ".gox"}, loader.SupportedExtensions())
	lang, ok := loader.ForPath("a/b.gox")
	require.True(t, ok)
	assert.Equal(t, "go", lang.Name)
}

func TestLoadSharedObjectVerifiesHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hlang.so")
	require.NoError(t, os.WriteFile(path, []byte("not a grammar"), 0o644))

	hash, err := CalculateSHA256(path)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	err = NewGrammarLoader().LoadSharedObject(path, "hlang", "deadbeef", ".hl")
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	err = NewGrammarLoader().LoadSharedObject(filepath.Join(t.TempDir(), "absent.so"), "hlang", "deadbeef", ".hl")
	assert.True(t, errors.IsCode(err, errors.CodeInternal))
}
