package workspace

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hlsense/internal/core/errors"
	"hlsense/internal/engine/grammar"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
	"hlsense/internal/engine/projection"
	"hlsense/internal/shared/util"
)

// lineParser treats a source file "module NAME" as an empty module called
// NAME.
type lineParser struct {
	calls atomic.Int32
}

func (p *lineParser) IsSupportedPath(path string) bool {
	return strings.HasSuffix(path, ".hl")
}

func (p *lineParser) Parse(_ context.Context, _ string, source []byte) (*parsetree.Node, error) {
	p.calls.Add(1)
	name := strings.TrimSpace(strings.TrimPrefix(string(source), "module"))
	if name == "" {
		return parsetree.NewNode(grammar.Module), nil
	}
	return projection.ModuleToNode(&model.Module{Name: name})
}

func writeSnapshot(t *testing.T, path string, m *model.Module) {
	t.Helper()
	root, err := projection.ModuleToNode(m)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, parsetree.Encode(&buf, root))
	require.NoError(t, util.WriteFile(path, buf.Bytes(), 0o644))
}

func writeSource(t *testing.T, path, name string) {
	t.Helper()
	require.NoError(t, util.WriteFile(path, []byte("module "+name), 0o644))
}

func options(roots ...string) Options {
	return Options{
		Roots:              roots,
		Extensions:         []string{".hl"},
		SnapshotExtensions: []string{".hltree.yaml"},
		ExcludeDirs:        []string{"build"},
		ExcludeFiles:       []string{"gen/*.hl", "*.tmp.hl"},
		CacheCapacity:      8,
		ReloadRate:         1000,
		ReloadBurst:        100,
	}
}

func newScanned(t *testing.T, opts Options, parser *lineParser) *Workspace {
	t.Helper()
	w, err := New(opts, parser)
	require.NoError(t, err)
	require.NoError(t, w.Scan(context.Background()))
	return w
}

func TestScan(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeSnapshot(t, filepath.Join(a, "app.hltree.yaml"), &model.Module{Name: "app"})
	writeSource(t, filepath.Join(b, "nested", "lib.hl"), "lib")
	writeSource(t, filepath.Join(b, "build", "out.hl"), "built")
	writeSource(t, filepath.Join(b, "gen", "gen.hl"), "generated")
	writeSource(t, filepath.Join(b, "scratch.tmp.hl"), "scratch")
	writeSource(t, filepath.Join(b, "headless.hl"), "")
	writeSource(t, filepath.Join(b, "z_duplicate.hl"), "lib")
	require.NoError(t, os.WriteFile(filepath.Join(b, "notes.txt"), []byte("module notes"), 0o644))

	w := newScanned(t, options(a, b), &lineParser{})

	assert.Equal(t, []string{"app", "lib"}, w.ModuleNames())

	path, ok := w.PathOf("lib")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(b, "nested", "lib.hl"), path)

	name, ok := w.ModuleAt(filepath.Join(a, "app.hltree.yaml"))
	require.True(t, ok)
	assert.Equal(t, "app", name)

	_, ok = w.PathOf("built")
	assert.False(t, ok)
}

func TestScanWithoutParserServesSnapshotsOnly(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, filepath.Join(dir, "app.hltree.yaml"), &model.Module{Name: "app"})
	writeSource(t, filepath.Join(dir, "lib.hl"), "lib")

	w, err := New(options(dir), nil)
	require.NoError(t, err)
	require.NoError(t, w.Scan(context.Background()))

	assert.Equal(t, []string{"app"}, w.ModuleNames())
}

func TestGetParseTree(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, "a.hl"), "a")
	writeSource(t, filepath.Join(dir, "b.hl"), "b")

	parser := &lineParser{}
	opts := options(dir)
	opts.CacheCapacity = 1
	w := newScanned(t, opts, parser)
	require.Equal(t, int32(2), parser.calls.Load())

	// Capacity 1: b was indexed last and is cached, a was evicted.
	root, err := w.GetParseTree(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "b", projection.ModuleName(root))
	assert.Equal(t, int32(2), parser.calls.Load())

	root, err = w.GetParseTree(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", projection.ModuleName(root))
	assert.Equal(t, int32(3), parser.calls.Load())

	root, err = w.GetParseTree(context.Background(), "a")
	require.NoError(t, err)
	assert.NotNil(t, root)
	assert.Equal(t, int32(3), parser.calls.Load())

	root, err = w.GetParseTree(context.Background(), "absent")
	assert.NoError(t, err)
	assert.Nil(t, root)
}

func TestGetParseTreeErrors(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, "a.hl"), "a")
	opts := options(dir)
	opts.CacheCapacity = 1
	w := newScanned(t, opts, &lineParser{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := w.GetParseTree(ctx, "a")
	assert.True(t, errors.IsCode(err, errors.CodeCancelled), "got %v", err)

	// Drop a from the cache, then make its file unreadable.
	writeSource(t, filepath.Join(dir, "b.hl"), "b")
	require.NoError(t, w.Invalidate(context.Background(), []string{filepath.Join(dir, "b.hl")}))
	require.NoError(t, os.Remove(filepath.Join(dir, "a.hl")))

	_, err = w.GetParseTree(context.Background(), "a")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInternal), "got %v", err)
	assert.Contains(t, err.Error(), "module")
}

func TestInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.hl")
	writeSource(t, path, "first")
	w := newScanned(t, options(dir), &lineParser{})
	require.Equal(t, []string{"first"}, w.ModuleNames())

	writeSource(t, path, "second")
	added := filepath.Join(dir, "sub", "c.hl")
	writeSource(t, added, "third")
	require.NoError(t, w.Invalidate(context.Background(), []string{path, added}))
	assert.Equal(t, []string{"second", "third"}, w.ModuleNames())

	root, err := w.GetParseTree(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, "second", projection.ModuleName(root))

	root, err = w.GetParseTree(context.Background(), "first")
	require.NoError(t, err)
	assert.Nil(t, root)

	require.NoError(t, os.Remove(path))
	require.NoError(t, w.Invalidate(context.Background(), []string{path, filepath.Join(t.TempDir(), "outside.hl")}))
	assert.Equal(t, []string{"third"}, w.ModuleNames())
}

func TestInvalidateCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.hl")
	writeSource(t, path, "a")
	opts := options(dir)
	opts.ReloadRate = 0.001
	opts.ReloadBurst = 1
	w := newScanned(t, opts, &lineParser{})

	// The first reload takes the only token.
	require.NoError(t, w.Invalidate(context.Background(), []string{path}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := w.Invalidate(ctx, []string{path})
	assert.True(t, errors.IsCode(err, errors.CodeCancelled), "got %v", err)

	w.SetReloadRate(1000, 1)
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, w.Invalidate(context.Background(), []string{path}))
	assert.Equal(t, []string{"a"}, w.ModuleNames())
}

func TestHealth(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, "a.hl"), "a")

	w, err := New(options(dir), &lineParser{})
	require.NoError(t, err)
	assert.Equal(t, "workspace", w.Name())

	_, err = w.Health(context.Background())
	assert.Error(t, err)

	require.NoError(t, w.Scan(context.Background()))
	detail, err := w.Health(context.Background())
	require.NoError(t, err)
	assert.Contains(t, detail, "1 modules")
	assert.Contains(t, detail, "1/8 cached")
}

func TestNewRejectsBadPattern(t *testing.T) {
	opts := options(t.TempDir())
	opts.ExcludeFiles = []string{"["}
	_, err := New(opts, nil)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError), "got %v", err)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, "a.hl"), "a")
	w := newScanned(t, options(dir), &lineParser{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw, err := w.Watch(ctx, 20*time.Millisecond)
	require.NoError(t, err)
	defer fw.Close()

	writeSnapshot(t, filepath.Join(dir, "b.hltree.yaml"), &model.Module{Name: "b"})

	assert.Eventually(t, func() bool {
		_, ok := w.PathOf("b")
		return ok
	}, 3*time.Second, 20*time.Millisecond)
}
