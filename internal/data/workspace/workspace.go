// # internal/data/workspace/workspace.go
package workspace

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hlsense/internal/core/errors"
	"hlsense/internal/core/ports"
	"hlsense/internal/engine/parsetree"
	"hlsense/internal/engine/projection"
	"hlsense/internal/shared/observability"
	"hlsense/internal/shared/util"

	"github.com/gobwas/glob"
)

// Options configures a Workspace.
type Options struct {
	Roots              []string
	Extensions         []string
	SnapshotExtensions []string
	ExcludeDirs        []string
	ExcludeFiles       []string
	CacheCapacity      int
	ReloadRate         float64
	ReloadBurst        int
}

type pattern struct {
	g        glob.Glob
	pathwise bool
}

// Workspace indexes the modules found under a set of roots and serves their
// parse trees by module name. Trees are loaded lazily and kept in an LRU
// cache; Invalidate drops and re-reads changed files.
type Workspace struct {
	opts         Options
	parser       ports.SourceParser
	excludeDirs  []pattern
	excludeFiles []pattern
	cache        *LRUCache[string, *parsetree.Node]
	limiter      *util.Limiter
	logger       *slog.Logger

	mu         sync.RWMutex
	modules    map[string]string // module name -> path
	paths      map[string]string // path -> module name
	generation uint64
	scanned    time.Time
	scanErr    error
}

var _ ports.ModuleIndex = (*Workspace)(nil)

// New builds an empty Workspace; call Scan to index the roots. parser may be
// nil, in which case only snapshot files are served.
func New(opts Options, parser ports.SourceParser) (*Workspace, error) {
	excludeDirs, err := compilePatterns(opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compilePatterns(opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}
	if opts.ReloadRate <= 0 {
		opts.ReloadRate = 20
	}
	if opts.ReloadBurst < 1 {
		opts.ReloadBurst = 1
	}

	w := &Workspace{
		opts:         opts,
		parser:       parser,
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
		limiter:      util.NewLimiter(opts.ReloadRate, opts.ReloadBurst),
		logger:       slog.Default().With("component", "workspace"),
		modules:      make(map[string]string),
		paths:        make(map[string]string),
	}
	w.cache = NewLRUCache[string, *parsetree.Node](opts.CacheCapacity, func(name string, _ *parsetree.Node) {
		observability.CacheEvictionsTotal.Inc()
		w.logger.Debug("parse tree evicted", "module", name)
	})
	return w, nil
}

func compilePatterns(raw []string) ([]pattern, error) {
	patterns := make([]pattern, 0, len(raw))
	for _, p := range raw {
		normalized := util.SlashPath(p)
		if normalized == "" {
			continue
		}
		g, err := glob.Compile(normalized, '/')
		if err != nil {
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeValidationError, "invalid exclude pattern"),
				errors.CtxPath, p,
			)
		}
		patterns = append(patterns, pattern{g: g, pathwise: util.IsPathPattern(normalized)})
	}
	return patterns, nil
}

// Suffixes lists every file suffix the workspace loads.
func (w *Workspace) Suffixes() []string {
	out := make([]string, 0, len(w.opts.Extensions)+len(w.opts.SnapshotExtensions))
	out = append(out, w.opts.Extensions...)
	return append(out, w.opts.SnapshotExtensions...)
}

func (w *Workspace) Roots() []string {
	return append([]string(nil), w.opts.Roots...)
}

// SetReloadRate changes how fast Invalidate re-indexes changed files.
// A non-positive rate is ignored.
func (w *Workspace) SetReloadRate(perSecond float64, burst int) {
	if perSecond <= 0 {
		return
	}
	w.limiter.SetRate(perSecond, max(burst, 1))
}

// Scan rebuilds the module index from the roots. Files that fail to load are
// logged and skipped; only cancellation and unreadable roots are errors.
func (w *Workspace) Scan(ctx context.Context) (err error) {
	ctx, span := observability.Tracer.Start(ctx, "workspace.scan",
		trace.WithAttributes(attribute.Int("roots", len(w.opts.Roots))))
	defer span.End()

	w.mu.Lock()
	w.modules = make(map[string]string)
	w.paths = make(map[string]string)
	w.generation++
	w.mu.Unlock()
	w.cache.Clear()

	defer func() {
		w.mu.Lock()
		w.scanned = time.Now()
		w.scanErr = err
		count := len(w.modules)
		w.mu.Unlock()
		observability.WorkspaceModules.Set(float64(count))
		span.SetAttributes(attribute.Int("modules", count))
	}()

	for _, root := range w.opts.Roots {
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return errors.Cancelled(ctxErr, "scan")
			}
			if d.IsDir() {
				if path != root && w.excludedDir(root, path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !w.accepts(root, path) {
				return nil
			}
			if err := w.index(ctx, path); err != nil {
				w.logger.Warn("skipping module file", "path", path, "error", err)
			}
			return nil
		})
		if walkErr != nil {
			if errors.IsCode(walkErr, errors.CodeCancelled) {
				return walkErr
			}
			return errors.AddContext(
				errors.Wrap(walkErr, errors.CodeInternal, "scan workspace root"),
				errors.CtxPath, root,
			)
		}
	}

	w.logger.Info("workspace scanned", "roots", len(w.opts.Roots), "modules", w.moduleCount())
	return nil
}

// index loads path and records the module it declares. The first file to
// declare a module name keeps it.
func (w *Workspace) index(ctx context.Context, path string) error {
	root, err := w.load(ctx, path)
	if err != nil {
		return err
	}
	name := projection.ModuleName(root)
	if name == "" {
		return errors.AddContext(
			errors.New(errors.CodeValidationError, "file has no module head"),
			errors.CtxPath, path,
		)
	}

	w.mu.Lock()
	if existing, ok := w.modules[name]; ok && existing != path {
		w.mu.Unlock()
		w.logger.Warn("duplicate module name", "module", name, "path", path, "kept", existing)
		return nil
	}
	w.modules[name] = path
	w.paths[path] = name
	w.mu.Unlock()

	w.cache.Put(name, root)
	return nil
}

// LoadFile reads one snapshot or source file without indexing it.
func (w *Workspace) LoadFile(ctx context.Context, path string) (*parsetree.Node, error) {
	return w.load(ctx, path)
}

func (w *Workspace) load(ctx context.Context, path string) (*parsetree.Node, error) {
	if w.isSnapshot(path) {
		start := time.Now()
		root, err := parsetree.DecodeFile(path)
		observability.ParsingDuration.WithLabelValues("snapshot").Observe(time.Since(start).Seconds())
		return root, err
	}
	if w.parser == nil || !w.parser.IsSupportedPath(path) {
		return nil, errors.AddContext(
			errors.New(errors.CodeNotSupported, "no parser configured for source file"),
			errors.CtxPath, path,
		)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeInternal, "read source file"),
			errors.CtxPath, path,
		)
	}
	return w.parser.Parse(ctx, path, source)
}

// GetParseTree returns the tree of moduleName, or (nil, nil) when no indexed
// file declares it.
func (w *Workspace) GetParseTree(ctx context.Context, moduleName string) (*parsetree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Cancelled(err, "get parse tree")
	}
	if root, ok := w.cache.Get(moduleName); ok {
		observability.CacheHitsTotal.Inc()
		return root, nil
	}

	w.mu.RLock()
	path, ok := w.modules[moduleName]
	generation := w.generation
	w.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	observability.CacheMissesTotal.Inc()

	root, err := w.load(ctx, path)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxModule, moduleName)
	}

	// An invalidation while loading means root may be stale; serve it but
	// do not cache it.
	w.mu.RLock()
	current := w.generation == generation
	w.mu.RUnlock()
	if current {
		w.cache.Put(moduleName, root)
	}
	return root, nil
}

// ModuleNames lists the indexed modules in sorted order.
func (w *Workspace) ModuleNames() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return util.SortedKeys(w.modules)
}

func (w *Workspace) PathOf(moduleName string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	path, ok := w.modules[moduleName]
	return path, ok
}

// ModuleAt returns the module declared by path, if it is indexed.
func (w *Workspace) ModuleAt(path string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	name, ok := w.paths[filepath.Clean(path)]
	return name, ok
}

func (w *Workspace) moduleCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.modules)
}

// Invalidate forgets every changed path and re-indexes those that still
// exist. Re-reads are rate limited; a cancelled ctx stops the batch.
func (w *Workspace) Invalidate(ctx context.Context, changed []string) error {
	defer func() {
		observability.WorkspaceModules.Set(float64(w.moduleCount()))
	}()

	for _, path := range changed {
		path = filepath.Clean(path)
		w.forget(path)

		root := w.rootOf(path)
		if root == "" || !w.accepts(root, path) {
			continue
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		if err := w.limiter.Wait(ctx); err != nil {
			return errors.Cancelled(err, "reload")
		}
		if err := w.index(ctx, path); err != nil {
			w.logger.Warn("reload failed", "path", path, "error", err)
			continue
		}
		w.logger.Debug("module reloaded", "path", path)
	}
	return nil
}

func (w *Workspace) forget(path string) {
	w.mu.Lock()
	w.generation++
	name, ok := w.paths[path]
	if ok {
		delete(w.paths, path)
		delete(w.modules, name)
	}
	w.mu.Unlock()

	if ok && w.cache.Remove(name) {
		observability.CacheEvictionsTotal.Inc()
	}
}

func (w *Workspace) rootOf(path string) string {
	for _, root := range w.opts.Roots {
		if util.WithinRoot(path, root) {
			return root
		}
	}
	return ""
}

func (w *Workspace) isSnapshot(path string) bool {
	return hasSuffix(path, w.opts.SnapshotExtensions)
}

func hasSuffix(path string, suffixes []string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, suffix := range suffixes {
		if len(base) > len(suffix) && strings.HasSuffix(base, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

// accepts reports whether path is a module file that is not excluded. A
// file inside an excluded directory is rejected too.
func (w *Workspace) accepts(root, path string) bool {
	if !hasSuffix(path, w.opts.Extensions) && !w.isSnapshot(path) {
		return false
	}
	rel := relative(root, path)
	if matchAny(w.excludeFiles, rel) {
		return false
	}
	for dir := filepath.Dir(path); dir != root && len(dir) > len(root); dir = filepath.Dir(dir) {
		if w.excludedDir(root, dir) {
			return false
		}
	}
	return true
}

func (w *Workspace) excludedDir(root, dir string) bool {
	return matchAny(w.excludeDirs, relative(root, dir))
}

func relative(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return util.SlashPath(rel)
}

// matchAny matches patterns containing a separator against the root-relative
// path and the rest against the base name.
func matchAny(patterns []pattern, rel string) bool {
	base := rel
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		base = rel[i+1:]
	}
	for _, p := range patterns {
		if p.pathwise {
			if p.g.Match(rel) {
				return true
			}
			continue
		}
		if p.g.Match(base) {
			return true
		}
	}
	return false
}
