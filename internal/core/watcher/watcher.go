// # internal/core/watcher/watcher.go
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"hlsense/internal/core/errors"
	"hlsense/internal/shared/observability"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// Options controls which paths a Watcher reports.
type Options struct {
	Debounce     time.Duration
	ExcludeDirs  []string
	ExcludeFiles []string
	// Suffixes restricts reported files to names ending in one of the
	// given suffixes. Compound suffixes such as ".hltree.yaml" are allowed.
	// An empty list reports every file.
	Suffixes []string
}

// Watcher recursively watches source roots and reports batches of changed
// file paths after a quiet period.
type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	suffixes     []string
	onChange     func([]string)
	callbackMu   sync.Mutex

	pendingMu sync.Mutex
	debounce  time.Duration
	pending   map[string]struct{}
	timer     *time.Timer
	closed    bool
}

func New(opts Options, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New(errors.CodeValidationError, "watcher requires a change callback")
	}

	excludeDirs, err := compileGlobs(opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compileGlobs(opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create file system watcher")
	}

	w := &Watcher{
		fsWatcher:    fsw,
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
		onChange:     onChange,
		debounce:     opts.Debounce,
		pending:      make(map[string]struct{}),
	}
	w.SetSuffixes(opts.Suffixes)
	return w, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeValidationError, "invalid exclude pattern"),
				errors.CtxPath, pattern,
			)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

// SetSuffixes replaces the file suffix filter.
func (w *Watcher) SetSuffixes(suffixes []string) {
	normalized := make([]string, 0, len(suffixes))
	for _, suffix := range suffixes {
		s := strings.ToLower(strings.TrimSpace(suffix))
		if s == "" {
			continue
		}
		normalized = append(normalized, s)
	}
	w.pendingMu.Lock()
	w.suffixes = normalized
	w.pendingMu.Unlock()
}

func (w *Watcher) SetDebounce(debounce time.Duration) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.debounce = debounce
}

// Watch adds every non-excluded directory under each root and starts the
// event loop.
func (w *Watcher) Watch(roots []string) error {
	for _, root := range roots {
		if err := w.watchRecursive(root); err != nil {
			return errors.AddContext(
				errors.Wrap(err, errors.CodeInternal, "watch root"),
				errors.CtxPath, root,
			)
		}
	}

	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldExcludeDir(path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.shouldExcludeDir(event.Name) {
				return
			}
			if err := w.watchRecursive(event.Name); err != nil {
				slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
				return
			}
			// Files written before the directory was added produce no events.
			w.enqueueExistingFiles(event.Name)
			return
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if w.shouldExcludeFile(event.Name) {
		return
	}
	w.scheduleChange(event.Name)
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if w.closed {
		return
	}

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// Matches reports whether path passes the suffix and exclude filters.
func (w *Watcher) Matches(path string) bool {
	return !w.shouldExcludeFile(path)
}

func (w *Watcher) shouldExcludeFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))

	w.pendingMu.Lock()
	suffixes := w.suffixes
	w.pendingMu.Unlock()

	if len(suffixes) > 0 {
		matched := false
		for _, suffix := range suffixes {
			if strings.HasSuffix(base, suffix) && len(base) > len(suffix) {
				matched = true
				break
			}
		}
		if !matched {
			return true
		}
	}

	for _, g := range w.excludeFiles {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && w.shouldExcludeDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.shouldExcludeFile(path) {
			w.scheduleChange(path)
		}
		return nil
	})
}
