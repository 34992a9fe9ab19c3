package workspace

import (
	"context"
	"time"

	"hlsense/internal/core/watcher"
)

// Watch starts a file watcher over the roots that invalidates changed
// modules until ctx is done or the returned watcher is closed.
func (w *Workspace) Watch(ctx context.Context, debounce time.Duration) (*watcher.Watcher, error) {
	fw, err := watcher.New(watcher.Options{
		Debounce:     debounce,
		ExcludeDirs:  w.opts.ExcludeDirs,
		ExcludeFiles: w.opts.ExcludeFiles,
		Suffixes:     w.Suffixes(),
	}, func(paths []string) {
		w.logger.Debug("files changed", "count", len(paths))
		if err := w.Invalidate(ctx, paths); err != nil {
			w.logger.Warn("invalidation stopped", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if err := fw.Watch(w.opts.Roots); err != nil {
		fw.Close()
		return nil, err
	}
	go func() {
		<-ctx.Done()
		fw.Close()
	}()
	return fw, nil
}
