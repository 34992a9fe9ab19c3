package workspace

import (
	"context"
	"fmt"

	"hlsense/internal/core/errors"
	"hlsense/internal/shared/observability"
	"hlsense/internal/shared/util"
)

var _ observability.HealthChecker = (*Workspace)(nil)

func (w *Workspace) Name() string { return "workspace" }

// Health reports the index size, cache fill and heap usage. A failed or
// missing scan marks the workspace degraded.
func (w *Workspace) Health(context.Context) (string, error) {
	w.mu.RLock()
	scanned, scanErr, modules := w.scanned, w.scanErr, len(w.modules)
	w.mu.RUnlock()

	if scanErr != nil {
		return "", scanErr
	}
	if scanned.IsZero() {
		return "", errors.New(errors.CodeNotFound, "workspace not scanned yet")
	}
	return fmt.Sprintf("ok (%d modules, %d/%d cached, heap %d MB)",
		modules, w.cache.Len(), w.cache.Cap(), util.HeapAllocMB()), nil
}
