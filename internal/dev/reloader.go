package dev

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
)

// Reloader reacts to batches of changes.
//
// A component change rebuilds the registry and reloads the page, or shows
// the error overlay when the rebuild fails. A stylesheet change reloads
// stylesheets only. Anything else reloads the page, since pages are read
// from disk on every request.
type Reloader struct {
	// Rebuild recompiles the components. It is called at most once per
	// batch.
	Rebuild func(ctx context.Context) error

	// Clients are the browsers to notify. May be nil.
	Clients *ReloadServer

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// HandleChanges handles one batch of changes.
func (r *Reloader) HandleChanges(ctx context.Context, changes []Change) {
	if len(changes) == 0 {
		return
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[ChangeType]bool)
	for _, change := range changes {
		logger.Info("changed", "path", change.Path, "type", change.Type.String())
		seen[change.Type] = true
	}

	if seen[ChangeConfig] {
		logger.Warn("enhance.json changed, restart the server to apply it")
	}

	if seen[ChangeComponent] && r.Rebuild != nil {
		if err := r.Rebuild(ctx); err != nil {
			logger.Error("component rebuild failed", "error", err)
			if r.Clients != nil {
				r.Clients.NotifyError(err.Error())
			}
			return
		}
		logger.Info("components reloaded")
	}

	if r.Clients == nil {
		return
	}
	r.Clients.ClearError()

	if len(seen) == 1 && seen[ChangeStyle] {
		for _, change := range changes {
			r.Clients.NotifyCSS(filepath.Base(change.Path))
		}
		return
	}
	r.Clients.NotifyReload()
}

// Watch watches cfg.Paths and passes every batch to r until ctx is done.
func Watch(ctx context.Context, cfg WatcherConfig, r *Reloader) error {
	w := NewWatcher(cfg)
	w.OnChange(func(changes []Change) {
		r.HandleChanges(ctx, changes)
	})
	err := w.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
