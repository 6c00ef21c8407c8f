package settings

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch starts an fsnotify watcher on the settings file and reloads it
// whenever the file changes on disk, until ctx is cancelled. Writes are
// debounced because editors and the atomic-rename path both emit bursts
// of events. In-memory profiles return immediately.
func (s *Service) Watch(ctx context.Context, logger *slog.Logger) error {
	if s.path == "" {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory, not the file: the atomic write replaces the
	// file by rename, which drops a watch placed on the file itself.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return err
	}

	logger.Debug("settings: watcher started", slog.String("path", s.path))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(100 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(100 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Debug("settings: watcher stopped", slog.String("path", s.path))
			return nil

		case <-reloadCh:
			if err := s.reload(); err != nil {
				logger.Warn("settings: reload failed", slog.String("error", err.Error()))
			} else {
				logger.Info("settings: reloaded", slog.String("path", s.path))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("settings: watcher error", slog.String("error", err.Error()))
		}
	}
}
