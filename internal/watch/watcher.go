// Package watch notices when another process writes the SQLite database
// (for example a hotkey running "streammark record") so a running server
// can reload its in-memory stores.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of WAL writes into one reload.
const DefaultDebounce = 200 * time.Millisecond

// Database watches dbPath and its -wal/-journal siblings and calls reload
// after writes settle. It blocks until ctx is cancelled.
func Database(ctx context.Context, dbPath string, debounce time.Duration, logger *slog.Logger, reload func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: SQLite replaces and creates sidecar files, and a
	// watch on the file itself would miss those.
	dir := filepath.Dir(abs)
	if err := w.Add(dir); err != nil {
		return err
	}
	base := filepath.Base(abs)

	logger.Info("watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			fire = nil
			logger.Debug("watcher: reloading stores")
			reload()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), base) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
