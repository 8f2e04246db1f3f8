package script

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/fakeyudi/gitsim/internal/logging"
)

// Watch calls fn whenever the file at path is written or recreated, until ctx
// is cancelled. The parent directory is watched so that editors which save by
// renaming over the file are noticed too.
func Watch(ctx context.Context, path string, fn func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logging.L().Debug("script changed", "path", abs, "op", event.Op.String())
				fn()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; continue watching.
			logging.L().Warn("script watcher", "err", err)
		}
	}
}
