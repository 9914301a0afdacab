package secrets

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const watchDebounce = 300 * time.Millisecond

// Watch reloads the vault from disk whenever its secrets file changes,
// blocking until ctx is cancelled. It watches the parent directory rather
// than the file itself so editors and other writers that save atomically
// (write a temp file, then rename it over the target) still trigger a
// reload. A no-op if the vault has no backing file.
func (v *Vault) Watch(ctx context.Context, logger *zap.Logger) error {
	if v.filePath == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(v.filePath)
	filename := filepath.Base(v.filePath)

	if err := watcher.Add(dir); err != nil {
		return err
	}

	logger.Info("watching secrets file for changes", zap.String("path", v.filePath))

	var debounceTimer *time.Timer
	var debounceChan <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.NewTimer(watchDebounce)
				debounceChan = debounceTimer.C
			}

		case <-debounceChan:
			logger.Info("secrets file changed, reloading")
			v.load()
			debounceChan = nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("secrets watcher error", zap.Error(err))
		}
	}
}
