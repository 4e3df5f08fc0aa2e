package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch follows the session file for external changes (another process
// logging in or out) and rehydrates the manager when the file is rewritten.
// It blocks until ctx is cancelled; run it in its own goroutine. Only
// meaningful for file-backed stores.
func (m *Manager) Watch(ctx context.Context) error {
	fileStore, ok := m.store.(*FileStore)
	if !ok {
		return fmt.Errorf("session store is not file-backed")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// watch the directory: editors and atomic renames replace the file
	// rather than writing it in place
	dir := filepath.Dir(fileStore.Path())
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch session directory: %w", err)
	}

	target := filepath.Clean(fileStore.Path())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				m.log.WithField("event", event.Op.String()).Debug("session file changed externally")
				m.Rehydrate()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.log.WithError(err).Warn("session watcher error")
		}
	}
}
