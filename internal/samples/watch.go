package samples

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watch signals on the returned channel whenever a sample or transcript is
// created, removed or renamed in the library directory. Signals coalesce:
// a pending signal absorbs later changes until it is received. The channel
// closes when ctx is done. The directory is created if needed.
func (l *Library) Watch(ctx context.Context) (<-chan struct{}, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create samples dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(l.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch dir %q: %w", l.dir, err)
	}
	log.Debug("watching samples dir", "dir", l.dir)

	changed := make(chan struct{}, 1)
	go func() {
		defer close(changed)
		defer watcher.Close() //nolint:errcheck

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !relevant(event) {
					continue
				}
				log.Debug("samples dir changed", "file", event.Name, "event", event.Op)
				select {
				case changed <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Debug("samples watcher error", "dir", l.dir, "error", err)
			}
		}
	}()
	return changed, nil
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
		return false
	}
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case audioExt, transcriptExt:
		return true
	}
	return false
}
