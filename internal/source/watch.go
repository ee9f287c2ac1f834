package source

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"globe-graph/internal/debug"
)

// WatchDebounce collapses the burst of events an editor produces on save.
const WatchDebounce = 100 * time.Millisecond

// Watch calls onChange after path is written, until ctx is done. The
// directory is watched rather than the file so saves that replace the file
// are seen too.
func Watch(ctx context.Context, path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}

	go func() {
		defer watcher.Close()

		debounce := time.NewTimer(0)
		<-debounce.C
		pending := false

		for {
			select {
			case <-ctx.Done():
				debounce.Stop()
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				pending = true
				debounce.Reset(WatchDebounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				debug.Log("source: watcher error: %v", err)

			case <-debounce.C:
				if pending {
					pending = false
					debug.Log("source: %s changed", abs)
					onChange()
				}
			}
		}
	}()
	return nil
}
