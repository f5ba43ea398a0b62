package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the config file and reloads the global configuration when
// it changes. The parent directory is watched rather than the file itself,
// so atomic replace-by-rename updates are picked up too. onReload, if
// non-nil, is called with the freshly loaded config. Watch blocks until
// done is closed.
func Watch(done <-chan struct{}, onReload func(*Config)) error {
	path := Get().ConfigFilePath()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if err := Reload(); err != nil {
					fmt.Fprintf(os.Stderr, "Error reloading config: %v\n", err)
					continue
				}
				if onReload != nil {
					onReload(Get())
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		case <-done:
			return nil
		}
	}
}
