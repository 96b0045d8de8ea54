// ABOUTME: fsnotify-backed orientation source reading a sensor state file.
// ABOUTME: Publishes the file's parsed content on every write.
package motion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchFile publishes the orientation stored in path whenever it changes.
// The parent directory is watched so sensor bridges that replace the file
// atomically are still observed. It returns when ctx is done.
func WatchFile(ctx context.Context, path string, feed *Feed, onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve sensor file: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	report := func(err error) {
		if onError != nil {
			onError(err)
		}
	}

	// Publish the initial state when the file already exists.
	if o, err := readOrientationFile(abs); err == nil {
		feed.Publish(ctx, o)
	} else if !os.IsNotExist(err) {
		report(err)
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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			o, err := readOrientationFile(abs)
			if err != nil {
				report(err)
				continue
			}
			feed.Publish(ctx, o)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			report(err)
		}
	}
}

func readOrientationFile(path string) (Orientation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FaceUp, err
	}
	return Parse(string(data))
}
