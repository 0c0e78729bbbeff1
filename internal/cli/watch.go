package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch prints the bind tree, then prints it again every time the bind file
// changes, until ctx is cancelled. Parse failures are reported and watching
// continues.
func Watch(ctx context.Context, w io.Writer, opts DumpOptions, logger *slog.Logger) error {
	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", opts.Path, err)
	}
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so that editors replacing the file are noticed
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	dump := func() {
		if err := Dump(w, opts); err != nil {
			logger.Error("failed to dump bind file", "path", path, "error", err)
		}
	}
	dump()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !shouldReload(path, event) {
				continue
			}
			logger.Debug("bind file changed", "path", event.Name, "op", event.Op.String())
			fmt.Fprintln(w, "---")
			dump()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// shouldReload reports whether event touches the bind file at path
func shouldReload(path string, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	if name == path {
		return true
	}
	// Some editors write via temp + rename
	return filepath.Base(name) == filepath.Base(path)
}
