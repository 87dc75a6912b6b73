package inspect

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval is how long a file must stay unchanged before Watch
// reports it.
const DebounceInterval = 125 * time.Millisecond

// Watch calls fn with the path of every HTML file that changes under root,
// until ctx is done. Bursts of events for the same file are reported once.
func Watch(ctx context.Context, root string, logger *slog.Logger, fn func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchDirRecursively(watcher, root, logger); err != nil {
		return err
	}

	debounceEvents(ctx, DebounceInterval, watcher, logger, func(event fsnotify.Event) {
		if !watchableFilename(event.Name) {
			return
		}
		if isDir(event.Name) {
			if err := watchDirRecursively(watcher, event.Name, logger); err != nil {
				logger.Error("Watch new directory", "path", event.Name, "error", err)
			}
			return
		}
		if !isHTMLFile(event.Name) {
			return
		}
		fn(event.Name)
	})
	return nil
}

// watchableFilename ignores editor swap, backup and autosave files.
func watchableFilename(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(path)
	// vim swap files: .swp, .swo, .swn, etc
	if len(ext) == 4 && strings.HasPrefix(ext, ".sw") {
		return false
	}
	// vim and Emacs backup files
	if strings.HasSuffix(ext, "~") {
		return false
	}
	// Emacs autosave files
	if len(base) > 1 && strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return false
	}
	return true
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.IsDir()
}

func watchDirRecursively(watcher *fsnotify.Watcher, root string, logger *slog.Logger) error {
	return fs.WalkDir(os.DirFS(root), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			path = filepath.Join(root, path)
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("add path %s to watch: %w", path, err)
			}
			logger.Debug("Watching", "path", path)
		}
		return nil
	})
}

func debounceEvents(ctx context.Context, interval time.Duration, watcher *fsnotify.Watcher, logger *slog.Logger, fn func(event fsnotify.Event)) {
	var mu sync.Mutex
	timers := make(map[string]*time.Timer)

	has := func(ev fsnotify.Event, op fsnotify.Op) bool {
		return ev.Op&op == op
	}

	for {
		select {
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error("File watch", "error", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !has(ev, fsnotify.Create) && !has(ev, fsnotify.Write) {
				continue
			}
			mu.Lock()
			t, ok := timers[ev.Name]
			mu.Unlock()
			if !ok {
				t = time.AfterFunc(math.MaxInt64, func() {
					fn(ev)
					mu.Lock()
					defer mu.Unlock()
					delete(timers, ev.Name)
				})
				t.Stop()

				mu.Lock()
				timers[ev.Name] = t
				mu.Unlock()
			}
			t.Reset(interval)
		case <-ctx.Done():
			mu.Lock()
			for _, t := range timers {
				t.Stop()
			}
			mu.Unlock()
			return
		}
	}
}
