package server

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ContentWatcher monitors the content directory and invokes a callback when
// post files change, so the serve cache never goes stale while the process
// keeps running.
type ContentWatcher struct {
	dir          string
	watcher      *fsnotify.Watcher
	onChange     func()
	debounceTime time.Duration
	stopChan     chan struct{}
}

func NewContentWatcher(dir string, onChange func()) (*ContentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve content path: %w", err)
	}

	return &ContentWatcher{
		dir:          absPath,
		watcher:      watcher,
		onChange:     onChange,
		debounceTime: 500 * time.Millisecond,
		stopChan:     make(chan struct{}),
	}, nil
}

func (w *ContentWatcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch content directory %s: %w", w.dir, err)
	}

	go w.loop()

	slog.Info("Watching content directory for changes", "dir", w.dir)
	return nil
}

func (w *ContentWatcher) Stop() {
	close(w.stopChan)
	w.watcher.Close()
}

func (w *ContentWatcher) loop() {
	// Editors fire bursts of events per save; collapse them into one reload.
	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".md") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("Content change detected", "file", event.Name, "op", event.Op.String())
			if debounce == nil {
				debounce = time.NewTimer(w.debounceTime)
				debounceC = debounce.C
			} else {
				debounce.Reset(w.debounceTime)
			}

		case <-debounceC:
			debounce = nil
			debounceC = nil
			slog.Info("Content changed, refreshing pages")
			w.onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", "error", err)
		}
	}
}
