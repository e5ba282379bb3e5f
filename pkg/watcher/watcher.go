package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/conflict-atlas/pkg/logging"
	"github.com/ritzau/conflict-atlas/pkg/ratelimit"
)

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches a fixed set of files. It watches their parent
// directories, since editors and export tools often replace a file by
// renaming a temporary one over it.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
	events  chan ChangeEvent
	once    sync.Once
}

// NewFileWatcher creates a watcher for the given files. Empty paths are ignored.
func NewFileWatcher(paths ...string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		files:   make(map[string]bool),
		events:  make(chan ChangeEvent, 100),
	}

	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		fw.files[filepath.Clean(abs)] = true
	}

	return fw, nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for file := range fw.files {
		dirs[filepath.Dir(file)] = true
	}

	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	logging.Info("started watching data files", "files", len(fw.files))

	go fw.processEvents(ctx)
	return nil
}

// processEvents forwards relevant events for watched files
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)

	for {
		select {
		case <-ctx.Done():
			fw.Stop()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			name := filepath.Clean(event.Name)
			if !fw.files[name] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			logging.Trace("file changed", "path", name, "op", event.Op.String())
			select {
			case fw.events <- ChangeEvent{Paths: []string{name}, Timestamp: time.Now()}:
			case <-ctx.Done():
				fw.Stop()
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	var err error
	fw.once.Do(func() {
		err = fw.watcher.Close()
	})
	return err
}

// Debounced wraps the watcher's events so a burst of writes, such as a
// large export being flushed in chunks, yields a single change
func (fw *FileWatcher) Debounced(ctx context.Context, quietPeriod, maxWait time.Duration) <-chan ChangeEvent {
	d := ratelimit.NewDebouncer(fw.events, quietPeriod, maxWait, mergeChanges)
	d.Start(ctx)
	return d.Output()
}

func mergeChanges(acc, next ChangeEvent) ChangeEvent {
	seen := make(map[string]bool, len(acc.Paths))
	for _, p := range acc.Paths {
		seen[p] = true
	}
	for _, p := range next.Paths {
		if !seen[p] {
			acc.Paths = append(acc.Paths, p)
			seen[p] = true
		}
	}
	acc.Timestamp = next.Timestamp
	return acc
}
