// Package fsnotify implements the ports.DictionaryWatcher interface using
// github.com/fsnotify/fsnotify. It watches the directories that hold the
// dictionary files (editors often replace a file by rename, which a
// file-level watch would lose), filters events down to the watched files,
// and debounces bursts so one save triggers one rebuild.
package fsnotify

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corey/glossa/internal/ports"
)

// DefaultSettle is how long a file must be quiet before onChange fires.
const DefaultSettle = 200 * time.Millisecond

var _ ports.DictionaryWatcher = (*Watcher)(nil)

// Watcher implements ports.DictionaryWatcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	settle  time.Duration
	done    chan struct{}
	stopped bool
	mu      sync.Mutex

	timers map[string]*time.Timer
	tmu    sync.Mutex
}

// NewWatcher creates a new dictionary watcher. settle <= 0 uses
// DefaultSettle.
func NewWatcher(settle time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		fw:     fw,
		settle: settle,
		done:   make(chan struct{}),
		timers: make(map[string]*time.Timer),
	}, nil
}

// Watch starts monitoring the given files. Empty paths are ignored.
func (w *Watcher) Watch(paths []string, onChange func(path string)) error {
	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path, err := filepath.Abs(event.Name)
				if err != nil || !files[path] {
					continue
				}
				// Chmod alone never changes content.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					w.schedule(path, onChange)
				}

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// Errors are swallowed; fsnotify recovers automatically

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// schedule (re)starts the settle timer for path. The callback fires once
// the path has been quiet for the settle interval.
func (w *Watcher) schedule(path string, onChange func(string)) {
	w.tmu.Lock()
	defer w.tmu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.timers[path] = time.AfterFunc(w.settle, func() {
		w.tmu.Lock()
		delete(w.timers, path)
		w.tmu.Unlock()
		select {
		case <-w.done:
			return
		default:
		}
		onChange(path)
	})
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)

	w.tmu.Lock()
	for p, t := range w.timers {
		t.Stop()
		delete(w.timers, p)
	}
	w.tmu.Unlock()

	return w.fw.Close()
}
