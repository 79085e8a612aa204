// Package watcher reports changes to files topstack reads at runtime: the
// settings file and a file-backed stack written by another process.
package watcher

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/topstack/topstack/internal/config"
)

// EventType represents the type of file system event.
type EventType int

// Event types for file system changes.
const (
	EventSettingsChanged EventType = iota
	EventStackChanged
)

func (t EventType) String() string {
	switch t {
	case EventSettingsChanged:
		return "settings"
	case EventStackChanged:
		return "stack"
	default:
		return "unknown"
	}
}

// Event represents a file system change event.
type Event struct {
	Type EventType
	Path string
}

// DefaultDebounce is how long a path must stay quiet before its event fires.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches the settings file and, optionally, the stack file.
type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	eventsChan   chan Event
	done         chan struct{}
	stopOnce     sync.Once
	settingsPath string
	stackPath    string
	delay        time.Duration
	logger       *slog.Logger
	debounce     map[string]*time.Timer
	debounceMu   sync.Mutex
}

// New creates a watcher for settingsPath and, when non-empty, stackPath.
func New(settingsPath, stackPath string, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:    fsWatcher,
		eventsChan:   make(chan Event, 16),
		done:         make(chan struct{}),
		settingsPath: filepath.Clean(settingsPath),
		delay:        DefaultDebounce,
		logger:       config.Discard(logger),
		debounce:     make(map[string]*time.Timer),
	}
	if stackPath != "" {
		w.stackPath = filepath.Clean(stackPath)
	}
	return w, nil
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start begins watching. Directories are watched rather than files so atomic
// replacements (write temp, rename over target) are seen.
func (w *Watcher) Start() error {
	dirs := map[string]bool{filepath.Dir(w.settingsPath): true}
	if w.stackPath != "" {
		dirs[filepath.Dir(w.stackPath)] = true
	}
	for dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			w.logger.Warn("cannot watch directory", "dir", dir, "error", err)
		}
	}

	go w.processEvents()
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		for path, timer := range w.debounce {
			timer.Stop()
			delete(w.debounce, path)
		}
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Atomic writes show up as Rename or Create on the target.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	typ, ok := w.classify(event.Name)
	if !ok {
		return
	}
	path := filepath.Clean(event.Name)
	w.debounceEvent(path, func() {
		w.logger.Debug("file changed", "type", typ.String(), "path", path)
		select {
		case w.eventsChan <- Event{Type: typ, Path: path}:
		case <-w.done:
		default:
			// A reload is already queued.
		}
	})
}

func (w *Watcher) classify(name string) (EventType, bool) {
	switch filepath.Clean(name) {
	case w.settingsPath:
		return EventSettingsChanged, true
	case w.stackPath:
		if w.stackPath != "" {
			return EventStackChanged, true
		}
	}
	return 0, false
}

func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(w.delay, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}
