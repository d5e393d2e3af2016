// Package watcher emits debounced change events for a fixed set of files.
// It is the only external producer feeding the reconciliation core; events
// are consumed one at a time by the owner of the session state.
package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventKind says what happened to a watched path.
type EventKind int

const (
	Updated EventKind = iota
	Removed
)

func (k EventKind) String() string {
	if k == Removed {
		return "removed"
	}
	return "updated"
}

// Event is one debounced file change.
type Event struct {
	Path string // The path as originally given to Watch
	Kind EventKind
}

const defaultDebounce = 200 * time.Millisecond

// Watcher watches the parent directories of its target files so editor
// rename-replace saves are seen, and debounces per file with a timer. Events
// are delivered on a buffered channel; Close stops delivery and closes it.
type Watcher struct {
	fs     *fsnotify.Watcher
	events chan Event

	mu       sync.Mutex
	timers   map[string]*time.Timer
	targets  map[string]string // cleaned absolute path -> as-given path
	debounce time.Duration
	closed   bool
}

// Watch starts watching paths with the default debounce interval.
func Watch(paths []string) (*Watcher, error) {
	return New(paths, defaultDebounce)
}

// New starts watching paths, debouncing each file's burst of events into one.
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w := &Watcher{
		fs:       fsw,
		events:   make(chan Event, 16),
		timers:   make(map[string]*time.Timer),
		targets:  make(map[string]string, len(paths)),
		debounce: debounce,
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		w.targets[abs] = p
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	go w.loop()
	return w, nil
}

// Events returns the debounced event stream.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops the watcher and closes the event channel. Safe to call more
// than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = map[string]*time.Timer{}
	close(w.events)
	w.mu.Unlock()
	return w.fs.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				abs = filepath.Clean(ev.Name)
			}
			if _, watched := w.targets[abs]; !watched {
				continue
			}
			w.schedule(abs)
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			// Directory-level watch errors are transient; the next event
			// for a target still arrives or the app's manual refresh covers it.
		}
	}
}

// schedule (re)arms the debounce timer for one target. The kind is decided
// when the timer fires, by statting the file: a rename-replace save shows up
// as Remove then Create, and the final on-disk state is what matters.
func (w *Watcher) schedule(abs string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.timers[abs]; ok {
		t.Stop()
	}
	w.timers[abs] = time.AfterFunc(w.debounce, func() {
		w.fire(abs)
	})
}

func (w *Watcher) fire(abs string) {
	kind := Updated
	if _, err := os.Stat(abs); err != nil {
		kind = Removed
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	delete(w.timers, abs)
	given := w.targets[abs]

	select {
	case w.events <- Event{Path: given, Kind: kind}:
	default:
		// Consumer stalled with a full buffer; drop rather than block the
		// timer goroutine. The next disk change re-triggers.
	}
}
