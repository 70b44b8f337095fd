// Package watcher reports debounced changes to scene files.
package watcher

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher calls back once a watched file has been quiet for the debounce
// period. Callbacks run on timer goroutines.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	files   map[string]*entry
	running bool
	closed  bool
	done    chan struct{}
}

// entry is one watched file.
type entry struct {
	onChange func(path string)
	pending  *time.Timer
}

// New returns a stopped Watcher.
func New(debounce time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	return &Watcher{
		fs:       fs,
		debounce: debounce,
		files:    make(map[string]*entry),
		done:     make(chan struct{}),
	}, nil
}

// Add watches path. The parent directory is what fsnotify follows, so
// editors that save by renaming a new file over the old one are seen.
// onChange receives the absolute path.
func (w *Watcher) Add(path string, onChange func(path string)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watcher: %s: %w", path, err)
	}
	if err := w.fs.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watcher: %s: %w", abs, err)
	}

	w.mu.Lock()
	w.files[abs] = &entry{onChange: onChange}
	w.mu.Unlock()
	return nil
}

// Start delivers events in the background until Close.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.closed {
		return
	}
	w.running = true
	go w.loop()
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.touched(ev.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		}
	}
}

// touched restarts the quiet period of name if it is watched.
func (w *Watcher) touched(name string) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.files[abs]
	if !ok || w.closed {
		return
	}
	if e.pending != nil {
		e.pending.Stop()
	}
	e.pending = time.AfterFunc(w.debounce, func() { e.onChange(abs) })
}

// Close stops watching and cancels callbacks that have not fired yet.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, e := range w.files {
		if e.pending != nil {
			e.pending.Stop()
		}
	}
	running := w.running
	w.mu.Unlock()

	err := w.fs.Close()
	if running {
		<-w.done
	}
	return err
}
