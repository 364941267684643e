// Package watch turns filesystem changes to the diary database (and an
// optional settings file) into debounced realtime events, so searches running
// in one process notice writes made by another.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rubiojr/pocketdiary/pkg/log"
	"github.com/rubiojr/pocketdiary/pkg/realtime"
)

type Watcher struct {
	fs       *fsnotify.Watcher
	hub      *realtime.Hub
	debounce time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	targets map[string]realtime.ChangeKind // cleaned absolute path -> kind
	dirs    map[string]bool
	timers  map[realtime.ChangeKind]*time.Timer
}

// New creates a watcher that publishes on hub once no further change has been
// seen for debounce.
func New(hub *realtime.Hub, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	return &Watcher{
		fs:       fw,
		hub:      hub,
		debounce: debounce,
		logger:   log.ForService("watch"),
		targets:  make(map[string]realtime.ChangeKind),
		dirs:     make(map[string]bool),
		timers:   make(map[realtime.ChangeKind]*time.Timer),
	}, nil
}

// AddDatabase watches a sqlite database and its write-ahead log.
func (w *Watcher) AddDatabase(path string) error {
	if err := w.AddFile(path, realtime.StoreChanged); err != nil {
		return err
	}
	return w.AddFile(path+"-wal", realtime.StoreChanged)
}

// AddFile watches path, which need not exist yet. The parent directory is
// watched so atomic replaces (write temp file, rename) are seen.
func (w *Watcher) AddFile(path string, kind realtime.ChangeKind) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirs[dir] {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		w.dirs[dir] = true
		w.logger.Debugf("watching directory %s", dir)
	}
	w.targets[abs] = kind
	return nil
}

// Run delivers events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopTimers()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)) {
				continue
			}
			w.mu.Lock()
			kind, tracked := w.targets[filepath.Clean(event.Name)]
			w.mu.Unlock()
			if tracked {
				w.schedule(kind, event)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnf("file watcher error: %v", err)
		}
	}
}

func (w *Watcher) schedule(kind realtime.ChangeKind, event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.logger.Debugf("%s changed (%s)", event.Name, event.Op)
	if t, ok := w.timers[kind]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[kind] = time.AfterFunc(w.debounce, func() {
		w.hub.Publish(realtime.NewChangeEvent(kind, ""))
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for kind, t := range w.timers {
		t.Stop()
		delete(w.timers, kind)
	}
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}
