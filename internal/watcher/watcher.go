// Package watcher reports settled changes to a single file on disk. The
// catalog uses it to reload the movie dataset when it is edited in place
// or atomically replaced.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches one file through its parent directory, so replacing the
// file by rename is observed as well as in-place writes.
type Watcher struct {
	logger  *slog.Logger
	opts    Options
	path    string
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending *pendingChange

	events   chan Event
	errors   chan error
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// pendingChange tracks a write that may still be in progress.
type pendingChange struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// New creates a watcher for path. The file's directory must exist; the file
// itself may be created later.
func New(path string, logger *slog.Logger, opts Options) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts.setDefaults()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close() //nolint:errcheck // Already returning the Add error
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		logger:  logger,
		opts:    opts,
		path:    abs,
		watcher: fsw,
		events:  make(chan Event, 16),
		errors:  make(chan error, 4),
		done:    make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Start processes filesystem events until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	select {
	case <-w.done:
		w.mu.Unlock()
		return nil
	default:
	}
	w.wg.Add(1)
	w.mu.Unlock()

	go w.processEvents(ctx)

	select {
	case <-ctx.Done():
	case <-w.done:
	}
	return nil
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsnotifyEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warn("dropping watcher error", "error", err)
			}
		}
	}
}

func (w *Watcher) handleFsnotifyEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	w.logger.Debug("dataset file event", "op", event.Op.String(), "path", event.Name)

	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		w.startSettling()
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.cancelPending()
		w.emitEvent(Event{Type: EventRemoved, Path: w.path})
	}
}

// startSettling (re)arms the settle timer for the watched file.
func (w *Watcher) startSettling() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.timer.Stop()
		w.pending = nil
	}

	info, err := os.Stat(w.path)
	if err != nil {
		w.logger.Warn("failed to stat dataset file", "path", w.path, "error", err)
		return
	}

	w.pending = &pendingChange{
		size:    info.Size(),
		modTime: info.ModTime(),
		timer:   time.AfterFunc(w.opts.SettleDelay, w.checkSettled),
	}
}

// checkSettled emits a change once size and mtime have held still for a
// full settle delay.
func (w *Watcher) checkSettled() {
	w.mu.Lock()
	defer w.mu.Unlock()

	pending := w.pending
	if pending == nil {
		return
	}

	info, err := os.Stat(w.path)
	if err != nil {
		w.pending = nil
		w.emitEvent(Event{Type: EventRemoved, Path: w.path})
		return
	}

	if info.Size() != pending.size || !info.ModTime().Equal(pending.modTime) {
		pending.size = info.Size()
		pending.modTime = info.ModTime()
		pending.timer = time.AfterFunc(w.opts.SettleDelay, w.checkSettled)
		return
	}

	w.pending = nil
	w.emitEvent(Event{
		Type:    EventModified,
		Path:    w.path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.timer.Stop()
		w.pending = nil
	}
}

func (w *Watcher) emitEvent(event Event) {
	select {
	case w.events <- event:
	case <-w.done:
	}
}

// Events returns the channel of settled changes.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of errors reported by the underlying watcher.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop releases the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.cancelPending()

		err = w.watcher.Close()

		w.wg.Wait()
	})
	return err
}
