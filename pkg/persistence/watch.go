package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the bursts of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// Change reports that the watched file no longer matches the baseline.
type Change struct {
	// Snapshot is the new content; nil when the file was removed or on error.
	Snapshot *Snapshot

	// Removed is set when the file disappeared.
	Removed bool

	// Err is a watcher or read failure.
	Err error
}

// Watcher delivers a Change whenever the watched file's content differs from
// its baseline. Each delivered snapshot becomes the new baseline.
type Watcher struct {
	store    *FileStore
	debounce time.Duration
	fsw      *fsnotify.Watcher
	changes  chan Change
	cancel   context.CancelFunc
	done     chan struct{}

	mu       sync.Mutex
	baseline *Snapshot
}

// Watch starts watching the store's file. The parent directory is watched
// so that editors replacing the file by rename are noticed. baseline is the
// content the caller already knows about and may be nil.
func (s *FileStore) Watch(ctx context.Context, baseline *Snapshot, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(s.path)); err != nil {
		fsw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		store:    s,
		debounce: debounce,
		fsw:      fsw,
		changes:  make(chan Change, 4),
		cancel:   cancel,
		done:     make(chan struct{}),
		baseline: baseline,
	}
	go w.run(ctx)
	return w, nil
}

// Changes returns the channel of detected changes. It is closed when the
// watcher stops.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// SetBaseline replaces the known content, typically after the caller saved
// the file itself.
func (w *Watcher) SetBaseline(snap *Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.baseline = snap
}

// Close stops the watcher and waits for it to exit.
func (w *Watcher) Close() error {
	w.cancel()
	<-w.done
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	defer close(w.changes)
	defer w.fsw.Close()

	name := filepath.Clean(w.store.path)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != name || ev.Op == fsnotify.Chmod {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.send(ctx, Change{Err: err})

		case <-fire:
			fire = nil
			if c, ok := w.check(); ok {
				w.send(ctx, c)
			}
		}
	}
}

// check compares the file with the baseline and advances the baseline.
func (w *Watcher) check() (Change, bool) {
	snap, err := w.store.Read()

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case errors.Is(err, ErrNotFound):
		if w.baseline == nil {
			return Change{}, false
		}
		w.baseline = nil
		return Change{Removed: true}, true
	case err != nil:
		return Change{Err: err}, true
	case w.baseline != nil && w.baseline.Digest == snap.Digest:
		w.baseline = snap
		return Change{}, false
	}
	w.baseline = snap
	return Change{Snapshot: snap}, true
}

func (w *Watcher) send(ctx context.Context, c Change) {
	select {
	case w.changes <- c:
	case <-ctx.Done():
	}
}
