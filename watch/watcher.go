// Package watch reports batches of changed files in a set of directories.
package watch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/YoungY620/dsplit/logging"
)

// Watcher collects fsnotify events on a fixed set of directories (not
// recursive) and hands them to onChange once things settle: debounce after
// the last event, or maxWait after the first one of a batch, whichever comes
// first. onChange never runs concurrently with itself.
type Watcher struct {
	debounce, maxWait time.Duration
	accept            func(path string) bool
	onChange          func([]string)
	fsw               *fsnotify.Watcher
	log               logging.Printer

	mu               sync.Mutex
	pending          map[string]struct{}
	debounceT, waitT *time.Timer
	sem              chan struct{}
}

// Options configures New.
type Options struct {
	Debounce time.Duration
	MaxWait  time.Duration
	// Accept filters event paths; nil accepts everything.
	Accept func(path string) bool
	Log    logging.Printer
}

// New starts watching dirs. Duplicate directories are watched once.
func New(dirs []string, opts Options, onChange func([]string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		debounce: opts.Debounce,
		maxWait:  opts.MaxWait,
		accept:   opts.Accept,
		onChange: onChange,
		fsw:      fsw,
		log:      opts.Log,
		pending:  make(map[string]struct{}),
		sem:      make(chan struct{}, 1),
	}
	if w.log == nil {
		w.log = logging.NewNop()
	}
	if w.accept == nil {
		w.accept = func(string) bool { return true }
	}

	seen := map[string]bool{}
	for _, d := range dirs {
		if seen[d] {
			continue
		}
		seen[d] = true
		if err := fsw.Add(d); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.accept(e.Name) {
				continue
			}
			w.log.Debugf("Event: %s %s", e.Op, e.Name)
			if e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Chmod) != 0 {
				w.add(e.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				w.log.Errorf("Watcher error: %v", err)
			}
		}
	}
}

func (w *Watcher) add(file string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	first := len(w.pending) == 0
	w.pending[file] = struct{}{}

	if w.debounceT != nil {
		w.debounceT.Stop()
	}
	w.debounceT = time.AfterFunc(w.debounce, w.Flush)

	if first && w.waitT == nil {
		w.waitT = time.AfterFunc(w.maxWait, w.Flush)
	}
}

// Flush hands pending paths to onChange now. If a previous batch is still
// being processed the paths stay pending and a new debounce is armed.
func (w *Watcher) Flush() {
	select {
	case w.sem <- struct{}{}:
	default:
		w.log.Debugf("Re-split in progress, deferring %d pending changes", w.Pending())
		w.rearm()
		return
	}
	defer func() { <-w.sem }()

	w.mu.Lock()
	w.stopTimersLocked()
	files := make([]string, 0, len(w.pending))
	for f := range w.pending {
		files = append(files, f)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	sort.Strings(files)
	if len(files) > 0 && w.onChange != nil {
		w.onChange(files)
	}
}

// Pending reports how many paths wait for the next flush.
func (w *Watcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *Watcher) rearm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return
	}
	if w.debounceT != nil {
		w.debounceT.Stop()
	}
	w.debounceT = time.AfterFunc(w.debounce, w.Flush)
}

func (w *Watcher) stopTimersLocked() {
	if w.debounceT != nil {
		w.debounceT.Stop()
		w.debounceT = nil
	}
	if w.waitT != nil {
		w.waitT.Stop()
		w.waitT = nil
	}
}

// Close stops timers and the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.stopTimersLocked()
	w.mu.Unlock()
	return w.fsw.Close()
}
