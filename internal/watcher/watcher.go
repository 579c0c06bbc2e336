// Package watcher reports debounced file changes under a set of directories.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Op is the kind of change reported for a file.
type Op int

const (
	// Changed means the file was created or written and has settled.
	Changed Op = iota
	// Removed means the file was deleted or renamed away.
	Removed
)

func (o Op) String() string {
	if o == Removed {
		return "removed"
	}
	return "changed"
}

// Event is one file change.
type Event struct {
	Op   Op
	Path string
}

// Options configures a Watcher.
type Options struct {
	Roots []string
	// Extensions filter files by extension; empty means every file.
	Extensions []string
	Recursive  bool
	// Debounce is how long a file must stay quiet before Changed is reported.
	Debounce time.Duration
	// SyncExisting reports every matching file already present as Changed when Run starts.
	SyncExisting bool
	Logger       *zap.Logger
}

// Watcher watches directories and delivers events on a channel.
type Watcher struct {
	opts   Options
	logger *zap.Logger
	events chan Event
	// settled receives paths whose debounce timer fired.
	settled chan string
	done    chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher. Nothing is watched until Run is called.
func New(opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		opts:    opts,
		logger:  logger,
		events:  make(chan Event),
		settled: make(chan string),
		done:    make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}
}

// Events returns the event channel. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run watches until ctx is cancelled and may be called only once. Missing roots are
// created. Run returns nil on cancellation and an error if the roots cannot be watched.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()
	defer w.stopTimers()

	w.logger.Debug("watcher starting",
		zap.Strings("roots", w.opts.Roots),
		zap.Strings("extensions", w.opts.Extensions),
		zap.Bool("recursive", w.opts.Recursive))
	for _, root := range w.opts.Roots {
		if err := w.addRoot(fsw, root); err != nil {
			return err
		}
	}
	if w.opts.SyncExisting {
		for _, root := range w.opts.Roots {
			if !w.syncDirectory(ctx, root) {
				return nil
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-w.settled:
			if !w.send(ctx, Event{Op: Changed, Path: path}) {
				return nil
			}
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.handle(ctx, fsw, ev) {
				return nil
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// handle returns false once ctx is done.
func (w *Watcher) handle(ctx context.Context, fsw *fsnotify.Watcher, ev fsnotify.Event) bool {
	path := ev.Name
	if hidden(path) {
		return true
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil {
			return true
		}
		if info.IsDir() {
			if !w.opts.Recursive {
				return true
			}
			if err := w.watchTree(fsw, path); err != nil {
				w.logger.Warn("watcher failed to add directory", zap.String("path", path), zap.Error(err))
			}
			return w.syncDirectory(ctx, path)
		}
		if w.matches(path) {
			w.debounce(path)
		}
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.cancel(path)
		if w.matches(path) {
			return w.send(ctx, Event{Op: Removed, Path: path})
		}
	}
	return true
}

func (w *Watcher) send(ctx context.Context, ev Event) bool {
	select {
	case w.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *Watcher) debounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case w.settled <- path:
		case <-w.done:
		}
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	close(w.done)
}

func (w *Watcher) addRoot(fsw *fsnotify.Watcher, root string) error {
	root = filepath.Clean(root)
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(root, 0755); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	if !w.opts.Recursive {
		return fsw.Add(root)
	}
	return w.watchTree(fsw, root)
}

func (w *Watcher) watchTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(path) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// syncDirectory reports every matching file under root as Changed. It returns false
// once ctx is done.
func (w *Watcher) syncDirectory(ctx context.Context, root string) bool {
	w.logger.Debug("watcher syncing directory", zap.String("root", root))
	alive := true
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path != root && hidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && !w.opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if w.matches(path) && !w.send(ctx, Event{Op: Changed, Path: path}) {
			alive = false
			return filepath.SkipAll
		}
		return nil
	})
	return alive
}

func (w *Watcher) matches(path string) bool {
	return matchExtension(path, w.opts.Extensions)
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// hidden reports dotfiles, which are mostly editor swap and lock files.
func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
