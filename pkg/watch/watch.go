// Package watch re-runs a callback when source files in a set of
// directories settle after editing.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must be quiet before it is reported.
const DefaultDebounce = 500 * time.Millisecond

// DefaultExtensions are the C++ source and header extensions.
var DefaultExtensions = []string{".cc", ".cpp", ".h", ".hpp"}

// Handler receives the settled paths, sorted. It runs on the watch loop, so
// events that arrive meanwhile are batched into the next call.
type Handler func(ctx context.Context, changed []string)

// Stats counts watcher activity.
type Stats struct {
	Events   int
	Batches  int
	Errors   int
	LastPath string
}

// Watcher batches filesystem events per path and hands them to a Handler.
type Watcher struct {
	fsw        *fsnotify.Watcher
	handler    Handler
	log        *zap.Logger
	debounce   time.Duration
	extensions []string

	mu      sync.Mutex
	pending map[string]time.Time
	stats   Stats
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithExtensions replaces DefaultExtensions. An empty list accepts every
// file.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) { w.extensions = exts }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// New creates a Watcher. Call Add for each directory, then Run.
func New(handler Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("new watcher: %w", err)
	}
	w := &Watcher{
		fsw:        fsw,
		handler:    handler,
		log:        zap.NewNop(),
		debounce:   DefaultDebounce,
		extensions: DefaultExtensions,
		pending:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add watches dir. Subdirectories are not included.
func (w *Watcher) Add(dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Debug("watching", zap.String("dir", dir))
	return nil
}

// Run delivers batches until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	tick := w.debounce / 5
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.record(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			w.log.Error("watch error", zap.Error(err))
		case <-ticker.C:
			if changed := w.settled(time.Now()); len(changed) > 0 {
				w.mu.Lock()
				w.stats.Batches++
				w.mu.Unlock()
				w.handler(ctx, changed)
			}
		}
	}
}

func (w *Watcher) record(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	if len(w.extensions) > 0 && !slices.Contains(w.extensions, filepath.Ext(ev.Name)) {
		return
	}
	w.log.Debug("file event", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.Events++
	w.stats.LastPath = ev.Name
	w.pending[ev.Name] = time.Now()
}

// settled removes and returns the paths quiet for at least the debounce
// period as of now.
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			out = append(out, path)
			delete(w.pending, path)
		}
	}
	slices.Sort(out)
	return out
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
