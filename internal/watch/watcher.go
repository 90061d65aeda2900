// Package watch reports debounced batches of file changes under a root
// directory, filtered by doublestar patterns.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/termshield/internal/debug"
)

// DefaultDebounce is the quiet period before a batch is delivered.
const DefaultDebounce = 200 * time.Millisecond

// Watcher monitors a directory tree and calls its handler with the set of
// changed paths once events stop arriving for the debounce period.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	patterns []string
	onChange func(paths []string)

	debounce time.Duration
	mu       sync.Mutex
	pending  map[string]struct{}
	timer    *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsMu sync.Mutex
	stats   Stats
}

// Stats counts delivered events.
type Stats struct {
	Batches   int64
	Events    int64
	Errors    int64
	LastBatch time.Time
}

// New returns a watcher for root. Paths are matched against patterns
// relative to root with forward slashes; an empty pattern list matches
// every file.
func New(root string, patterns []string, debounce time.Duration, onChange func(paths []string)) (*Watcher, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid watch pattern %q", p)
		}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		watcher:  fw,
		root:     filepath.Clean(root),
		patterns: patterns,
		onChange: onChange,
		debounce: debounce,
		pending:  make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start adds watches for root and its subdirectories and begins delivering
// batches.
func (w *Watcher) Start() error {
	if err := w.addWatches(w.root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", w.root, err)
	}

	w.wg.Add(1)
	go w.processEvents()

	debug.LogWatch("watching %s (%d patterns)\n", w.root, len(w.patterns))
	return nil
}

// Stop ends watching. Pending events that have not been delivered are
// dropped.
func (w *Watcher) Stop() error {
	w.cancel()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		// symlink cycles
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil || visited[resolved] {
			return filepath.SkipDir
		}
		visited[resolved] = true

		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.statsMu.Lock()
			w.stats.Errors++
			w.statsMu.Unlock()
			debug.LogWatch("watcher error: %v\n", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addWatches(path); err != nil {
				debug.LogWatch("failed to watch new directory %s: %v\n", path, err)
			}
			return
		}
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !w.Matches(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx.Err() != nil {
		return
	}
	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

// Matches reports whether path falls under one of the watch patterns.
func (w *Watcher) Matches(path string) bool {
	if len(w.patterns) == 0 {
		return true
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.ctx.Err() != nil || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	sort.Strings(paths)
	debug.LogWatch("delivering %d changed paths\n", len(paths))

	w.statsMu.Lock()
	w.stats.Batches++
	w.stats.Events += int64(len(paths))
	w.stats.LastBatch = time.Now()
	w.statsMu.Unlock()

	if w.onChange != nil {
		w.onChange(paths)
	}
}

// Stats returns the delivery counters.
func (w *Watcher) Stats() Stats {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	return w.stats
}
