// Package watcher re-converts source files as they change on disk.
package watcher

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/converter"
	"github.com/gnana997/tsxify/pkg/scanner"
)

// DefaultDebounce groups rapid writes to the same file.
const DefaultDebounce = 200 * time.Millisecond

// Handler receives every conversion the watcher performs. rel is the
// slash-separated path relative to the watched root.
type Handler func(rel string, result *converter.Result)

// Options configures a Watcher.
type Options struct {
	Scan       scanner.ScanConfig
	Conversion config.ConversionConfig
	Debounce   time.Duration
	Logger     *slog.Logger
}

// Watcher converts files under a root again whenever they are written.
//
// Usage:
//
//	w, err := New(conv, scan, opts, func(rel string, r *converter.Result) { ... })
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//	err = w.Start(root)
type Watcher struct {
	watcher *fsnotify.Watcher
	conv    *converter.Converter
	scan    *scanner.Scanner
	handler Handler
	opts    Options
	logger  *slog.Logger
	root    string

	timersMu sync.Mutex
	timers   map[string]*time.Timer

	stopCh  chan struct{}
	stopped bool
	mu      sync.Mutex
}

// New creates a watcher. It does not watch anything until Start.
func New(conv *converter.Converter, scan *scanner.Scanner, opts Options, handler Handler) (*Watcher, error) {
	if err := opts.Conversion.Validate(); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		watcher: fw,
		conv:    conv,
		scan:    scan,
		handler: handler,
		opts:    opts,
		logger:  logger,
		timers:  make(map[string]*time.Timer),
		stopCh:  make(chan struct{}),
	}, nil
}

// Start watches root and every directory below it that is not excluded,
// then processes events in the background.
func (w *Watcher) Start(root string) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	w.mu.Unlock()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	w.root = absRoot

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != absRoot && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set up watches: %w", err)
	}

	w.logger.Info("watching for changes", "root", absRoot, "debounce", w.opts.Debounce)
	go w.loop()
	return nil
}

// Stop stops watching. Pending conversions are cancelled. Safe to call
// more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)

	w.timersMu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.timersMu.Unlock()

	err := w.watcher.Close()
	w.logger.Info("watcher stopped")
	return err
}

// Pending returns the number of debounced conversions not yet run.
func (w *Watcher) Pending() int {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()
	return len(w.timers)
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := event.Name
	rel, ok := w.relative(path)
	if !ok {
		return
	}

	switch {
	case event.Has(fsnotify.Create) && isDir(path):
		if !w.ignored(path) {
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("failed to watch directory", "path", path, "error", err)
			}
		}
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		if scanner.Matches(w.opts.Scan, rel) {
			w.schedule(path, rel)
		}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.cancel(path)
		w.scan.Invalidate(path)
	}
}

// schedule converts path after the debounce delay; a later event for the
// same path restarts the delay.
func (w *Watcher) schedule(path, rel string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.opts.Debounce, func() {
		w.timersMu.Lock()
		if w.timers[path] == timer {
			delete(w.timers, path)
		}
		w.timersMu.Unlock()
		w.fire(path, rel)
	})
	w.timers[path] = timer
}

// fire runs a due conversion unless Stop ran after the timer expired.
func (w *Watcher) fire(path, rel string) {
	if w.isStopped() {
		return
	}
	w.convert(path, rel)
}

func (w *Watcher) isStopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

func (w *Watcher) cancel(path string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) convert(path, rel string) {
	// The mapping of the old content is stale after a write.
	w.scan.Invalidate(path)

	unit, err := w.scan.LoadFile(path, rel)
	if err != nil {
		w.logger.Warn("failed to read changed file", "file", path, "error", err)
		return
	}

	start := time.Now()
	result, err := w.conv.Convert(unit, w.opts.Conversion)
	if err != nil {
		w.logger.Error("conversion failed", "file", rel, "error", err)
		return
	}
	w.logger.Debug("converted changed file",
		"file", rel,
		"components", result.Components,
		"diagnostics", len(result.Diagnostics),
		"ms", time.Since(start).Milliseconds())

	if w.handler != nil && !w.isStopped() {
		w.handler(rel, result)
	}
}

func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) ignored(dir string) bool {
	rel, ok := w.relative(dir)
	if !ok {
		return false
	}
	return scanner.Excluded(w.opts.Scan, rel)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
