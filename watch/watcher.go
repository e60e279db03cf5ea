// Package watch reports changes to facility files so they can be
// re-evaluated.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// eventChannelBuffer is the size of the watch event channel.
	eventChannelBuffer = 100

	// DefaultDebounce is the quiet period used when none is configured.
	DefaultDebounce = 500 * time.Millisecond
)

// DefaultExtensions are the facility file extensions watched by default.
func DefaultExtensions() []string {
	return []string{".json", ".yaml", ".yml", ".hcl"}
}

// Config configures a Watcher.
type Config struct {
	// Debounce is how long a file must stay quiet before its change is
	// reported.
	Debounce time.Duration

	// Extensions filters files inside watched directories. Explicitly named
	// files are always reported.
	Extensions []string
}

// Operation is the kind of change reported.
type Operation string

// OpChange means the file was created or its content changed. OpRemove means
// it was deleted or renamed away.
const (
	OpChange Operation = "change"
	OpRemove Operation = "remove"
)

// Event is one debounced file change.
type Event struct {
	Path string
	Op   Operation
}

type pendingChange struct {
	op   fsnotify.Op
	seen time.Time
}

// Watcher watches facility files and directories and emits debounced events.
type Watcher struct {
	debounce   time.Duration
	watcher    *fsnotify.Watcher
	logger     *slog.Logger
	extensions map[string]bool
	dirs       map[string]bool // every file inside is a candidate
	files      map[string]bool // explicitly named files
	watched    []string        // directories registered with fsnotify

	pendingMu sync.Mutex
	pending   map[string]pendingChange

	// hashes suppresses events for writes that leave content unchanged.
	hashes map[string]string

	events        chan Event
	droppedEvents atomic.Int64
	now           func() time.Time
}

// New creates a watcher for paths, which may be files or directories.
// Directories are not watched recursively. A nil logger uses slog.Default.
func New(cfg Config, paths []string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions()
	}
	extensions := make(map[string]bool, len(exts))
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[strings.ToLower(ext)] = true
	}

	w := &Watcher{
		debounce:   cfg.Debounce,
		logger:     logger,
		extensions: extensions,
		dirs:       make(map[string]bool),
		files:      make(map[string]bool),
		pending:    make(map[string]pendingChange),
		hashes:     make(map[string]string),
		events:     make(chan Event, eventChannelBuffer),
		now:        time.Now,
	}

	watchDirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", p, err)
		}
		if info.IsDir() {
			w.dirs[abs] = true
			watchDirs[abs] = true
		} else {
			w.files[abs] = true
			watchDirs[filepath.Dir(abs)] = true
		}
	}
	if len(watchDirs) == 0 {
		return nil, fmt.Errorf("no paths to watch")
	}

	for dir := range watchDirs {
		w.watched = append(w.watched, dir)
	}
	sort.Strings(w.watched)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.watcher = fsw
	return w, nil
}

// Events returns the channel of debounced events. It is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start registers the watches and begins processing in the background until
// ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.watched {
		if err := w.watcher.Add(dir); err != nil {
			w.watcher.Close()
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
		w.logger.Debug("Watching directory", "path", dir)
		w.seedHashes(dir)
	}

	go w.processEvents(ctx)

	w.logger.Info("Facility watcher started",
		"directories", len(w.watched),
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher. The events channel is closed by processEvents
// when it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// DroppedEvents returns the number of events dropped due to channel overflow.
func (w *Watcher) DroppedEvents() int64 {
	return w.droppedEvents.Load()
}

func (w *Watcher) seedHashes(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() || !w.accepts(path) {
			continue
		}
		if content, err := os.ReadFile(path); err == nil {
			w.hashes[path] = contentHash(content)
		}
	}
}

// accepts reports whether path is a file this watcher reports on.
func (w *Watcher) accepts(path string) bool {
	if w.files[path] {
		return true
	}
	return w.dirs[filepath.Dir(path)] && w.extensions[strings.ToLower(filepath.Ext(path))]
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	defer w.watcher.Close()

	tick := w.debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if !w.accepts(path) {
		return
	}
	if event.Op == fsnotify.Chmod {
		return
	}

	w.pendingMu.Lock()
	prev := w.pending[path]
	w.pending[path] = pendingChange{op: prev.op | event.Op, seen: w.now()}
	w.pendingMu.Unlock()

	w.logger.Debug("Facility file change detected", "path", path, "op", event.Op.String())
}

// flushPending emits every change that has been quiet for the debounce period.
func (w *Watcher) flushPending(ctx context.Context) {
	now := w.now()

	w.pendingMu.Lock()
	var ready []string
	ops := make(map[string]fsnotify.Op)
	for path, change := range w.pending {
		if now.Sub(change.seen) >= w.debounce {
			ready = append(ready, path)
			ops[path] = change.op
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	sort.Strings(ready)
	for _, path := range ready {
		select {
		case <-ctx.Done():
			return
		default:
		}

		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				if _, tracked := w.hashes[path]; tracked || ops[path].Has(fsnotify.Remove) || ops[path].Has(fsnotify.Rename) {
					delete(w.hashes, path)
					w.sendEvent(Event{Path: path, Op: OpRemove})
				}
				continue
			}
			w.logger.Warn("Failed to read file for hash check", "path", path, "error", err)
			continue
		}

		newHash := contentHash(content)
		if old, ok := w.hashes[path]; ok && old == newHash {
			continue
		}
		w.hashes[path] = newHash
		w.sendEvent(Event{Path: path, Op: OpChange})
	}
}

func (w *Watcher) sendEvent(event Event) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event", "path", event.Path, "op", event.Op)
	default:
		dropped := w.droppedEvents.Add(1)
		w.logger.Warn("Event channel full, dropping event",
			"path", event.Path,
			"total_dropped", dropped)
	}
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
