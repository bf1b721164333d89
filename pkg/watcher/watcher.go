package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/0xmhha/skill-tracker/pkg/kvstore"
	"github.com/0xmhha/skill-tracker/pkg/logger"
)

// companionSuffixes are files SQLite keeps next to its database.
var companionSuffixes = []string{"-wal", "-shm", "-journal"}

// watcher implements the Watcher interface using fsnotify.
type watcher struct {
	fsw    *fsnotify.Watcher
	logger logger.Logger
	config Config

	events chan Event
	errors chan error

	mu       sync.RWMutex
	running  bool
	closed   bool
	stopChan chan struct{}

	// dirs maps each watched directory to the files of interest in it.
	// An empty set means every file in the directory.
	dirs map[string]map[string]struct{}

	// Debouncing state, keyed by target path.
	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	failureCount int
}

// New creates a new file system watcher.
//
// Parameters:
//   - cfg: Watcher configuration
//   - log: Logger instance
//
// Returns:
//   - Configured Watcher
//   - Error if watcher cannot be created
func New(cfg Config, log logger.Logger) (Watcher, error) {
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = 100 * time.Millisecond
	}
	if cfg.CircuitBreakerThreshold == 0 {
		cfg.CircuitBreakerThreshold = 5
	}
	if log == nil {
		log = logger.Noop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &watcher{
		fsw:            fsw,
		logger:         log.Component("watcher"),
		config:         cfg,
		events:         make(chan Event, 16),
		errors:         make(chan error, 10),
		stopChan:       make(chan struct{}),
		dirs:           make(map[string]map[string]struct{}),
		debounceTimers: make(map[string]*time.Timer),
	}

	w.logger.Debug("file watcher created", "debounce_interval", cfg.DebounceInterval)
	return w, nil
}

// Start implements Watcher.Start.
func (w *watcher) Start(ctx context.Context, paths []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.running {
		return ErrAlreadyStarted
	}

	for _, path := range paths {
		dir, file, err := resolveTarget(kvstore.ExpandHome(path))
		if err != nil {
			w.logger.Warn("skipping watch path", "path", path, "error", err)
			continue
		}

		files, watched := w.dirs[dir]
		if !watched {
			if addErr := w.fsw.Add(dir); addErr != nil {
				return fmt.Errorf("failed to add path %s: %w", dir, addErr)
			}
			files = make(map[string]struct{})
			w.dirs[dir] = files
		}
		if file != "" {
			files[file] = struct{}{}
		}
		w.logger.Debug("added watch path", "dir", dir, "file", file)
	}

	if len(w.dirs) == 0 {
		return ErrInvalidPath
	}

	w.running = true
	go w.processEvents(ctx, w.stopChan)

	w.logger.Info("watcher started", "dirs", len(w.dirs))
	return nil
}

// resolveTarget splits a watch path into the directory to register and
// the file of interest inside it (empty for a whole directory).
func resolveTarget(path string) (string, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", err
	}

	info, err := os.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		return abs, "", nil
	case err == nil || os.IsNotExist(err):
		dir := filepath.Dir(abs)
		if dirInfo, dirErr := os.Stat(dir); dirErr != nil || !dirInfo.IsDir() {
			return "", "", fmt.Errorf("%w: %s", ErrInvalidPath, dir)
		}
		return dir, filepath.Base(abs), nil
	default:
		return "", "", err
	}
}

// Stop implements Watcher.Stop.
func (w *watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if !w.running {
		return ErrNotStarted
	}

	close(w.stopChan)
	w.stopChan = make(chan struct{})
	w.running = false

	w.logger.Info("watcher stopped")
	return nil
}

// Events implements Watcher.Events.
func (w *watcher) Events() <-chan Event {
	return w.events
}

// Errors implements Watcher.Errors.
func (w *watcher) Errors() <-chan error {
	return w.errors
}

// Close implements Watcher.Close.
func (w *watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.running {
		close(w.stopChan)
		w.running = false
	}

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = nil
	w.debounceMu.Unlock()

	close(w.events)
	close(w.errors)

	if err := w.fsw.Close(); err != nil {
		w.logger.Error("failed to close fsnotify watcher", "error", err)
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.logger.Debug("watcher closed")
	return nil
}

// processEvents handles events from fsnotify until stop or ctx ends.
func (w *watcher) processEvents(ctx context.Context, stop <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("event processing stopped", "reason", "context cancelled")
			return

		case <-stop:
			w.logger.Debug("event processing stopped", "reason", "stop signal")
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.handleError(err)
		}
	}
}

// handleEvent maps an fsnotify event to its target and debounces it.
func (w *watcher) handleEvent(event fsnotify.Event) {
	target, ok := w.targetFor(event.Name)
	if !ok {
		return
	}

	var op Op
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		// Chmod alone never changes stored records.
		return
	}

	w.debounceEvent(Event{
		Path:      target,
		Source:    event.Name,
		Op:        op,
		Timestamp: time.Now(),
	})
}

// targetFor returns the watched target a changed file belongs to.
func (w *watcher) targetFor(path string) (string, bool) {
	dir, base := filepath.Split(path)
	dir = filepath.Clean(dir)

	w.mu.RLock()
	files, ok := w.dirs[dir]
	w.mu.RUnlock()
	if !ok {
		return "", false
	}
	if len(files) == 0 {
		return path, true
	}

	if _, ok := files[base]; ok {
		return path, true
	}
	for _, suffix := range companionSuffixes {
		if main, found := strings.CutSuffix(base, suffix); found {
			if _, ok := files[main]; ok {
				return filepath.Join(dir, main), true
			}
		}
	}
	return "", false
}

// debounceEvent restarts the quiet period of event.Path.
func (w *watcher) debounceEvent(event Event) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimers == nil {
		return
	}
	if timer, exists := w.debounceTimers[event.Path]; exists {
		timer.Stop()
	}

	w.debounceTimers[event.Path] = time.AfterFunc(w.config.DebounceInterval, func() {
		w.debounceMu.Lock()
		if w.debounceTimers != nil {
			delete(w.debounceTimers, event.Path)
		}
		w.debounceMu.Unlock()

		w.emit(event)
	})
}

// emit delivers event unless the watcher is closed or the reader lags.
func (w *watcher) emit(event Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return
	}

	select {
	case w.events <- event:
	default:
		w.logger.Warn("events channel full, dropping event", "path", event.Path)
	}
}

// handleError forwards fsnotify errors until the circuit breaker opens.
func (w *watcher) handleError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	w.failureCount++
	w.logger.Error("fsnotify error", "error", err, "failure_count", w.failureCount)

	if w.failureCount >= w.config.CircuitBreakerThreshold {
		err = ErrCircuitBreakerOpen
	}

	select {
	case w.errors <- err:
	default:
		w.logger.Warn("error channel full, dropping error")
	}
}
