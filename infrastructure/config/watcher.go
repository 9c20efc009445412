package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches the overlay file and reloads it on change. Listeners get
// the new overlay after it validates; an overlay that fails to load or
// validate is dropped and the current one kept.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  *Overlay
	mu       sync.RWMutex
	onChange []func(*Overlay)
	logger   *zap.Logger
	stopCh   chan struct{}
}

// NewWatcher creates a watcher over the overlay file at path.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	overlay, err := LoadOverlay(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}
	// Watch the directory too: editors and kubelet-style updaters replace
	// the file by rename, which drops the file-level watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("failed to watch config directory", zap.Error(err))
	}

	return &Watcher{
		path:     path,
		watcher:  watcher,
		current:  overlay,
		onChange: make([]func(*Overlay), 0),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching for configuration changes.
func (w *Watcher) Start() {
	go w.watchLoop()
	w.logger.Info("config watcher started", zap.String("path", w.path))
}

// Stop stops watching for configuration changes.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	w.logger.Info("config watcher stopped")
}

// OnChange registers a callback invoked with each successfully reloaded
// overlay.
func (w *Watcher) OnChange(handler func(*Overlay)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// Current returns the most recently loaded overlay.
func (w *Watcher) Current() *Overlay {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Watcher) watchLoop() {
	// Debounce: editors fire several events per save.
	var debounce *time.Timer
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDelay, w.reload)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	overlay, err := LoadOverlay(w.path)
	if err != nil {
		w.logger.Error("config reload failed, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = overlay
	handlers := append([]func(*Overlay){}, w.onChange...)
	w.mu.Unlock()

	w.logger.Info("config reloaded", zap.String("path", w.path))
	for _, handler := range handlers {
		handler(overlay)
	}
}
