package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DEBOUNCE_SECS = 2

// Watcher monitors the drop directory for new playlist files and emits
// events once writes settle.
type Watcher struct {
	watcher       *fsnotify.Watcher
	watchPath     string
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	pending       []string
	running       bool
	stopChan      chan struct{}
	eventChan     chan<- FileEvent
}

// NewWatcher creates a new file system watcher
func NewWatcher(eventChan chan<- FileEvent) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:   watcher,
		eventChan: eventChan,
		stopChan:  make(chan struct{}),
	}, nil
}

// Start begins watching the drop path for new playlist files
func (w *Watcher) Start(ctx context.Context, watchPath string) error {
	w.watchPath = watchPath
	slog.Info("Starting drop watcher", "path", watchPath)

	if err := w.watcher.Add(watchPath); err != nil {
		return err
	}

	w.running = true
	go w.watchLoop(ctx)

	slog.Info("Drop watcher started successfully")
	return nil
}

// Stop stops the file watcher
func (w *Watcher) Stop() {
	if !w.running {
		return
	}

	slog.Info("Stopping drop watcher")
	w.running = false
	close(w.stopChan)

	w.debounceMutex.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMutex.Unlock()

	w.watcher.Close()
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Drop watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent processes a single file system event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Writes count too: droppers often create then fill the file.
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !w.isPlaylistFile(event.Name) {
		return
	}

	slog.Info("Detected dropped playlist file", "file", event.Name)

	// Start or reset the debounce timer
	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	found := false
	for _, path := range w.pending {
		if path == event.Name {
			found = true
			break
		}
	}
	if !found {
		w.pending = append(w.pending, event.Name)
	}

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(DEBOUNCE_SECS*time.Second, func() {
		w.emitDebounceEvent()
	})
}

// isPlaylistFile checks if the file is a supported playlist format
func (w *Watcher) isPlaylistFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	return ext == ".m3u" || ext == ".m3u8"
}

// emitDebounceEvent emits the collected paths after the debounce period
func (w *Watcher) emitDebounceEvent() {
	w.debounceMutex.Lock()
	paths := w.pending
	w.pending = nil
	w.debounceMutex.Unlock()

	if len(paths) == 0 {
		return
	}
	event := FileEvent{
		Paths:     paths,
		EventType: FileCreated,
		Timestamp: time.Now(),
	}

	select {
	case w.eventChan <- event:
		slog.Info("Emitted drop event after debounce", "files", len(paths))
	default:
		slog.Warn("Event channel full, dropping file event", "files", len(paths))
	}
}
