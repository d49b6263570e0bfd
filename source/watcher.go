package source

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/crisisatlas/fundgraph/errors"
)

// DataWatcher watches the data directory for table changes and triggers
// reload callbacks so a long-running server picks up fresh exports
// without a restart.
type DataWatcher struct {
	dir            string
	watcher        *fsnotify.Watcher
	callbacks      []ReloadCallback
	mu             sync.RWMutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	logger         *zap.SugaredLogger
}

// ReloadCallback is called after a detected change, once per debounce
// window. Errors are logged and do not stop the watcher.
type ReloadCallback func() error

// NewDataWatcher creates a watcher over the data directory.
func NewDataWatcher(dir string, logger *zap.SugaredLogger) (*DataWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch data dir %s", dir)
	}

	return &DataWatcher{
		dir:            dir,
		watcher:        watcher,
		debouncePeriod: 500 * time.Millisecond, // exports rewrite all three files in a burst
		logger:         logger,
	}, nil
}

// OnReload registers a callback to be called when the tables change.
func (dw *DataWatcher) OnReload(callback ReloadCallback) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	dw.callbacks = append(dw.callbacks, callback)
}

// Start begins watching for data changes.
func (dw *DataWatcher) Start() {
	go dw.watchLoop()
}

// Stop stops watching.
func (dw *DataWatcher) Stop() error {
	return dw.watcher.Close()
}

func (dw *DataWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isTableFile(event.Name) {
				continue
			}

			if dw.logger != nil {
				dw.logger.Infow("Data watcher detected change",
					"file", event.Name,
					"op", event.Op.String(),
				)
			}
			dw.scheduleReload()

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			if dw.logger != nil {
				dw.logger.Warnw("Data watcher error", "error", err)
			}
		}
	}
}

// scheduleReload debounces rapid file changes and triggers reload
func (dw *DataWatcher) scheduleReload() {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.debounceTimer != nil {
		dw.debounceTimer.Stop()
	}

	dw.debounceTimer = time.AfterFunc(dw.debouncePeriod, dw.reload)
}

func (dw *DataWatcher) reload() {
	dw.mu.RLock()
	callbacks := make([]ReloadCallback, len(dw.callbacks))
	copy(callbacks, dw.callbacks)
	dw.mu.RUnlock()

	for _, callback := range callbacks {
		if err := callback(); err != nil {
			if dw.logger != nil {
				dw.logger.Errorw("Data reload callback failed", "error", err)
			}
			// Continue calling other callbacks even if one fails
		}
	}
}

// isTableFile reports whether the changed path is one of the source
// tables; editor temp files and unrelated writes are ignored.
func isTableFile(path string) bool {
	base := filepath.Base(path)
	switch base {
	case OrganizationsFile, AgenciesFile, ProjectsFile:
		return true
	}
	return strings.HasSuffix(base, "-table.json")
}
