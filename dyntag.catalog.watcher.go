package dyntag

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// CatalogWatcher keeps a catalog loaded from a file and reloads it when the
// file changes. A reload that fails keeps the previous catalog in place.
type CatalogWatcher struct {
	path     string
	current  atomic.Pointer[Catalog]
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload func(*Catalog, error)
	logger   *zap.Logger

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// WatcherOption configures a CatalogWatcher.
type WatcherOption func(*CatalogWatcher)

// WithWatchDebounce sets how long the watcher waits for writes to settle.
func WithWatchDebounce(d time.Duration) WatcherOption {
	return func(w *CatalogWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReloadCallback registers fn to run after every reload attempt. On
// failure the catalog argument is the one still in use.
func WithReloadCallback(fn func(*Catalog, error)) WatcherOption {
	return func(w *CatalogWatcher) {
		w.onReload = fn
	}
}

// WithWatchLogger sets the watcher logger.
func WithWatchLogger(logger *zap.Logger) WatcherOption {
	return func(w *CatalogWatcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WatchCatalog loads the catalog at path and starts watching it. The
// initial load must succeed.
func WatchCatalog(path string, opts ...WatcherOption) (*CatalogWatcher, error) {
	catalog, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, NewCatalogReadError(path, err)
	}
	// Editors often replace files by rename, so the directory is watched.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, NewCatalogReadError(path, err)
	}

	w := &CatalogWatcher{
		path:     filepath.Clean(path),
		watcher:  fw,
		debounce: DefaultWatchDebounce,
		logger:   zap.NewNop(),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.current.Store(catalog)

	go w.loop()
	return w, nil
}

// Current returns the catalog in use.
func (w *CatalogWatcher) Current() *Catalog {
	return w.current.Load()
}

// Path returns the watched file.
func (w *CatalogWatcher) Path() string {
	return w.path
}

// Reload loads the file now. On failure the current catalog is kept and
// the error returned.
func (w *CatalogWatcher) Reload() error {
	catalog, err := LoadCatalog(w.path)
	if err != nil {
		w.logger.Warn(LogMsgCatalogReloadFailed,
			zap.String(LogFieldPath, w.path),
			zap.Error(err))
		if w.onReload != nil {
			w.onReload(w.current.Load(), err)
		}
		return err
	}
	w.current.Store(catalog)
	w.logger.Info(LogMsgCatalogReloaded,
		zap.String(LogFieldPath, w.path),
		zap.String(LogFieldCatalog, catalog.Name()),
		zap.Int(LogFieldGroups, len(catalog.Groups())),
		zap.Int(LogFieldModifiers, len(catalog.Modifiers())))
	if w.onReload != nil {
		w.onReload(catalog, nil)
	}
	return nil
}

// Close stops watching. It is safe to call more than once.
func (w *CatalogWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		<-w.stopped
		w.logger.Debug(LogMsgWatcherStopped, zap.String(LogFieldPath, w.path))
	})
	return err
}

func (w *CatalogWatcher) loop() {
	defer close(w.stopped)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			_ = w.Reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(LogMsgCatalogReloadFailed,
				zap.String(LogFieldPath, w.path),
				zap.Error(err))
		}
	}
}
