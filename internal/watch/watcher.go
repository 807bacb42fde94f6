// Package watch revalidates a site configuration file whenever it changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/siteconfig/internal/config"
	"git.home.luguber.info/inful/siteconfig/internal/logfields"
)

// DefaultDebounce collapses the burst of events editors emit for one save.
const DefaultDebounce = 500 * time.Millisecond

// Result is the outcome of one reload.
type Result struct {
	Config *config.Config
	Err    error
	At     time.Time
}

// Handler receives every reload result. It runs on the watcher goroutine.
type Handler func(Result)

// Watcher monitors a configuration file and reloads it after changes.
type Watcher struct {
	path     string
	loader   *config.Loader
	handler  Handler
	debounce time.Duration

	fsw      *fsnotify.Watcher
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for path. Nothing is watched until Start.
func New(path string, loader *config.Loader, handler Handler, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watch: handler is required")
	}
	if loader == nil {
		loader = config.NewLoader()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		path:     absPath,
		loader:   loader,
		handler:  handler,
		debounce: DefaultDebounce,
		fsw:      fsw,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Start watches the directory holding the file; editors that save by rename
// replace the inode, so watching the file itself would lose track of it.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}
	slog.Info("Watching configuration", logfields.Path(w.path), slog.Duration("debounce", w.debounce))

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Reload loads the file now and hands the result to the handler.
func (w *Watcher) Reload() Result {
	cfg, err := w.loader.Load(w.path)
	res := Result{Config: cfg, Err: err, At: time.Now()}
	if err != nil {
		field, _ := config.FieldOf(err)
		slog.Warn("Configuration invalid", logfields.Path(w.path), logfields.Field(field), logfields.Error(err))
	} else {
		slog.Info("Configuration valid", logfields.Path(w.path), slog.Int("plugins", len(cfg.Plugins)))
	}
	w.handler(res)
	return res
}

// Run reloads once, then watches until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	w.Reload()
	if err := w.Start(ctx); err != nil {
		_ = w.Close()
		return err
	}
	<-ctx.Done()
	return w.Close()
}

// Close stops the watcher and waits for its goroutine to exit. It is safe to
// call more than once.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stop)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			switch {
			case event.Has(fsnotify.Remove):
				slog.Warn("Config file removed", logfields.Path(event.Name))
				continue
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				slog.Debug("Config file change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			default:
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("Config watcher error", logfields.Error(err))
		case <-fire:
			fire = nil
			w.Reload()
		}
	}
}
