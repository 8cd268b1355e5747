package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ChangeFunc is invoked with the freshly loaded config after the watched file
// changes and revalidates cleanly.
type ChangeFunc func(cfg *Config)

// Watcher reloads the config file on change. Editors and config management
// tools tend to fire several write events per save, so reloads are debounced.
type Watcher struct {
	path     string
	log      zerolog.Logger
	onChange ChangeFunc
	fw       *fsnotify.Watcher
	cancel   context.CancelFunc
	done     chan struct{}

	mu         sync.Mutex
	lastReload time.Time
}

const reloadDebounce = time.Second

// NewWatcher starts watching path. The callback runs on the watcher's own
// goroutine.
func NewWatcher(path string, log zerolog.Logger, onChange ChangeFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:     path,
		log:      log.With().Str("component", "config-watcher").Logger(),
		onChange: onChange,
		fw:       fw,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.fw.Close()
	<-w.done
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.mu.Lock()
			if time.Since(w.lastReload) < reloadDebounce {
				w.mu.Unlock()
				continue
			}
			w.lastReload = time.Now()
			w.mu.Unlock()

			w.reload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		// Keep running on the previous config; a half-written file is
		// the common cause here.
		w.log.Error().Err(err).Str("path", w.path).Msg("config reload failed, keeping previous config")
		return
	}
	w.log.Info().Str("path", w.path).Msg("config reloaded")
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
