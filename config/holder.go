package config

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Holder provides thread-safe access to configuration with hot reload support.
type Holder struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	watched  map[string]bool
	onChange []func(*Config)
	onError  []func(error)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHolder creates a new config holder and loads the initial configuration.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	return &Holder{
		config: cfg,
		path:   absPath,
		logger: logger,
		stopCh: make(chan struct{}),
	}, nil
}

// Get returns the current configuration (thread-safe).
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

// Path returns the absolute config file path.
func (h *Holder) Path() string {
	return h.path
}

// Reload reloads the configuration from disk.
// Returns error if loading fails (keeps old config).
func (h *Holder) Reload() error {
	h.logger.Info().Str("path", h.path).Msg("reloading configuration")

	newCfg, err := Load(h.path)
	if err != nil {
		h.logger.Error().Err(err).Msg("config reload failed, keeping old config")
		err = fmt.Errorf("reload config: %w", err)
		for _, fn := range h.errorListeners() {
			fn(err)
		}
		return err
	}

	h.mu.Lock()
	oldCfg := h.config
	h.config = newCfg
	listeners := append([]func(*Config){}, h.onChange...)
	h.mu.Unlock()

	h.logChanges(oldCfg, newCfg)

	for _, fn := range listeners {
		fn(newCfg)
	}

	h.logger.Info().Msg("configuration reloaded successfully")
	return nil
}

// OnChange registers a callback to be called after a successful reload.
func (h *Holder) OnChange(fn func(*Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// OnError registers a callback to be called when a reload fails.
func (h *Holder) OnError(fn func(error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onError = append(h.onError, fn)
}

func (h *Holder) errorListeners() []func(error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]func(error){}, h.onError...)
}

// WatchFile starts watching the config file, and any extra files such as the
// fixture file, for changes. A change to any of them triggers a reload.
func (h *Holder) WatchFile(extra ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	watched := map[string]bool{h.path: true}
	dirs := map[string]bool{filepath.Dir(h.path): true}
	for _, p := range extra {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return fmt.Errorf("absolute path: %w", err)
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	// Watch directories (more reliable for editors that do atomic saves)
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("watch directory: %w", err)
		}
	}

	h.watcher = watcher
	h.watched = watched
	go h.watchLoop()

	h.logger.Info().Str("path", h.path).Int("files", len(watched)).Msg("watching config files for changes")
	return nil
}

// WatchSignals starts listening for SIGHUP to trigger reload.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-sigCh:
				h.logger.Info().Msg("received SIGHUP, reloading config")
				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("SIGHUP reload failed")
				}
			case <-h.stopCh:
				signal.Stop(sigCh)
				return
			}
		}
	}()

	h.logger.Info().Msg("listening for SIGHUP to reload config")
}

// Stop stops watching for file changes and signals. It is safe to call more
// than once.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watchLoop() {
	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}

			if !h.watched[filepath.Clean(event.Name)] {
				continue
			}

			// React to write or create (atomic save = create)
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				h.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("watched file changed")

				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("file watch reload failed")
				}
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}

func (h *Holder) logChanges(old, new *Config) {
	if old.Logging.Level != new.Logging.Level {
		h.logger.Info().
			Str("old", old.Logging.Level).
			Str("new", new.Logging.Level).
			Msg("log level changed")
	}

	if old.API.BaseURL != new.API.BaseURL {
		h.logger.Info().
			Str("old", old.API.BaseURL).
			Str("new", new.API.BaseURL).
			Msg("api base url changed")
	}

	if old.Query.PaginationStyle != new.Query.PaginationStyle {
		h.logger.Info().
			Str("old", old.Query.PaginationStyle).
			Str("new", new.Query.PaginationStyle).
			Msg("pagination style changed")
	}

	if len(old.Resources) != len(new.Resources) {
		h.logger.Info().
			Int("old", len(old.Resources)).
			Int("new", len(new.Resources)).
			Msg("resources count changed")
	}

	if old.Fixtures.File != new.Fixtures.File {
		h.logger.Info().
			Str("old", old.Fixtures.File).
			Str("new", new.Fixtures.File).
			Msg("fixture file changed")
	}
}

// ReloadableFields returns which fields can be changed without restart.
func ReloadableFields() []string {
	return []string{
		"resources",
		"query.pagination_style",
		"query.default_page_size",
		"fixtures.file",
		"fixtures.page_size",
		"logging.level",
	}
}

// NonReloadableFields returns which fields require a restart.
func NonReloadableFields() []string {
	return []string{
		"fixtures.addr",
		"metrics.enabled",
		"metrics.namespace",
		"logging.format",
	}
}
