package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Store holds the live configuration. It implements SettingsView, so the
// navigation engine sees a reload on its next call.
type Store struct {
	mu        sync.RWMutex
	path      string
	res       *LoadResult
	callbacks []func(*Config)
	logger    *slog.Logger
}

var _ SettingsView = (*Store)(nil)

// NewStore loads path and returns a store serving it.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res, err := LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return &Store{
		path:   path,
		res:    res,
		logger: logger.With("component", "config"),
	}, nil
}

// Path returns the file the store loads from.
func (s *Store) Path() string {
	return s.path
}

// Current returns the active configuration. Callers must not modify it.
func (s *Store) Current() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.res.Config
}

func (s *Store) MoveCursorEnabled() bool          { return s.Current().MoveCursorEnabled() }
func (s *Store) AnimateCursorEnabled() bool       { return s.Current().AnimateCursorEnabled() }
func (s *Store) UpdateFocusEnabled() bool         { return s.Current().UpdateFocusEnabled() }
func (s *Store) AnimationDuration() time.Duration { return s.Current().AnimationDuration() }

// OnChange registers a callback run after every successful reload.
func (s *Store) OnChange(callback func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, callback)
}

// Reload re-reads the file. On error the previous configuration stays active.
func (s *Store) Reload() error {
	res, err := LoadFromPath(s.path)
	if err != nil {
		s.logger.Warn("config reload failed, keeping previous settings", "path", s.path, "error", err)
		return err
	}

	s.mu.Lock()
	s.res = res
	callbacks := make([]func(*Config), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.Unlock()

	s.logger.Info("config reloaded", "path", s.path)
	for _, callback := range callbacks {
		callback(res.Config)
	}
	return nil
}

// Watch reloads the store whenever the config file changes. It watches the
// parent directory so editors that replace the file are picked up. Watch
// blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	var pending *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			s.logger.Debug("config change detected", "op", ev.Op.String(), "file", ev.Name)
			// Editors emit several events per save; collapse them.
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(reloadDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			_ = s.Reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("config watcher error", "error", err)
		}
	}
}
