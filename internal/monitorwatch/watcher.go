// Package monitorwatch keeps the monitor-config cache in step with the
// connected monitors.
package monitorwatch

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/binu/internal/platform"
)

// Source lists the connected monitors and their EDID blocks.
type Source interface {
	MonitorOutputs() ([]platform.MonitorOutput, error)
}

// WatcherConfig holds configuration for the watcher.
type WatcherConfig struct {
	Interval time.Duration
	Path     string
	Logger   *slog.Logger
}

// Watcher periodically rebuilds the cache and rewrites the file only when
// its content changes.
type Watcher struct {
	path   string
	source Source
	logger *slog.Logger
	reset  chan struct{}

	mu       sync.RWMutex
	interval time.Duration
	entries  []Entry
	written  []byte
}

// NewWatcher creates a watcher. An interval of zero or less uses 5 seconds.
func NewWatcher(cfg WatcherConfig, source Source) *Watcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		interval: interval,
		path:     cfg.Path,
		source:   source,
		logger:   logger.With("component", "monitorwatch"),
		reset:    make(chan struct{}, 1),
	}
	if data, err := os.ReadFile(cfg.Path); err == nil {
		w.written = data
	}
	return w
}

// Run polls once immediately and then on every tick. Blocks until ctx is
// cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	interval := w.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("monitor watcher started", "interval", interval, "path", w.path)
	w.poll()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("monitor watcher stopped")
			return nil
		case <-w.reset:
			interval = w.Interval()
			ticker.Reset(interval)
			w.logger.Debug("monitor poll interval changed", "interval", interval)
		case <-ticker.C:
			w.poll()
		}
	}
}

// Interval returns the current poll interval.
func (w *Watcher) Interval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.interval
}

// SetInterval changes the poll interval of a running watcher. Values of zero
// or less are ignored.
func (w *Watcher) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	w.mu.Lock()
	changed := d != w.interval
	w.interval = d
	w.mu.Unlock()

	if changed {
		select {
		case w.reset <- struct{}{}:
		default:
		}
	}
}

// Entries returns the entries from the last successful poll.
func (w *Watcher) Entries() []Entry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]Entry(nil), w.entries...)
}

// Refresh polls the source now and reports whether the cache file changed.
func (w *Watcher) Refresh() (bool, error) {
	outputs, err := w.source.MonitorOutputs()
	if err != nil {
		return false, err
	}
	entries := BuildEntries(outputs)
	data, err := MarshalEntries(entries)
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = entries
	if bytes.Equal(data, w.written) {
		return false, nil
	}
	if err := writeFileAtomic(w.path, data); err != nil {
		return false, err
	}
	w.written = data
	return true, nil
}

func (w *Watcher) poll() {
	// A panic here must not take the daemon down.
	defer func() {
		if err := recover(); err != nil {
			w.logger.Error("monitor watcher panic recovered", "error", err)
		}
	}()

	changed, err := w.Refresh()
	if err != nil {
		w.logger.Warn("failed to refresh monitor cache", "error", err)
		return
	}
	if changed {
		w.logger.Info("monitor configuration changed", "monitors", len(w.Entries()))
	}
}
