// Package navigator moves focus and the pointer between monitors.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/binu/internal/config"
	"github.com/1broseidon/binu/internal/cursor"
	"github.com/1broseidon/binu/internal/platform"
)

// Environment is the display surface the navigator queries and drives.
type Environment interface {
	platform.Topology
	platform.Commander
}

// Animator moves the pointer, either animated or in a single jump.
type Animator interface {
	Animate(ctx context.Context, target platform.Point, duration time.Duration) (cursor.Session, error)
	Warp(target platform.Point) error
}

// Result describes what one navigation did.
type Result struct {
	Reference int
	Target    int
	Center    platform.Point

	// Focused is the window that was activated, zero when none was.
	Focused platform.WindowID

	PointerMoved bool
	Animated     bool
	Session      cursor.Session
}

type flight struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Navigator resolves navigation requests and applies them. At most one
// navigation runs at a time: a new request cancels the one in flight and
// waits for it to restore the cursor before starting.
type Navigator struct {
	env      Environment
	settings config.SettingsView
	animator Animator
	logger   *slog.Logger

	mu     sync.Mutex
	active *flight
}

// New creates a navigator. logger may be nil.
func New(env Environment, settings config.SettingsView, animator Animator, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{
		env:      env,
		settings: settings,
		animator: animator,
		logger:   logger.With("component", "navigator"),
	}
}

// ReferenceMonitor returns the monitor navigation is relative to. When the
// pointer is not being moved, the focused window's monitor is used so that
// navigation follows keyboard focus; otherwise the pointer's monitor.
func ReferenceMonitor(topo platform.Topology, settings config.SettingsView) (int, error) {
	if !settings.MoveCursorEnabled() {
		idx, ok, err := topo.FocusedWindowMonitorIndex()
		if err != nil {
			return 0, err
		}
		if ok {
			return idx, nil
		}
	}
	return topo.CurrentMonitorIndex()
}

// Resolve returns the reference and target monitors for dir.
func Resolve(topo platform.Topology, settings config.SettingsView, dir Direction) (reference, target int, err error) {
	total, err := topo.MonitorCount()
	if err != nil {
		return 0, 0, fmt.Errorf("count monitors: %w", err)
	}
	reference, err = ReferenceMonitor(topo, settings)
	if err != nil {
		return 0, 0, fmt.Errorf("reference monitor: %w", err)
	}
	target, err = ResolveTarget(dir, reference, total)
	if err != nil {
		return reference, 0, err
	}
	return reference, target, nil
}

// FocusMostRecent activates the most recently used eligible window on a
// monitor. It returns zero when the monitor has none.
func FocusMostRecent(env Environment, monitor int) (platform.WindowID, error) {
	id, ok, err := env.MostRecentWindowOn(monitor)
	if err != nil {
		return 0, fmt.Errorf("find window on monitor %d: %w", monitor, err)
	}
	if !ok {
		return 0, nil
	}
	if err := env.FocusWindow(id); err != nil {
		return 0, fmt.Errorf("focus window on monitor %d: %w", monitor, err)
	}
	return id, nil
}

// Navigate moves to the monitor selected by dir. Settings are read on every
// call. Resolution errors abort before any side effect; later failures are
// collected and do not stop the remaining steps.
func (n *Navigator) Navigate(ctx context.Context, dir Direction) (Result, error) {
	ctx, release := n.begin(ctx)
	defer release()
	if err := ctx.Err(); err != nil {
		// Superseded while waiting for the previous navigation.
		return Result{}, err
	}

	reference, target, err := Resolve(n.env, n.settings, dir)
	if err != nil {
		return Result{}, err
	}
	res := Result{Reference: reference, Target: target}

	geometry, err := n.env.MonitorGeometry(target)
	if err != nil {
		return res, fmt.Errorf("monitor %d geometry: %w", target, err)
	}
	res.Center = geometry.Center()

	var errs []error
	if n.settings.UpdateFocusEnabled() {
		id, err := FocusMostRecent(n.env, target)
		if err != nil {
			errs = append(errs, err)
		}
		res.Focused = id
	}

	if !n.settings.MoveCursorEnabled() {
		return res, errors.Join(errs...)
	}

	if n.settings.AnimateCursorEnabled() {
		res.Animated = true
		session, err := n.animator.Animate(ctx, res.Center, n.settings.AnimationDuration())
		res.Session = session
		res.PointerMoved = session.Visited > 0
		if err != nil {
			errs = append(errs, fmt.Errorf("animate pointer: %w", err))
		}
	} else {
		if err := n.animator.Warp(res.Center); err != nil {
			errs = append(errs, fmt.Errorf("warp pointer: %w", err))
		} else {
			res.PointerMoved = true
		}
	}

	return res, errors.Join(errs...)
}

// HandleShortcut runs a navigation and logs the outcome. It never fails.
func (n *Navigator) HandleShortcut(ctx context.Context, dir Direction) {
	res, err := n.Navigate(ctx, dir)
	switch {
	case errors.Is(err, context.Canceled):
		n.logger.Debug("navigation superseded", "direction", dir.String())
	case err != nil:
		var invalid *InvalidMonitorError
		if errors.As(err, &invalid) {
			n.logger.Warn("navigation ignored", "direction", dir.String(), "error", err)
			return
		}
		n.logger.Error("navigation failed", "direction", dir.String(), "target", res.Target, "error", err)
	default:
		n.logger.Debug("navigated",
			"direction", dir.String(),
			"from", res.Reference,
			"to", res.Target,
			"focused", uint32(res.Focused),
			"pointer_moved", res.PointerMoved,
		)
	}
}

// begin registers a new navigation, cancels the one in flight, and waits for
// it to finish. release must be called when the navigation ends.
func (n *Navigator) begin(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	f := &flight{cancel: cancel, done: make(chan struct{})}

	n.mu.Lock()
	prev := n.active
	n.active = f
	n.mu.Unlock()

	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	return ctx, func() {
		cancel()
		n.mu.Lock()
		if n.active == f {
			n.active = nil
		}
		n.mu.Unlock()
		close(f.done)
	}
}
