package hotkeys

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/1broseidon/binu/internal/navigator"
)

// Navigator handles navigation shortcuts.
type Navigator interface {
	HandleShortcut(ctx context.Context, dir navigator.Direction)
}

// Swapper handles swap shortcuts.
type Swapper interface {
	HandleSwapWith(ctx context.Context, dir navigator.Direction)
	HandleSwapAll(ctx context.Context)
}

// Dispatcher runs shortcut actions off the X event loop so animation sleeps
// never block event delivery.
type Dispatcher struct {
	nav    Navigator
	swap   Swapper
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. logger may be nil.
func NewDispatcher(nav Navigator, swap Swapper, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		nav:    nav,
		swap:   swap,
		logger: logger.With("component", "hotkeys"),
	}
}

// Dispatch starts the shortcut's action on its own goroutine.
func (d *Dispatcher) Dispatch(ctx context.Context, s Shortcut) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.Run(ctx, s)
	}()
}

// Run executes the shortcut's action on the calling goroutine. Panics are
// recovered and logged.
func (d *Dispatcher) Run(ctx context.Context, s Shortcut) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("shortcut handler panic", "shortcut", s.Name, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	d.logger.Debug("shortcut triggered", "shortcut", s.Name, "action", s.Action.String())
	switch s.Action {
	case ActionNavigate:
		d.nav.HandleShortcut(ctx, s.Direction)
	case ActionSwap:
		d.swap.HandleSwapWith(ctx, s.Direction)
	case ActionSwapAll:
		d.swap.HandleSwapAll(ctx)
	}
}

// Wait blocks until every dispatched action has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
