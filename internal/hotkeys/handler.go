package hotkeys

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/binu/internal/config"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger

	mu         sync.Mutex
	registered []string
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. backend must expose its X11
// connection.
func NewHandler(backend any, logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, fmt.Errorf("hotkeys require an X11 backend")
	}
	if logger == nil {
		logger = slog.Default()
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   accessor.RootWindow(),
		logger: logger.With("component", "hotkeys"),
	}, nil
}

// Bind registers every enabled shortcut in cfg with the dispatcher. A binding
// that cannot be grabbed is logged and skipped; the count of registered
// shortcuts is returned.
func (h *Handler) Bind(ctx context.Context, cfg *config.Config, d *Dispatcher) int {
	bound := 0
	for _, kb := range cfg.ActiveKeybindings() {
		shortcut, err := ParseShortcut(kb.Name)
		if err != nil {
			h.logger.Warn("skipping keybinding", "shortcut", kb.Name, "error", err)
			continue
		}
		if err := h.RegisterFunc(kb.Name, kb.Sequence, func() {
			d.Dispatch(ctx, shortcut)
		}); err != nil {
			h.logger.Warn("failed to register keybinding", "shortcut", kb.Name, "keys", kb.Sequence, "error", err)
			continue
		}
		h.logger.Debug("registered keybinding", "shortcut", kb.Name, "keys", kb.Sequence)
		bound++
	}
	return bound
}

// Rebind drops every registered shortcut and binds cfg afresh.
func (h *Handler) Rebind(ctx context.Context, cfg *config.Config, d *Dispatcher) int {
	h.UnregisterAll()
	return h.Bind(ctx, cfg, d)
}

// RegisterFunc registers an arbitrary hotkey callback under name.
func (h *Handler) RegisterFunc(name, keySequence string, callback func()) error {
	if err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true); err != nil {
		return err
	}

	h.mu.Lock()
	h.registered = append(h.registered, name)
	h.mu.Unlock()
	return nil
}

// Registered returns the names of the registered shortcuts.
func (h *Handler) Registered() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.registered...)
}

// UnregisterAll detaches every key press handler on the root window and
// releases the grabs.
func (h *Handler) UnregisterAll() {
	h.mu.Lock()
	n := len(h.registered)
	h.registered = nil
	h.mu.Unlock()

	keybind.DetachPress(h.xu, h.root)
	if n > 0 {
		h.logger.Debug("unregistered keybindings", "count", n)
	}
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
