package x11

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	stateHidden      = "_NET_WM_STATE_HIDDEN"
	stateSkipTaskbar = "_NET_WM_STATE_SKIP_TASKBAR"
	stateMaxHorz     = "_NET_WM_STATE_MAXIMIZED_HORZ"
	stateMaxVert     = "_NET_WM_STATE_MAXIMIZED_VERT"
	stateFullscreen  = "_NET_WM_STATE_FULLSCREEN"
)

// Client describes a managed top-level window.
type Client struct {
	ID          xproto.Window
	Title       string
	X           int
	Y           int
	Width       int
	Height      int
	Minimized   bool
	SkipTaskbar bool
}

// Clients returns the normal client windows on the current desktop, most
// recently used first. The window manager's stacking order stands in for
// recency: the top of the stack is the window that was raised last.
func (c *Connection) Clients() ([]Client, error) {
	stack, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil || len(stack) == 0 {
		stack, err = ewmh.ClientListGet(c.XUtil)
		if err != nil {
			return nil, err
		}
	}

	currentDesktop, desktopErr := ewmh.CurrentDesktopGet(c.XUtil)
	hasCurrentDesktop := desktopErr == nil

	clients := make([]Client, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		windowID := stack[i]
		if !c.IsNormalWindow(windowID) {
			continue
		}

		// Only the visible desktop; sticky windows (0xFFFFFFFF) count.
		if hasCurrentDesktop {
			desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
			if err == nil && desktop != uint(0xFFFFFFFF) && desktop != currentDesktop {
				continue
			}
		}

		x, y, w, h, ok := c.windowRect(windowID)
		if !ok {
			continue
		}

		client := Client{
			ID:     windowID,
			Title:  c.windowTitle(windowID),
			X:      x,
			Y:      y,
			Width:  w,
			Height: h,
		}
		states, _ := ewmh.WmStateGet(c.XUtil, windowID)
		for _, state := range states {
			switch state {
			case stateHidden:
				client.Minimized = true
			case stateSkipTaskbar:
				client.SkipTaskbar = true
			}
		}
		if wmState, err := icccm.WmStateGet(c.XUtil, windowID); err == nil && wmState.State == icccm.StateIconic {
			client.Minimized = true
		}

		clients = append(clients, client)
	}

	return clients, nil
}

// ClientRect returns the root-relative geometry of a single window.
func (c *Connection) ClientRect(windowID xproto.Window) (x, y, width, height int, ok bool) {
	return c.windowRect(windowID)
}

// MoveResizeWindow moves and resizes a window to the specified geometry.
// Maximized and fullscreen states are dropped for the move and reapplied
// afterwards so the window fills its new monitor.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	restore := c.clearSizeStates(windowID)

	// Use EWMH MoveResize for better WM compatibility
	err := ewmh.MoveresizeWindow(
		c.XUtil,
		windowID,
		x, y, width, height,
	)
	if err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}

	for _, state := range restore {
		ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateAdd, state)
	}
	return nil
}

// clearSizeStates removes maximized/fullscreen states and returns the ones
// that were set.
func (c *Connection) clearSizeStates(windowID xproto.Window) []string {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return nil
	}

	var removed []string
	for _, state := range states {
		switch state {
		case stateMaxHorz, stateMaxVert, stateFullscreen:
			ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state)
			removed = append(removed, state)
		}
	}
	return removed
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	// Check for normal window type
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" || t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// GetActiveWindow returns the window holding input focus according to the WM.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

func (c *Connection) windowRect(windowID xproto.Window) (x, y, width, height int, ok bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), true
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}
