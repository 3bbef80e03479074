// Package x11 wraps the xgb/xgbutil calls binu makes against the X server.
package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Connection is an open X display plus its root window.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection opens display, or $DISPLAY when display is empty, and readies
// the keyboard mapping used for global grabs.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}
	keybind.Initialize(xu)
	return &Connection{XUtil: xu, Root: xu.RootWin()}, nil
}

// EventLoop dispatches X events until Quit is called.
func (c *Connection) EventLoop() { xevent.Main(c.XUtil) }

func (c *Connection) Quit() { xevent.Quit(c.XUtil) }

func (c *Connection) Close() { c.XUtil.Conn().Close() }

// Timestamp is the server time of the newest event seen, falling back to
// CurrentTime before any event arrives.
func (c *Connection) Timestamp() xproto.Timestamp {
	ts := c.XUtil.TimeGet()
	if ts == 0 {
		return xproto.TimeCurrentTime
	}
	return ts
}

// sourcePager marks an activation request as a direct user action so window
// managers skip focus-stealing prevention.
const sourcePager = 2

// FocusWindow asks the window manager to activate and raise win with a
// _NET_ACTIVE_WINDOW client message. The message is assembled by hand since
// the ewmh helper in this xgbutil release panics.
func (c *Connection) FocusWindow(win xproto.Window) error {
	active, err := xprop.Atm(c.XUtil, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return fmt.Errorf("intern _NET_ACTIVE_WINDOW: %w", err)
	}

	msg := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   active,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			sourcePager, uint32(c.Timestamp()), 0, 0, 0,
		}),
	}
	mask := uint32(xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify)
	return xproto.SendEventChecked(c.XUtil.Conn(), false, c.Root, mask, string(msg.Bytes())).Check()
}
