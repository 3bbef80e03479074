//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/binu/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11
// connection to display (empty means $DISPLAY).
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops a running EventLoop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	monitors, err := b.monitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}
	return displays, nil
}

// MonitorOutputs returns every active monitor together with its output's
// EDID. A missing or unreadable EDID leaves the field nil.
func (b *LinuxBackend) MonitorOutputs() ([]MonitorOutput, error) {
	monitors, err := b.monitors()
	if err != nil {
		return nil, err
	}

	outputs := make([]MonitorOutput, 0, len(monitors))
	for _, m := range monitors {
		d := displayFromMonitor(m)
		edid, _ := b.conn.OutputEDID(m.Output)
		outputs = append(outputs, MonitorOutput{
			Index:     d.Index,
			Connector: d.Connector,
			Bounds:    d.Bounds,
			EDID:      edid,
		})
	}
	return outputs, nil
}

// MonitorCount returns the number of active monitors.
func (b *LinuxBackend) MonitorCount() (int, error) {
	monitors, err := b.monitors()
	if err != nil {
		return 0, err
	}
	return len(monitors), nil
}

// CurrentMonitorIndex returns the monitor under the pointer, falling back to
// monitor 0 when the pointer is outside every monitor.
func (b *LinuxBackend) CurrentMonitorIndex() (int, error) {
	monitors, err := b.monitors()
	if err != nil {
		return 0, err
	}
	x, y, err := b.conn.QueryPointer()
	if err != nil {
		return 0, envErr("query pointer", err)
	}
	if idx := x11.MonitorAt(monitors, x, y); idx >= 0 {
		return idx, nil
	}
	return 0, nil
}

// FocusedWindowMonitorIndex returns the monitor of the active window.
func (b *LinuxBackend) FocusedWindowMonitorIndex() (int, bool, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, false, err
	}
	active, err := conn.GetActiveWindow()
	if err != nil || active == 0 {
		// No _NET_ACTIVE_WINDOW means nothing has focus.
		return 0, false, nil
	}
	x, y, w, h, ok := conn.ClientRect(active)
	if !ok {
		return 0, false, nil
	}

	monitors, err := b.monitors()
	if err != nil {
		return 0, false, err
	}
	idx := x11.MonitorForRect(monitors, x, y, w, h)
	if idx < 0 {
		return 0, false, nil
	}
	return idx, true, nil
}

// MonitorGeometry returns the full bounds of a monitor.
func (b *LinuxBackend) MonitorGeometry(index int) (Rect, error) {
	monitors, err := b.monitors()
	if err != nil {
		return Rect{}, err
	}
	if index < 0 || index >= len(monitors) {
		return Rect{}, fmt.Errorf("monitor %d out of range (have %d)", index, len(monitors))
	}
	return displayFromMonitor(monitors[index]).Bounds, nil
}

// PointerPosition returns the absolute pointer position.
func (b *LinuxBackend) PointerPosition() (Point, error) {
	conn, err := b.connection()
	if err != nil {
		return Point{}, err
	}
	x, y, err := conn.QueryPointer()
	if err != nil {
		return Point{}, envErr("query pointer", err)
	}
	return Point{X: x, Y: y}, nil
}

// MostRecentWindowOn returns the top-most visible task window on a monitor.
func (b *LinuxBackend) MostRecentWindowOn(index int) (WindowID, bool, error) {
	grouped, err := b.WindowsByMonitor()
	if err != nil {
		return 0, false, err
	}
	return MostRecent(grouped[index])
}

// WindowsByMonitor lists client windows grouped by monitor, most recently used first.
func (b *LinuxBackend) WindowsByMonitor() (map[int][]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	monitors, err := b.monitors()
	if err != nil {
		return nil, err
	}
	clients, err := conn.Clients()
	if err != nil {
		return nil, envErr("list clients", err)
	}

	grouped := make(map[int][]Window)
	for _, c := range clients {
		idx := x11.MonitorForRect(monitors, c.X, c.Y, c.Width, c.Height)
		if idx < 0 {
			continue
		}
		grouped[idx] = append(grouped[idx], Window{
			ID:          WindowID(c.ID),
			Title:       c.Title,
			Monitor:     idx,
			Bounds:      Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height},
			Minimized:   c.Minimized,
			SkipTaskbar: c.SkipTaskbar,
		})
	}
	return grouped, nil
}

// WarpPointer moves the pointer to p.
func (b *LinuxBackend) WarpPointer(p Point) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return envErr("warp pointer", conn.WarpPointer(p.X, p.Y))
}

// FocusWindow asks the window manager to activate a window.
func (b *LinuxBackend) FocusWindow(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return envErr("focus window", conn.FocusWindow(xproto.Window(id)))
}

// MoveWindowToMonitor moves a window onto another monitor, keeping its offset
// from the monitor origin.
func (b *LinuxBackend) MoveWindowToMonitor(id WindowID, monitor int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	monitors, err := b.monitors()
	if err != nil {
		return err
	}
	if monitor < 0 || monitor >= len(monitors) {
		return fmt.Errorf("monitor %d out of range (have %d)", monitor, len(monitors))
	}

	x, y, w, h, ok := conn.ClientRect(xproto.Window(id))
	if !ok {
		return envErr("move window", fmt.Errorf("window 0x%x has no geometry", uint32(id)))
	}
	win := Rect{X: x, Y: y, Width: w, Height: h}
	from := x11.MonitorForRect(monitors, x, y, w, h)
	if from < 0 {
		from = 0
	}
	if from == monitor {
		return nil
	}

	target := Relocate(win, displayFromMonitor(monitors[from]).Bounds, displayFromMonitor(monitors[monitor]).Bounds)
	return envErr("move window", conn.MoveResizeWindow(
		xproto.Window(id),
		target.X,
		target.Y,
		target.Width,
		target.Height,
	))
}

func (b *LinuxBackend) monitors() ([]x11.Monitor, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, envErr("list monitors", err)
	}
	return monitors, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		Index:     m.ID,
		Connector: m.Name,
		Bounds: Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
	}
}
