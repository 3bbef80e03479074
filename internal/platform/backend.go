package platform

import "fmt"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Center returns the integer midpoint of the rectangle. Odd sizes round down.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Point is an absolute position in screen coordinates.
type Point struct {
	X int
	Y int
}

// Display describes a physical display.
type Display struct {
	Index     int
	Connector string
	Bounds    Rect
}

// MonitorOutput is the RandR output driving a monitor, with its raw EDID
// block when the output exposes one.
type MonitorOutput struct {
	Index     int
	Connector string
	Bounds    Rect
	EDID      []byte
}

// Window is a top-level client window and the monitor it belongs to.
type Window struct {
	ID          WindowID
	Title       string
	Monitor     int
	Bounds      Rect
	Minimized   bool
	SkipTaskbar bool
}

// Topology is the read side of the display environment. Every call queries
// the live environment; nothing is cached between calls.
type Topology interface {
	MonitorCount() (int, error)
	// CurrentMonitorIndex returns the monitor holding the pointer.
	CurrentMonitorIndex() (int, error)
	// FocusedWindowMonitorIndex returns the monitor of the focused window.
	// ok is false when no window has focus.
	FocusedWindowMonitorIndex() (index int, ok bool, err error)
	MonitorGeometry(index int) (Rect, error)
	PointerPosition() (Point, error)
	// MostRecentWindowOn returns the most recently used window on the monitor
	// that is neither minimized nor excluded from task switching.
	MostRecentWindowOn(index int) (id WindowID, ok bool, err error)
	// WindowsByMonitor groups every client window by monitor index in
	// most-recently-used order.
	WindowsByMonitor() (map[int][]Window, error)
}

// Commander is the write side of the display environment.
type Commander interface {
	WarpPointer(p Point) error
	FocusWindow(id WindowID) error
	MoveWindowToMonitor(id WindowID, monitor int) error
}

// Backend abstracts window-system operations.
type Backend interface {
	Topology
	Commander
	Displays() ([]Display, error)
}

// EnvironmentError wraps a failed query or command against the display
// server or a helper process.
type EnvironmentError struct {
	Op  string
	Err error
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EnvironmentError) Unwrap() error {
	return e.Err
}

// envErr wraps err as an EnvironmentError; nil stays nil.
func envErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &EnvironmentError{Op: op, Err: err}
}
