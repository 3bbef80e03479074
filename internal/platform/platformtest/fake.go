// Package platformtest provides an in-memory display environment for tests.
package platformtest

import (
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/binu/internal/platform"
)

// Call records one command issued against the fake.
type Call struct {
	Op      string
	Point   platform.Point
	Window  platform.WindowID
	Monitor int
}

// Env is a scriptable platform.Backend. Monitors are laid out by the caller;
// windows carry their monitor index directly.
type Env struct {
	mu sync.Mutex

	Monitors []platform.Rect
	Pointer  platform.Point
	// Focused is the monitor of the focused window, or -1 for none.
	Focused int
	// Windows per monitor in most-recently-used order.
	Windows map[int][]platform.Window

	// Err, when set for an op name, is returned by that op.
	Err map[string]error

	calls []Call
}

var _ platform.Backend = (*Env)(nil)

// New returns an environment with side-by-side 1920x1080 monitors, the
// pointer at the center of monitor 0 and nothing focused.
func New(monitors int) *Env {
	e := &Env{
		Focused: -1,
		Windows: make(map[int][]platform.Window),
		Err:     make(map[string]error),
	}
	for i := 0; i < monitors; i++ {
		e.Monitors = append(e.Monitors, platform.Rect{X: i * 1920, Y: 0, Width: 1920, Height: 1080})
	}
	if monitors > 0 {
		e.Pointer = e.Monitors[0].Center()
	}
	return e
}

// AddWindow places a window at the bottom of the monitor's recency list.
func (e *Env) AddWindow(monitor int, w platform.Window) {
	e.mu.Lock()
	defer e.mu.Unlock()
	w.Monitor = monitor
	if w.Bounds == (platform.Rect{}) && monitor < len(e.Monitors) {
		m := e.Monitors[monitor]
		w.Bounds = platform.Rect{X: m.X + 100, Y: m.Y + 100, Width: 800, Height: 600}
	}
	e.Windows[monitor] = append(e.Windows[monitor], w)
}

// Calls returns a copy of the recorded commands.
func (e *Env) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// CallsOf returns the recorded commands with the given op name.
func (e *Env) CallsOf(op string) []Call {
	var out []Call
	for _, c := range e.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// PointerAt returns the current pointer position.
func (e *Env) PointerAt() platform.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Pointer
}

// WindowMonitor returns the monitor a window currently lives on, or -1.
func (e *Env) WindowMonitor(id platform.WindowID) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	for idx, list := range e.Windows {
		for _, w := range list {
			if w.ID == id {
				return idx
			}
		}
	}
	return -1
}

func (e *Env) fail(op string) error {
	if err, ok := e.Err[op]; ok && err != nil {
		return &platform.EnvironmentError{Op: op, Err: err}
	}
	return nil
}

func (e *Env) MonitorCount() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.fail("MonitorCount"); err != nil {
		return 0, err
	}
	return len(e.Monitors), nil
}

func (e *Env) CurrentMonitorIndex() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.fail("CurrentMonitorIndex"); err != nil {
		return 0, err
	}
	for i, m := range e.Monitors {
		if m.Contains(e.Pointer) {
			return i, nil
		}
	}
	return 0, nil
}

func (e *Env) FocusedWindowMonitorIndex() (int, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.fail("FocusedWindowMonitorIndex"); err != nil {
		return 0, false, err
	}
	if e.Focused < 0 {
		return 0, false, nil
	}
	return e.Focused, true, nil
}

func (e *Env) MonitorGeometry(index int) (platform.Rect, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.fail("MonitorGeometry"); err != nil {
		return platform.Rect{}, err
	}
	if index < 0 || index >= len(e.Monitors) {
		return platform.Rect{}, fmt.Errorf("monitor %d out of range", index)
	}
	return e.Monitors[index], nil
}

func (e *Env) PointerPosition() (platform.Point, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.fail("PointerPosition"); err != nil {
		return platform.Point{}, err
	}
	return e.Pointer, nil
}

func (e *Env) MostRecentWindowOn(index int) (platform.WindowID, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.fail("MostRecentWindowOn"); err != nil {
		return 0, false, err
	}
	return platform.MostRecent(e.Windows[index])
}

func (e *Env) WindowsByMonitor() (map[int][]platform.Window, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.fail("WindowsByMonitor"); err != nil {
		return nil, err
	}
	e.calls = append(e.calls, Call{Op: "WindowsByMonitor"})
	out := make(map[int][]platform.Window, len(e.Windows))
	for idx, list := range e.Windows {
		if len(list) == 0 {
			continue
		}
		out[idx] = append([]platform.Window(nil), list...)
	}
	return out, nil
}

func (e *Env) Displays() ([]platform.Display, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]platform.Display, 0, len(e.Monitors))
	for i, m := range e.Monitors {
		out = append(out, platform.Display{Index: i, Connector: fmt.Sprintf("DP-%d", i+1), Bounds: m})
	}
	return out, nil
}

func (e *Env) WarpPointer(p platform.Point) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.fail("WarpPointer"); err != nil {
		return err
	}
	e.Pointer = p
	e.calls = append(e.calls, Call{Op: "WarpPointer", Point: p})
	return nil
}

func (e *Env) FocusWindow(id platform.WindowID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.fail("FocusWindow"); err != nil {
		return err
	}
	e.calls = append(e.calls, Call{Op: "FocusWindow", Window: id})
	return nil
}

// MoveWindowToMonitor appends the window to the target monitor's list. The
// per-window error key "MoveWindowToMonitor:<id>" fails only that window.
func (e *Env) MoveWindowToMonitor(id platform.WindowID, monitor int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.fail("MoveWindowToMonitor"); err != nil {
		return err
	}
	if err := e.fail(fmt.Sprintf("MoveWindowToMonitor:%d", id)); err != nil {
		return err
	}
	if monitor < 0 || monitor >= len(e.Monitors) {
		return fmt.Errorf("monitor %d out of range", monitor)
	}

	var moved *platform.Window
	for idx, list := range e.Windows {
		for i, w := range list {
			if w.ID != id {
				continue
			}
			cp := w
			moved = &cp
			e.Windows[idx] = append(list[:i:i], list[i+1:]...)
			break
		}
		if moved != nil {
			from := moved.Monitor
			moved.Bounds = platform.Relocate(moved.Bounds, e.Monitors[from], e.Monitors[monitor])
			break
		}
	}
	if moved == nil {
		return fmt.Errorf("window %d not found", id)
	}
	moved.Monitor = monitor
	e.Windows[monitor] = append(e.Windows[monitor], *moved)
	e.calls = append(e.calls, Call{Op: "MoveWindowToMonitor", Window: id, Monitor: monitor})
	return nil
}

// Layout returns window IDs per monitor, sorted, for assertions.
func (e *Env) Layout() map[int][]platform.WindowID {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[int][]platform.WindowID)
	for idx, list := range e.Windows {
		if len(list) == 0 {
			continue
		}
		ids := make([]platform.WindowID, 0, len(list))
		for _, w := range list {
			ids = append(ids, w.ID)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out[idx] = ids
	}
	return out
}
