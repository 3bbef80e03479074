package mcp

import "github.com/1broseidon/binu/internal/ipc"

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors       []ipc.MonitorInfo `json:"monitors"`
	CurrentMonitor int               `json:"current_monitor"`
}

// NavigateMonitorInput is the input for the navigate_monitor tool.
type NavigateMonitorInput struct {
	Direction string `json:"direction" jsonschema:"Where to go: next, prev, or a zero-based monitor index such as 2"`
}

// NavigateMonitorOutput is the output for the navigate_monitor tool.
type NavigateMonitorOutput struct {
	From          int    `json:"from"`
	To            int    `json:"to"`
	FocusedWindow uint32 `json:"focused_window,omitempty"`
	PointerMoved  bool   `json:"pointer_moved"`
	Animated      bool   `json:"animated"`
}

// SwapWindowsInput is the input for the swap_windows tool.
type SwapWindowsInput struct {
	Direction string `json:"direction,omitempty" jsonschema:"Monitor to swap with: next, prev, a zero-based index, or all to swap the two populated monitors (default: all)"`
}

// SwapWindowsOutput is the output for the swap_windows tool.
type SwapWindowsOutput struct {
	Source int    `json:"source"`
	Target int    `json:"target"`
	Moved  int    `json:"moved"`
	Failed int    `json:"failed"`
	NoOp   bool   `json:"no_op"`
	Reason string `json:"reason,omitempty"`
}

// StatusInput is the input for the daemon_status tool.
type StatusInput struct{}
