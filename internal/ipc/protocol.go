package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetMonitors CommandType = "GET_MONITORS"
	CommandNavigate    CommandType = "NAVIGATE"
	CommandSwap        CommandType = "SWAP"
)

// SwapAllDirection selects the simple swap of the two populated monitors.
const SwapAllDirection = "all"

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	UptimeSeconds  int64    `json:"uptime_seconds"`
	DaemonRunning  bool     `json:"daemon_running"`
	MonitorCount   int      `json:"monitor_count"`
	CurrentMonitor int      `json:"current_monitor"`
	ConfigPath     string   `json:"config_path"`
	MoveCursor     bool     `json:"move_cursor"`
	AnimateCursor  bool     `json:"animate_cursor"`
	DurationMillis int64    `json:"animate_cursor_duration_ms"`
	UpdateFocus    bool     `json:"update_focus"`
	Shortcuts      []string `json:"shortcuts"`
}

// MonitorInfo represents information about a single monitor. The identity
// fields come from the monitor-config cache and may be empty.
type MonitorInfo struct {
	Index       int    `json:"index"`
	Connector   string `json:"connector"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Brand       string `json:"brand,omitempty"`
	Model       string `json:"model,omitempty"`
	Serial      string `json:"serial,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	IsBuiltIn   bool   `json:"is_built_in"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// NavigatePayload is the payload of NAVIGATE. Direction is "next", "prev"
// or a monitor index.
type NavigatePayload struct {
	Direction string `json:"direction"`
}

// NavigateData is returned by NAVIGATE.
type NavigateData struct {
	Reference     int    `json:"reference"`
	Target        int    `json:"target"`
	FocusedWindow uint32 `json:"focused_window,omitempty"`
	PointerMoved  bool   `json:"pointer_moved"`
	Animated      bool   `json:"animated"`
	Aborted       bool   `json:"aborted,omitempty"`
}

// SwapPayload is the payload of SWAP. Direction is "next", "prev", a monitor
// index or "all".
type SwapPayload struct {
	Direction string `json:"direction"`
}

// SwapData is returned by SWAP.
type SwapData struct {
	Source int    `json:"source"`
	Target int    `json:"target"`
	Moved  int    `json:"moved"`
	Failed int    `json:"failed"`
	NoOp   bool   `json:"no_op"`
	Reason string `json:"reason,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
