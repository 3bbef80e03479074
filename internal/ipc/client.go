package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/binu/internal/runtimepath"
)

// ErrDaemonUnavailable is returned when nothing listens on the socket.
var ErrDaemonUnavailable = errors.New("cannot reach binu daemon (is the daemon running?)")

// DaemonError is an ERROR response from the daemon.
type DaemonError struct {
	Command CommandType
	Message string
}

func (e *DaemonError) Error() string {
	return fmt.Sprintf("daemon error: %s", e.Message)
}

// Client talks to the daemon over its unix socket. Every call opens a fresh
// connection carrying one request line and one response line.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient returns a client for the default socket path.
func NewClient() *Client {
	// An unresolvable path surfaces as ErrDaemonUnavailable on first use.
	path, _ := runtimepath.SocketPath()
	return NewClientAt(path)
}

// NewClientAt returns a client for the socket at path.
func NewClientAt(path string) *Client {
	return &Client{socketPath: path, timeout: 5 * time.Second}
}

func (c *Client) roundTrip(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("send %s: %w", req.Command, err)
	}
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("read %s response: %w", req.Command, err)
	}
	if resp.Status == "ERROR" {
		return nil, &DaemonError{Command: req.Command, Message: resp.Error}
	}
	return &resp, nil
}

// call sends cmd with an optional payload and decodes the response data into
// out when out is non-nil.
func (c *Client) call(cmd CommandType, payload, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", cmd, err)
		}
		req.Payload = raw
	}

	resp, err := c.roundTrip(req)
	if err != nil || out == nil {
		return err
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", cmd, err)
	}
	return nil
}

// Reload makes the daemon re-read its configuration file.
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMonitors lists the live monitors merged with their cached identity.
func (c *Client) GetMonitors() (*MonitorsData, error) {
	var monitors MonitorsData
	if err := c.call(CommandGetMonitors, nil, &monitors); err != nil {
		return nil, err
	}
	return &monitors, nil
}

// Navigate asks the daemon to move to the monitor selected by direction
// ("next", "prev" or an index).
func (c *Client) Navigate(direction string) (*NavigateData, error) {
	var data NavigateData
	if err := c.call(CommandNavigate, NavigatePayload{Direction: direction}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Swap asks the daemon to swap windows. direction is "next", "prev", an
// index or "all".
func (c *Client) Swap(direction string) (*SwapData, error) {
	var data SwapData
	if err := c.call(CommandSwap, SwapPayload{Direction: direction}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Ping reports whether a daemon answers on the socket.
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
