// Package mcp exposes monitor navigation to MCP clients over stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/binu/internal/ipc"
)

const (
	ServerName    = "binu"
	ServerVersion = "0.1.0"
)

// Daemon is the part of the IPC client the tools need.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	Navigate(direction string) (*ipc.NavigateData, error)
	Swap(direction string) (*ipc.SwapData, error)
}

// Server is the MCP server. Every tool forwards to the running daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates a server forwarding to daemon. A nil daemon uses the
// default IPC socket.
func NewServer(daemon Daemon) *Server {
	if daemon == nil {
		daemon = ipc.NewClient()
	}

	s := &Server{daemon: daemon}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List the connected monitors in navigation order with their geometry, connector and, when known, brand, model and serial. Also reports which monitor holds the pointer.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "navigate_monitor",
		Description: "Move to another monitor: focuses its most recent window and moves the pointer to its center, following the user's settings. Direction is next, prev, or a zero-based monitor index. Next and prev wrap around.",
	}, s.handleNavigateMonitor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "swap_windows",
		Description: "Swap every window on the current monitor with every window on the target monitor. Direction all swaps the two monitors that have windows, or moves everything to another monitor when only one has windows.",
	}, s.handleSwapWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "daemon_status",
		Description: "Report whether the binu daemon is running, its active settings and registered shortcuts.",
	}, s.handleStatus)
}
