package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/binu/internal/ipc"
	"github.com/1broseidon/binu/internal/navigator"
)

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.daemon.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}

	out := ListMonitorsOutput{Monitors: data.Monitors}
	if out.Monitors == nil {
		out.Monitors = []ipc.MonitorInfo{}
	}
	if status, err := s.daemon.GetStatus(); err == nil {
		out.CurrentMonitor = status.CurrentMonitor
	}
	return nil, out, nil
}

func (s *Server) handleNavigateMonitor(_ context.Context, _ *mcpsdk.CallToolRequest, args NavigateMonitorInput) (*mcpsdk.CallToolResult, NavigateMonitorOutput, error) {
	direction := strings.TrimSpace(args.Direction)
	if _, err := navigator.ParseDirection(direction); err != nil {
		return nil, NavigateMonitorOutput{}, fmt.Errorf("direction must be next, prev or a monitor index: %w", err)
	}

	data, err := s.daemon.Navigate(direction)
	if err != nil {
		return nil, NavigateMonitorOutput{}, err
	}
	return nil, NavigateMonitorOutput{
		From:          data.Reference,
		To:            data.Target,
		FocusedWindow: data.FocusedWindow,
		PointerMoved:  data.PointerMoved,
		Animated:      data.Animated,
	}, nil
}

func (s *Server) handleSwapWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args SwapWindowsInput) (*mcpsdk.CallToolResult, SwapWindowsOutput, error) {
	direction := strings.TrimSpace(args.Direction)
	if direction == "" {
		direction = ipc.SwapAllDirection
	}
	if !strings.EqualFold(direction, ipc.SwapAllDirection) {
		if _, err := navigator.ParseDirection(direction); err != nil {
			return nil, SwapWindowsOutput{}, fmt.Errorf("direction must be next, prev, all or a monitor index: %w", err)
		}
	}

	data, err := s.daemon.Swap(direction)
	if err != nil {
		return nil, SwapWindowsOutput{}, err
	}
	return nil, SwapWindowsOutput{
		Source: data.Source,
		Target: data.Target,
		Moved:  data.Moved,
		Failed: data.Failed,
		NoOp:   data.NoOp,
		Reason: data.Reason,
	}, nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, ipc.StatusData, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, ipc.StatusData{}, err
	}
	return nil, *status, nil
}
