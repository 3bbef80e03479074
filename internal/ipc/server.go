package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/binu/internal/config"
	"github.com/1broseidon/binu/internal/monitorwatch"
	"github.com/1broseidon/binu/internal/navigator"
	"github.com/1broseidon/binu/internal/platform"
	"github.com/1broseidon/binu/internal/runtimepath"
	"github.com/1broseidon/binu/internal/swapper"
)

// Navigator performs NAVIGATE requests.
type Navigator interface {
	Navigate(ctx context.Context, dir navigator.Direction) (navigator.Result, error)
}

// Swapper performs SWAP requests.
type Swapper interface {
	SwapWith(ctx context.Context, dir navigator.Direction) (swapper.Result, error)
	SwapAll(ctx context.Context) (swapper.Result, error)
}

// Settings is the live settings store.
type Settings interface {
	Current() *config.Config
	Reload() error
	Path() string
}

// DisplaySource lists the active monitors.
type DisplaySource interface {
	Displays() ([]platform.Display, error)
	CurrentMonitorIndex() (int, error)
}

// MonitorEntries provides the monitor-config cache entries.
type MonitorEntries interface {
	Entries() []monitorwatch.Entry
}

// Options wires a server to the daemon's components. Monitors and Shortcuts
// are optional.
type Options struct {
	SocketPath string
	Navigator  Navigator
	Swapper    Swapper
	Settings   Settings
	Displays   DisplaySource
	Monitors   MonitorEntries
	Shortcuts  func() []string
	Logger     *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	listener   net.Listener
	opts       Options
	logger     *slog.Logger
	startTime  time.Time

	ctx          context.Context
	shuttingDown bool
	shutdownMu   sync.Mutex
	active       map[net.Conn]struct{}
	conns        sync.WaitGroup
}

// requestTimeout bounds how long a client may take to send its request line.
const requestTimeout = 5 * time.Second

// NewServer creates a new IPC server
func NewServer(opts Options) (*Server, error) {
	socketPath := opts.SocketPath
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		opts:       opts,
		logger:     logger.With("component", "ipc"),
		startTime:  time.Now(),
		ctx:        context.Background(),
		active:     make(map[net.Conn]struct{}),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections. Requests run under ctx.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener
	s.ctx = ctx

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return
		}
		go func() {
			defer s.untrack(conn)
			s.handleConnection(conn)
		}()
	}
}

// track registers an accepted connection. It reports false once Stop has
// begun.
func (s *Server) track(conn net.Conn) bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	if s.shuttingDown {
		return false
	}
	s.active[conn] = struct{}{}
	s.conns.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.shutdownMu.Lock()
	delete(s.active, conn)
	s.shutdownMu.Unlock()
	s.conns.Done()
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(requestTimeout))
	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		if !errors.Is(err, net.ErrClosed) {
			s.logger.Warn("IPC read error", "error", err)
		}
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)

	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandNavigate:
		return s.handleNavigate(req.Payload)
	case CommandSwap:
		return s.handleSwap(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload re-reads the settings file. Change callbacks registered on
// the store rebind shortcuts.
func (s *Server) handleReload() *Response {
	if s.opts.Settings == nil {
		return NewErrorResponse("settings are not available")
	}
	if err := s.opts.Settings.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	s.logger.Info("config reloaded over IPC")
	return okResponse(nil)
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
		Shortcuts:     []string{},
	}

	if s.opts.Displays != nil {
		if displays, err := s.opts.Displays.Displays(); err == nil {
			status.MonitorCount = len(displays)
		}
		if idx, err := s.opts.Displays.CurrentMonitorIndex(); err == nil {
			status.CurrentMonitor = idx
		}
	}
	if s.opts.Settings != nil {
		cfg := s.opts.Settings.Current()
		status.ConfigPath = s.opts.Settings.Path()
		status.MoveCursor = cfg.MoveCursorEnabled()
		status.AnimateCursor = cfg.AnimateCursorEnabled()
		status.DurationMillis = cfg.AnimationDuration().Milliseconds()
		status.UpdateFocus = cfg.UpdateFocusEnabled()
	}
	if s.opts.Shortcuts != nil {
		if names := s.opts.Shortcuts(); names != nil {
			status.Shortcuts = names
		}
	}

	return okResponse(status)
}

// handleGetMonitors returns live geometry merged with the cached identity of
// each monitor.
func (s *Server) handleGetMonitors() *Response {
	if s.opts.Displays == nil {
		return NewErrorResponse("display backend is not available")
	}
	displays, err := s.opts.Displays.Displays()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}

	identity := make(map[string]monitorwatch.Entry)
	if s.opts.Monitors != nil {
		for _, e := range s.opts.Monitors.Entries() {
			identity[e.Connector] = e
		}
	}

	infos := make([]MonitorInfo, len(displays))
	for i, d := range displays {
		info := MonitorInfo{
			Index:     d.Index,
			Connector: d.Connector,
			X:         d.Bounds.X,
			Y:         d.Bounds.Y,
			Width:     d.Bounds.Width,
			Height:    d.Bounds.Height,
			IsBuiltIn: monitorwatch.IsBuiltIn(d.Connector),
		}
		if e, ok := identity[d.Connector]; ok {
			info.Brand = e.Brand
			info.Model = e.Model
			info.Serial = e.Serial
			info.DisplayName = e.DisplayName
		}
		infos[i] = info
	}

	return okResponse(MonitorsData{Monitors: infos})
}

func (s *Server) handleNavigate(payload json.RawMessage) *Response {
	if s.opts.Navigator == nil {
		return NewErrorResponse("navigator is not available")
	}
	var req NavigatePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid navigate payload: %v", err))
	}
	dir, err := navigator.ParseDirection(req.Direction)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	res, err := s.opts.Navigator.Navigate(s.ctx, dir)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to navigate: %v", err))
	}

	return okResponse(NavigateData{
		Reference:     res.Reference,
		Target:        res.Target,
		FocusedWindow: uint32(res.Focused),
		PointerMoved:  res.PointerMoved,
		Animated:      res.Animated,
		Aborted:       res.Session.Aborted,
	})
}

func (s *Server) handleSwap(payload json.RawMessage) *Response {
	if s.opts.Swapper == nil {
		return NewErrorResponse("swapper is not available")
	}
	var req SwapPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid swap payload: %v", err))
	}

	var (
		res swapper.Result
		err error
	)
	if strings.EqualFold(req.Direction, SwapAllDirection) {
		res, err = s.opts.Swapper.SwapAll(s.ctx)
	} else {
		dir, perr := navigator.ParseDirection(req.Direction)
		if perr != nil {
			return NewErrorResponse(perr.Error())
		}
		res, err = s.opts.Swapper.SwapWith(s.ctx, dir)
	}
	// Failed window moves are reported in the data, not as a failed request.
	if err != nil && len(res.Failed) == 0 {
		return NewErrorResponse(fmt.Sprintf("Failed to swap: %v", err))
	}

	return okResponse(SwapData{
		Source: res.Source,
		Target: res.Target,
		Moved:  len(res.Moves),
		Failed: len(res.Failed),
		NoOp:   res.NoOp,
		Reason: res.Reason,
	})
}

func okResponse(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop closes the listener and every open connection, then waits for their
// handlers to return.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	for conn := range s.active {
		conn.Close()
	}
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
