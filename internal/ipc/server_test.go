package ipc

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/binu/internal/config"
	"github.com/1broseidon/binu/internal/monitorwatch"
	"github.com/1broseidon/binu/internal/navigator"
	"github.com/1broseidon/binu/internal/platform"
	"github.com/1broseidon/binu/internal/platform/platformtest"
	"github.com/1broseidon/binu/internal/swapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNavigator struct {
	got []navigator.Direction
}

func (f *fakeNavigator) Navigate(_ context.Context, dir navigator.Direction) (navigator.Result, error) {
	f.got = append(f.got, dir)
	target, _ := dir.MonitorIndex()
	if target > 2 {
		return navigator.Result{}, &navigator.InvalidMonitorError{Requested: target, Count: 3}
	}
	return navigator.Result{Reference: 0, Target: target, Focused: 42, PointerMoved: true}, nil
}

type staticEntries []monitorwatch.Entry

func (s staticEntries) Entries() []monitorwatch.Entry { return s }

type fixture struct {
	client *Client
	env    *platformtest.Env
	nav    *fakeNavigator
	store  *config.Store
	cfg    string
}

func startServer(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	store, err := config.NewStore(cfgPath, nil)
	require.NoError(t, err)

	env := platformtest.New(3)
	nav := &fakeNavigator{}

	srv, err := NewServer(Options{
		SocketPath: filepath.Join(dir, "binu.sock"),
		Navigator:  nav,
		Swapper:    swapper.New(env, store, nil),
		Settings:   store,
		Displays:   env,
		Monitors: staticEntries{
			{Index: 1, Connector: "DP-2", Brand: "DEL", Model: "U2720Q", DisplayName: "DEL U2720Q"},
		},
		Shortcuts: func() []string { return []string{"monitor-next"} },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.Start(ctx))
	t.Cleanup(func() {
		cancel()
		srv.Stop()
	})

	return &fixture{
		client: NewClientAt(srv.SocketPath()),
		env:    env,
		nav:    nav,
		store:  store,
		cfg:    cfgPath,
	}
}

func TestServerGetStatus(t *testing.T) {
	f := startServer(t)

	status, err := f.client.GetStatus()
	require.NoError(t, err)

	assert.True(t, status.DaemonRunning)
	assert.Equal(t, 3, status.MonitorCount)
	assert.Equal(t, 0, status.CurrentMonitor)
	assert.Equal(t, f.cfg, status.ConfigPath)
	assert.True(t, status.MoveCursor)
	assert.Equal(t, int64(config.DefaultAnimationDurationMs), status.DurationMillis)
	assert.Equal(t, []string{"monitor-next"}, status.Shortcuts)
	assert.NoError(t, f.client.Ping())
}

func TestServerGetMonitorsMergesCache(t *testing.T) {
	f := startServer(t)

	data, err := f.client.GetMonitors()
	require.NoError(t, err)
	require.Len(t, data.Monitors, 3)

	assert.Equal(t, "DP-1", data.Monitors[0].Connector)
	assert.Empty(t, data.Monitors[0].DisplayName)
	assert.Equal(t, "DEL U2720Q", data.Monitors[1].DisplayName)
	assert.Equal(t, 1920, data.Monitors[1].X)
	assert.Equal(t, 1080, data.Monitors[1].Height)
}

func TestServerNavigate(t *testing.T) {
	f := startServer(t)

	data, err := f.client.Navigate("2")
	require.NoError(t, err)
	assert.Equal(t, 2, data.Target)
	assert.Equal(t, uint32(42), data.FocusedWindow)
	assert.True(t, data.PointerMoved)

	_, err = f.client.Navigate("next")
	require.NoError(t, err)
	assert.Equal(t, []navigator.Direction{navigator.Index(2), navigator.Next()}, f.nav.got)
}

func TestServerNavigateErrors(t *testing.T) {
	f := startServer(t)

	_, err := f.client.Navigate("sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")

	_, err = f.client.Navigate("7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to navigate")
}

func TestServerSwap(t *testing.T) {
	f := startServer(t)
	f.env.AddWindow(0, platform.Window{ID: 1})
	f.env.AddWindow(2, platform.Window{ID: 2})

	data, err := f.client.Swap("all")
	require.NoError(t, err)
	assert.Equal(t, 0, data.Source)
	assert.Equal(t, 2, data.Target)
	assert.Equal(t, 2, data.Moved)

	data, err = f.client.Swap("0")
	require.NoError(t, err)
	assert.True(t, data.NoOp)

	_, err = f.client.Swap("up")
	assert.Error(t, err)
}

func TestServerReload(t *testing.T) {
	f := startServer(t)

	require.NoError(t, os.WriteFile(f.cfg, []byte("move-cursor: false\n"), 0o644))
	require.NoError(t, f.client.Reload())
	assert.False(t, f.store.MoveCursorEnabled())

	require.NoError(t, os.WriteFile(f.cfg, []byte("move-cursor: [\n"), 0o644))
	assert.Error(t, f.client.Reload())
	assert.False(t, f.store.MoveCursorEnabled())
}

func TestServerRejectsUnknownCommand(t *testing.T) {
	f := startServer(t)

	_, err := f.client.roundTrip(&Request{Command: "TILE"})
	var derr *DaemonError
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, derr.Message, "Unknown command")
}

func TestClientWithoutDaemon(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	err := c.Ping()
	require.ErrorIs(t, err, ErrDaemonUnavailable)
	assert.Contains(t, err.Error(), "is the daemon running?")
}

func TestServerSwapReportsFailedMoves(t *testing.T) {
	f := startServer(t)
	f.env.AddWindow(0, platform.Window{ID: 1})
	f.env.AddWindow(0, platform.Window{ID: 2})
	f.env.AddWindow(1, platform.Window{ID: 3})
	f.env.Err["MoveWindowToMonitor:2"] = errors.New("window gone")

	data, err := f.client.Swap("next")
	require.NoError(t, err)
	assert.Equal(t, 2, data.Moved)
	assert.Equal(t, 1, data.Failed)
}

func TestServeReturnsWithIdleClientConnected(t *testing.T) {
	dir := t.TempDir()
	store, err := config.NewStore(filepath.Join(dir, "config.yaml"), nil)
	require.NoError(t, err)
	env := platformtest.New(2)

	srv, err := NewServer(Options{
		SocketPath: filepath.Join(dir, "binu.sock"),
		Navigator:  &fakeNavigator{},
		Swapper:    swapper.New(env, store, nil),
		Settings:   store,
		Displays:   env,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	var conn net.Conn
	require.Eventually(t, func() bool {
		conn, err = net.Dial("unix", srv.SocketPath())
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	defer conn.Close()

	// Let the server accept and start reading before shutting down.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve still running after cancel with an idle client")
	}

	_, err = os.Stat(srv.SocketPath())
	assert.True(t, os.IsNotExist(err), "socket should be removed")
}
