package swapper

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/binu/internal/config"
	"github.com/1broseidon/binu/internal/navigator"
	"github.com/1broseidon/binu/internal/platform"
	"github.com/1broseidon/binu/internal/platform/platformtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(v ...platform.WindowID) []platform.WindowID { return v }

func TestSwapWithExchangesWindows(t *testing.T) {
	env := platformtest.New(3)
	env.AddWindow(0, platform.Window{ID: 1})
	env.AddWindow(0, platform.Window{ID: 2})
	env.AddWindow(1, platform.Window{ID: 3})
	env.AddWindow(2, platform.Window{ID: 4})

	s := New(env, config.DefaultConfig(), nil)
	res, err := s.SwapWith(context.Background(), navigator.Next())
	require.NoError(t, err)

	assert.Equal(t, 0, res.Source)
	assert.Equal(t, 1, res.Target)
	assert.Len(t, res.Moves, 3)
	assert.Equal(t, map[int][]platform.WindowID{
		0: ids(3),
		1: ids(1, 2),
		2: ids(4),
	}, env.Layout())
	// One topology query, not one per window.
	assert.Len(t, env.CallsOf("WindowsByMonitor"), 1)

	focus := env.CallsOf("FocusWindow")
	require.Len(t, focus, 1)
	assert.Equal(t, platform.WindowID(3), focus[0].Window)
}

func TestSwapWithSameMonitorIsNoOp(t *testing.T) {
	env := platformtest.New(2)
	env.AddWindow(0, platform.Window{ID: 1})
	env.AddWindow(1, platform.Window{ID: 2})

	s := New(env, config.DefaultConfig(), nil)
	res, err := s.SwapWith(context.Background(), navigator.Index(0))
	require.NoError(t, err)

	assert.True(t, res.NoOp)
	assert.Empty(t, env.CallsOf("MoveWindowToMonitor"))
	assert.Empty(t, env.CallsOf("FocusWindow"))
}

func TestSwapWithSingleMonitorIsNoOp(t *testing.T) {
	env := platformtest.New(1)
	env.AddWindow(0, platform.Window{ID: 1})

	s := New(env, config.DefaultConfig(), nil)
	for _, dir := range []navigator.Direction{navigator.Next(), navigator.Previous(), navigator.Index(0)} {
		res, err := s.SwapWith(context.Background(), dir)
		require.NoError(t, err)
		assert.True(t, res.NoOp, dir.String())
	}
	assert.Empty(t, env.CallsOf("MoveWindowToMonitor"))
}

func TestSwapWithUsesFocusedMonitorWhenPointerIsNotMoved(t *testing.T) {
	env := platformtest.New(3)
	env.Focused = 2
	env.AddWindow(0, platform.Window{ID: 1})
	env.AddWindow(2, platform.Window{ID: 2})

	cfg := config.DefaultConfig()
	cfg.MoveCursor = false
	cfg.UpdateFocus = false

	s := New(env, cfg, nil)
	res, err := s.SwapWith(context.Background(), navigator.Next())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Source)
	assert.Equal(t, 0, res.Target)
	assert.Equal(t, map[int][]platform.WindowID{0: ids(2), 2: ids(1)}, env.Layout())
	assert.Empty(t, env.CallsOf("FocusWindow"))
}

func TestSwapWithInvalidIndex(t *testing.T) {
	env := platformtest.New(2)
	env.AddWindow(0, platform.Window{ID: 1})

	s := New(env, config.DefaultConfig(), nil)
	_, err := s.SwapWith(context.Background(), navigator.Index(4))

	var invalid *navigator.InvalidMonitorError
	require.ErrorAs(t, err, &invalid)
	assert.Empty(t, env.CallsOf("MoveWindowToMonitor"))

	s.HandleSwapWith(context.Background(), navigator.Index(4))
}

func TestSwapWithContinuesAfterFailedMove(t *testing.T) {
	env := platformtest.New(2)
	env.AddWindow(0, platform.Window{ID: 1})
	env.AddWindow(0, platform.Window{ID: 2})
	env.AddWindow(1, platform.Window{ID: 3})
	env.Err["MoveWindowToMonitor:1"] = errors.New("no geometry")

	s := New(env, config.DefaultConfig(), nil)
	res, err := s.SwapWith(context.Background(), navigator.Next())
	require.Error(t, err)

	require.Len(t, res.Failed, 1)
	assert.Equal(t, platform.WindowID(1), res.Failed[0].Window)
	assert.Len(t, res.Moves, 2)
	assert.Equal(t, map[int][]platform.WindowID{0: ids(1, 3), 1: ids(2)}, env.Layout())
}

func TestSwapAllTwoPopulatedMonitors(t *testing.T) {
	env := platformtest.New(3)
	env.AddWindow(0, platform.Window{ID: 1})
	env.AddWindow(0, platform.Window{ID: 2})
	env.AddWindow(2, platform.Window{ID: 3})

	s := New(env, config.DefaultConfig(), nil)
	res, err := s.SwapAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, res.Source)
	assert.Equal(t, 2, res.Target)
	assert.Equal(t, map[int][]platform.WindowID{0: ids(3), 2: ids(1, 2)}, env.Layout())
	for _, move := range env.CallsOf("MoveWindowToMonitor") {
		assert.NotEqual(t, 1, move.Monitor, "monitor 1 must stay untouched")
	}
}

func TestSwapAllSinglePopulatedMonitor(t *testing.T) {
	tests := []struct {
		name   string
		source int
		want   int
	}{
		{"from first", 0, 1},
		{"from middle", 1, 0},
		{"from last", 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := platformtest.New(3)
			env.AddWindow(tt.source, platform.Window{ID: 1})
			env.AddWindow(tt.source, platform.Window{ID: 2})

			s := New(env, config.DefaultConfig(), nil)
			res, err := s.SwapAll(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.want, res.Target)
			assert.Equal(t, map[int][]platform.WindowID{tt.want: ids(1, 2)}, env.Layout())
		})
	}
}

func TestSwapAllNoOp(t *testing.T) {
	tests := []struct {
		name     string
		monitors int
		windows  map[int]platform.WindowID
	}{
		{"no windows", 2, nil},
		{"single monitor", 1, map[int]platform.WindowID{0: 1}},
		{"three populated", 3, map[int]platform.WindowID{0: 1, 1: 2, 2: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := platformtest.New(tt.monitors)
			for mon, id := range tt.windows {
				env.AddWindow(mon, platform.Window{ID: id})
			}

			s := New(env, config.DefaultConfig(), nil)
			res, err := s.SwapAll(context.Background())
			require.NoError(t, err)
			assert.True(t, res.NoOp)
			assert.NotEmpty(t, res.Reason)
			assert.Empty(t, env.CallsOf("MoveWindowToMonitor"))

			s.HandleSwapAll(context.Background())
		})
	}
}
