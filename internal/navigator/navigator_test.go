package navigator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/binu/internal/config"
	"github.com/1broseidon/binu/internal/cursor"
	"github.com/1broseidon/binu/internal/platform"
	"github.com/1broseidon/binu/internal/platform/platformtest"
	"github.com/1broseidon/binu/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAnimator struct {
	mu       sync.Mutex
	animated []platform.Point
	warped   []platform.Point
	duration time.Duration
}

func (r *recordingAnimator) Animate(_ context.Context, target platform.Point, d time.Duration) (cursor.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.animated = append(r.animated, target)
	r.duration = d
	return cursor.Session{Target: target, Steps: cursor.Steps, Visited: cursor.Steps + 1}, nil
}

func (r *recordingAnimator) Warp(target platform.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warped = append(r.warped, target)
	return nil
}

type memSizer struct {
	mu   sync.Mutex
	size int
}

func (m *memSizer) CursorSize(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size, nil
}

func (m *memSizer) SetCursorSize(_ context.Context, size int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size = size
	return nil
}

func (m *memSizer) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

func settings(mutate func(*config.Config)) *config.Config {
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func TestResolveTargetNextPrevious(t *testing.T) {
	for total := 1; total <= 6; total++ {
		for ref := 0; ref < total; ref++ {
			next, err := ResolveTarget(Next(), ref, total)
			require.NoError(t, err)
			assert.Equal(t, (ref+1)%total, next, "next total=%d ref=%d", total, ref)

			prev, err := ResolveTarget(Previous(), ref, total)
			require.NoError(t, err)
			assert.Equal(t, (ref-1+total)%total, prev, "prev total=%d ref=%d", total, ref)
		}
	}
}

func TestResolveTargetIndex(t *testing.T) {
	for total := 1; total <= 4; total++ {
		for i := -1; i <= total; i++ {
			got, err := ResolveTarget(Index(i), 0, total)
			if i >= 0 && i < total {
				require.NoError(t, err)
				assert.Equal(t, i, got)
				continue
			}
			var invalid *InvalidMonitorError
			require.ErrorAs(t, err, &invalid, "index %d of %d", i, total)
			assert.Equal(t, i, invalid.Requested)
			assert.Equal(t, total, invalid.Count)
		}
	}
}

func TestResolveTargetNoMonitors(t *testing.T) {
	_, err := ResolveTarget(Next(), 0, 0)
	assert.Error(t, err)
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"next", Next(), false},
		{"NEXT", Next(), false},
		{"prev", Previous(), false},
		{"previous", Previous(), false},
		{"0", Index(0), false},
		{" 3 ", Index(3), false},
		{"-1", Direction{}, true},
		{"left", Direction{}, true},
		{"", Direction{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if tt.wantErr {
			var invalid *InvalidMonitorError
			assert.ErrorAs(t, err, &invalid, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.want.String(), got.String())
	}
}

func TestDirectionText(t *testing.T) {
	var d Direction
	require.NoError(t, d.UnmarshalText([]byte("2")))
	idx, ok := d.MonitorIndex()
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	text, err := Previous().MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "prev", string(text))

	_, ok = Next().MonitorIndex()
	assert.False(t, ok)
}

func TestNavigateFollowsFocusWhenPointerIsNotMoved(t *testing.T) {
	env := platformtest.New(3)
	env.Pointer = env.Monitors[1].Center()
	env.Focused = 2
	env.AddWindow(0, platform.Window{ID: 10})
	env.AddWindow(2, platform.Window{ID: 20})
	anim := &recordingAnimator{}

	nav := New(env, settings(func(c *config.Config) { c.MoveCursor = false }), anim, nil)
	res, err := nav.Navigate(context.Background(), Next())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Reference)
	assert.Equal(t, 0, res.Target)
	assert.Equal(t, platform.WindowID(10), res.Focused)
	assert.False(t, res.PointerMoved)

	focus := env.CallsOf("FocusWindow")
	require.Len(t, focus, 1)
	assert.Equal(t, platform.WindowID(10), focus[0].Window)
	assert.Empty(t, env.CallsOf("WarpPointer"))
	assert.Empty(t, anim.animated)
	assert.Empty(t, anim.warped)
}

func TestNavigateWithoutFocusFallsBackToPointerMonitor(t *testing.T) {
	env := platformtest.New(3)
	env.Pointer = env.Monitors[1].Center()
	anim := &recordingAnimator{}

	nav := New(env, settings(func(c *config.Config) { c.MoveCursor = false }), anim, nil)
	res, err := nav.Navigate(context.Background(), Previous())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Reference)
	assert.Equal(t, 0, res.Target)
}

func TestNavigateWarpsWhenAnimationDisabled(t *testing.T) {
	env := platformtest.New(2)
	env.Focused = 1
	anim := &recordingAnimator{}

	nav := New(env, settings(func(c *config.Config) { c.AnimateCursor = false }), anim, nil)
	res, err := nav.Navigate(context.Background(), Next())
	require.NoError(t, err)

	// Pointer is on monitor 0; focus on 1 is ignored because the pointer moves.
	assert.Equal(t, 0, res.Reference)
	assert.Equal(t, 1, res.Target)
	assert.Equal(t, platform.Point{X: 2880, Y: 540}, res.Center)
	assert.Equal(t, []platform.Point{{X: 2880, Y: 540}}, anim.warped)
	assert.Empty(t, anim.animated)
	assert.True(t, res.PointerMoved)
	assert.Zero(t, res.Focused)
}

func TestNavigateAnimatesWithConfiguredDuration(t *testing.T) {
	env := platformtest.New(3)
	anim := &recordingAnimator{}

	nav := New(env, settings(func(c *config.Config) { c.AnimateCursorDuration = 120 }), anim, nil)
	res, err := nav.Navigate(context.Background(), Index(2))
	require.NoError(t, err)

	assert.True(t, res.Animated)
	assert.Equal(t, []platform.Point{{X: 4800, Y: 540}}, anim.animated)
	assert.Equal(t, 120*time.Millisecond, anim.duration)
}

func TestNavigateInvalidIndexHasNoSideEffects(t *testing.T) {
	env := platformtest.New(2)
	env.AddWindow(1, platform.Window{ID: 7})
	anim := &recordingAnimator{}

	nav := New(env, settings(nil), anim, nil)
	_, err := nav.Navigate(context.Background(), Index(5))

	var invalid *InvalidMonitorError
	require.ErrorAs(t, err, &invalid)
	assert.Empty(t, env.CallsOf("FocusWindow"))
	assert.Empty(t, anim.animated)
	assert.Empty(t, anim.warped)

	// The handler boundary swallows the error.
	nav.HandleShortcut(context.Background(), Index(5))
}

func TestNavigateFocusFailureStillMovesPointer(t *testing.T) {
	env := platformtest.New(2)
	env.AddWindow(1, platform.Window{ID: 7})
	env.Err["FocusWindow"] = errors.New("wm refused")
	anim := &recordingAnimator{}

	nav := New(env, settings(func(c *config.Config) { c.AnimateCursor = false }), anim, nil)
	res, err := nav.Navigate(context.Background(), Next())

	require.Error(t, err)
	var envErr *platform.EnvironmentError
	assert.ErrorAs(t, err, &envErr)
	assert.True(t, res.PointerMoved)
	assert.Len(t, anim.warped, 1)
}

func TestNavigateSkipsIneligibleWindows(t *testing.T) {
	env := platformtest.New(2)
	env.AddWindow(1, platform.Window{ID: 1, Minimized: true})
	env.AddWindow(1, platform.Window{ID: 2, SkipTaskbar: true})
	env.AddWindow(1, platform.Window{ID: 3})
	anim := &recordingAnimator{}

	nav := New(env, settings(nil), anim, nil)
	res, err := nav.Navigate(context.Background(), Next())
	require.NoError(t, err)
	assert.Equal(t, platform.WindowID(3), res.Focused)
}

func TestNavigateNoWindowOnTarget(t *testing.T) {
	env := platformtest.New(2)
	anim := &recordingAnimator{}

	nav := New(env, settings(nil), anim, nil)
	res, err := nav.Navigate(context.Background(), Next())
	require.NoError(t, err)
	assert.Zero(t, res.Focused)
	assert.Empty(t, env.CallsOf("FocusWindow"))
	assert.Len(t, anim.animated, 1)
}

func TestNavigateSingleFlight(t *testing.T) {
	env := platformtest.New(3)
	sizer := &memSizer{size: 24}
	tm := timer.New()
	tm.Enable()
	defer tm.Disable()

	animator := cursor.NewAnimator(env, sizer, cursor.NewSizeState(24), tm, nil)
	animator.SettleDelay = time.Millisecond
	animator.NudgeDelay = time.Millisecond

	nav := New(env, settings(func(c *config.Config) { c.AnimateCursorDuration = 1000 }), animator, nil)

	first := make(chan Result, 1)
	go func() {
		res, _ := nav.Navigate(context.Background(), Index(2))
		first <- res
	}()

	require.Eventually(t, func() bool {
		return len(env.CallsOf("WarpPointer")) > 0
	}, time.Second, 5*time.Millisecond)

	second, err := nav.Navigate(context.Background(), Index(1))
	require.NoError(t, err)

	var res Result
	select {
	case res = <-first:
	default:
		t.Fatal("first navigation should have finished before the second returned")
	}
	assert.True(t, res.Session.Aborted)
	assert.Less(t, res.Session.Visited, cursor.Steps+1)

	assert.False(t, second.Session.Aborted)
	assert.Equal(t, env.Monitors[1].Center(), env.PointerAt())
	assert.Equal(t, 24, sizer.Size())
}
