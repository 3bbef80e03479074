package hotkeys

import (
	"context"
	"sync"
	"testing"

	"github.com/1broseidon/binu/internal/config"
	"github.com/1broseidon/binu/internal/navigator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShortcut(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		dir    navigator.Direction
	}{
		{"monitor-next", ActionNavigate, navigator.Next()},
		{"monitor-prev", ActionNavigate, navigator.Previous()},
		{"monitor-0", ActionNavigate, navigator.Index(0)},
		{"monitor-11", ActionNavigate, navigator.Index(11)},
		{"swap-next", ActionSwap, navigator.Next()},
		{"swap-prev", ActionSwap, navigator.Previous()},
		{"swap-2", ActionSwap, navigator.Index(2)},
		{"swap-all", ActionSwapAll, navigator.Direction{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseShortcut(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, s.Name)
			assert.Equal(t, tt.action, s.Action)
			assert.Equal(t, tt.dir, s.Direction)
		})
	}
}

func TestParseShortcutRejectsUnknown(t *testing.T) {
	for _, name := range []string{"", "cursor-hotkey", "monitor-", "monitor--1", "swap-up", "tile"} {
		_, err := ParseShortcut(name)
		assert.Error(t, err, name)
	}
}

func TestDefaultKeybindingsParse(t *testing.T) {
	for _, kb := range config.DefaultConfig().ActiveKeybindings() {
		_, err := ParseShortcut(kb.Name)
		assert.NoError(t, err, kb.Name)
	}
}

type recorder struct {
	mu    sync.Mutex
	calls []string
	panic bool
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) HandleShortcut(_ context.Context, dir navigator.Direction) {
	if r.panic {
		panic("boom")
	}
	r.add("navigate " + dir.String())
}

func (r *recorder) HandleSwapWith(_ context.Context, dir navigator.Direction) {
	r.add("swap " + dir.String())
}

func (r *recorder) HandleSwapAll(context.Context) {
	r.add("swap-all")
}

func TestDispatcherRoutesActions(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec, rec, nil)

	for _, name := range []string{"monitor-next", "monitor-1", "swap-prev", "swap-all"} {
		s, err := ParseShortcut(name)
		require.NoError(t, err)
		d.Run(context.Background(), s)
	}

	assert.Equal(t, []string{"navigate next", "navigate 1", "swap prev", "swap-all"}, rec.calls)
}

func TestDispatcherDispatchIsAsyncAndRecovers(t *testing.T) {
	rec := &recorder{panic: true}
	d := NewDispatcher(rec, rec, nil)

	s, err := ParseShortcut("monitor-next")
	require.NoError(t, err)
	d.Dispatch(context.Background(), s)

	s, err = ParseShortcut("swap-all")
	require.NoError(t, err)
	d.Dispatch(context.Background(), s)
	d.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"swap-all"}, rec.calls)
}
