package timer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleep_DisabledReturnsImmediately(t *testing.T) {
	tm := New()

	for _, d := range []time.Duration{time.Millisecond, time.Second, time.Hour} {
		start := time.Now()
		require.NoError(t, tm.Sleep(context.Background(), d))
		assert.Less(t, time.Since(start), 50*time.Millisecond, "sleep(%s) blocked on a disabled timer", d)
	}
	assert.Equal(t, 0, tm.Pending())
}

func TestSleep_DisableAfterEnableIsImmediate(t *testing.T) {
	tm := New()
	tm.Enable()
	tm.Disable()

	start := time.Now()
	require.NoError(t, tm.Sleep(context.Background(), 10*time.Second))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestSleep_Waits(t *testing.T) {
	tm := New()
	tm.Enable()
	defer tm.Disable()

	start := time.Now()
	require.NoError(t, tm.Sleep(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, 0, tm.Pending())
}

func TestSleep_DisableWakesSleeper(t *testing.T) {
	tm := New()
	tm.Enable()

	errCh := make(chan error, 1)
	go func() {
		errCh <- tm.Sleep(context.Background(), time.Hour)
	}()

	require.Eventually(t, func() bool { return tm.Pending() == 1 }, time.Second, time.Millisecond)
	tm.Disable()

	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, ErrDisabled), "got %v", err)
	case <-time.After(time.Second):
		t.Fatal("sleeper was not released by Disable")
	}
	assert.Equal(t, 0, tm.Pending())
}

func TestSleep_ContextCancel(t *testing.T) {
	tm := New()
	tm.Enable()
	defer tm.Disable()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- tm.Sleep(ctx, time.Hour)
	}()

	require.Eventually(t, func() bool { return tm.Pending() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sleeper was not released by context cancel")
	}
	assert.Equal(t, 0, tm.Pending())
}

func TestRunLater(t *testing.T) {
	tm := New()
	assert.Nil(t, tm.RunLater(time.Millisecond, func() {}), "disabled timer must not schedule")

	tm.Enable()
	defer tm.Disable()
	assert.Nil(t, tm.RunLater(time.Millisecond, nil), "nil callback must not schedule")

	fired := make(chan struct{})
	h := tm.RunLater(5*time.Millisecond, func() { close(fired) })
	require.NotNil(t, h)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback did not run")
	}
	assert.False(t, h.Cancel(), "cancel after firing reports false")
}

func TestRunLater_Cancel(t *testing.T) {
	tm := New()
	tm.Enable()
	defer tm.Disable()

	var calls atomic.Int32
	h := tm.RunLater(20*time.Millisecond, func() { calls.Add(1) })
	require.NotNil(t, h)
	assert.True(t, h.Cancel())
	assert.Equal(t, 0, tm.Pending())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestDisable_NoCallbackRuns(t *testing.T) {
	tm := New()
	tm.Enable()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		tm.RunLater(20*time.Millisecond, func() { calls.Add(1) })
	}
	require.Equal(t, 5, tm.Pending())

	tm.Disable()
	tm.Disable() // idempotent
	assert.Equal(t, 0, tm.Pending())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestContext_CancelledOnDisable(t *testing.T) {
	tm := New()
	assert.Error(t, tm.Context().Err(), "disabled timer context is already done")

	tm.Enable()
	tm.Enable() // idempotent
	ctx := tm.Context()
	require.NoError(t, ctx.Err())

	tm.Disable()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
