// Package timer is the single place where binu suspends execution.
//
// Every delay in the navigation engine goes through a Timer so the whole
// daemon can be stopped at once: Disable cancels every outstanding wait and
// every scheduled callback before returning.
package timer

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrDisabled is returned by Sleep when the timer is disabled while waiting.
var ErrDisabled = errors.New("timer disabled")

// Timer tracks pending delays and can cancel all of them atomically.
type Timer struct {
	mu      sync.Mutex
	enabled bool
	ctx     context.Context
	cancel  context.CancelFunc
	nextID  uint64
	pending map[uint64]*pendingEntry
}

type pendingEntry struct {
	timer *time.Timer
	done  chan struct{} // closed on Disable; nil for RunLater entries
}

// Handle identifies a callback scheduled with RunLater.
type Handle struct {
	t  *Timer
	id uint64
}

// New returns a disabled Timer.
func New() *Timer {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return &Timer{
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[uint64]*pendingEntry),
	}
}

// Enable turns the timer on. Calling it while enabled does nothing.
func (t *Timer) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.enabled {
		return
	}
	t.enabled = true
	t.ctx, t.cancel = context.WithCancel(context.Background())
}

// Disable turns the timer off and cancels every pending delay without running
// its continuation. It is synchronous and idempotent.
func (t *Timer) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = false
	t.cancel()
	for id, entry := range t.pending {
		entry.timer.Stop()
		if entry.done != nil {
			close(entry.done)
		}
		delete(t.pending, id)
	}
}

// Enabled reports whether the timer currently accepts delays.
func (t *Timer) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Context returns a context that is cancelled when the timer is disabled.
// Animation sessions derive their own cancellation from it.
func (t *Timer) Context() context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ctx
}

// Pending returns the number of outstanding delays.
func (t *Timer) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Sleep suspends the caller for d. A disabled timer returns immediately with
// a nil error so a stopped daemon never blocks. If the timer is disabled
// during the wait Sleep returns ErrDisabled; if ctx ends first it returns
// ctx.Err().
func (t *Timer) Sleep(ctx context.Context, d time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	if !t.enabled {
		t.mu.Unlock()
		return nil
	}
	id := t.nextID
	t.nextID++
	fired := make(chan struct{})
	entry := &pendingEntry{done: make(chan struct{})}
	entry.timer = time.AfterFunc(d, func() {
		if t.remove(id) {
			close(fired)
		}
	})
	t.pending[id] = entry
	t.mu.Unlock()

	select {
	case <-fired:
		return nil
	case <-entry.done:
		return ErrDisabled
	case <-ctx.Done():
		t.mu.Lock()
		if _, ok := t.pending[id]; ok {
			entry.timer.Stop()
			delete(t.pending, id)
		}
		t.mu.Unlock()
		return ctx.Err()
	}
}

// RunLater schedules fn to run after d on its own goroutine. It returns nil
// when the timer is disabled or fn is nil.
func (t *Timer) RunLater(d time.Duration, fn func()) *Handle {
	if fn == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.enabled {
		return nil
	}
	id := t.nextID
	t.nextID++
	entry := &pendingEntry{}
	entry.timer = time.AfterFunc(d, func() {
		if t.remove(id) {
			fn()
		}
	})
	t.pending[id] = entry
	return &Handle{t: t, id: id}
}

// Cancel stops the callback if it has not fired yet. It reports whether the
// callback was still pending.
func (h *Handle) Cancel() bool {
	if h == nil || h.t == nil {
		return false
	}
	h.t.mu.Lock()
	defer h.t.mu.Unlock()

	entry, ok := h.t.pending[h.id]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(h.t.pending, h.id)
	return true
}

// remove drops id from the pending set and reports whether it was still
// registered. A false result means Disable or Cancel already claimed it.
func (t *Timer) remove(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.pending[id]; !ok {
		return false
	}
	delete(t.pending, id)
	return true
}
