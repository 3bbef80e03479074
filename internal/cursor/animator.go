// Package cursor moves the pointer between monitors and manages the
// temporary cursor enlargement shown while it travels.
package cursor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/1broseidon/binu/internal/platform"
	"github.com/1broseidon/binu/internal/timer"
)

const (
	// Steps is the number of intervals an animation is split into. Steps+1
	// positions are visited.
	Steps = 30

	zoomFactor = 3

	defaultSettleDelay = 100 * time.Millisecond
	defaultNudgeDelay  = 50 * time.Millisecond
)

// Pointer reads and moves the pointer.
type Pointer interface {
	PointerPosition() (platform.Point, error)
	WarpPointer(p platform.Point) error
}

// Session describes one Animate call.
type Session struct {
	Start      platform.Point
	Target     platform.Point
	Steps      int
	Delay      time.Duration
	ZoomedSize int
	// Visited counts the interpolated positions the pointer was moved to.
	Visited int
	// Aborted is set when the timer was disabled or ctx ended mid-flight.
	Aborted bool
}

// Animator drives pointer animations.
type Animator struct {
	pointer Pointer
	sizer   Sizer
	size    *SizeState
	timer   *timer.Timer
	logger  *slog.Logger

	// SettleDelay is the pause between the last step and the size restore.
	SettleDelay time.Duration
	// NudgeDelay is the gap between the two moves of the redraw nudge.
	NudgeDelay time.Duration
}

// NewAnimator creates an animator. logger may be nil.
func NewAnimator(pointer Pointer, sizer Sizer, size *SizeState, tm *timer.Timer, logger *slog.Logger) *Animator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Animator{
		pointer:     pointer,
		sizer:       sizer,
		size:        size,
		timer:       tm,
		logger:      logger.With("component", "cursor"),
		SettleDelay: defaultSettleDelay,
		NudgeDelay:  defaultNudgeDelay,
	}
}

// Warp moves the pointer straight to target.
func (a *Animator) Warp(target platform.Point) error {
	return a.pointer.WarpPointer(target)
}

// Animate moves the pointer from its current position to target over
// duration with an enlarged cursor. The cursor size is restored to the
// captured original on every return path, including errors and aborts.
func (a *Animator) Animate(ctx context.Context, target platform.Point, duration time.Duration) (Session, error) {
	session := Session{
		Target:     target,
		Steps:      Steps,
		Delay:      (duration / Steps).Truncate(time.Millisecond),
		ZoomedSize: a.size.Zoomed(),
	}

	start, err := a.pointer.PointerPosition()
	if err != nil {
		return session, fmt.Errorf("read pointer: %w", err)
	}
	session.Start = start

	// Restore runs detached from ctx so a cancelled session still shrinks
	// the cursor back.
	restoreCtx := context.WithoutCancel(ctx)
	restored := false
	defer func() {
		if !restored {
			_ = a.restoreSize(restoreCtx)
		}
	}()

	if err := a.sizer.SetCursorSize(ctx, session.ZoomedSize); err != nil {
		// Not fatal: the pointer still moves at normal size.
		a.logger.Warn("failed to enlarge cursor", "size", session.ZoomedSize, "error", err)
	} else {
		a.logger.Debug("cursor enlarged", "size", session.ZoomedSize)
	}

	for i := 0; i <= Steps; i++ {
		if !a.timer.Enabled() || ctx.Err() != nil {
			session.Aborted = true
			break
		}
		if err := a.pointer.WarpPointer(interpolate(start, target, i, Steps)); err != nil {
			return session, fmt.Errorf("animation step %d: %w", i, err)
		}
		session.Visited++

		if session.Delay > 0 {
			if err := a.timer.Sleep(ctx, session.Delay); err != nil {
				if !errors.Is(err, timer.ErrDisabled) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
					return session, err
				}
				session.Aborted = true
				break
			}
		}
	}

	_ = a.timer.Sleep(ctx, a.SettleDelay)
	restored = true
	if err := a.restoreSize(restoreCtx); err != nil {
		return session, err
	}

	if session.Aborted {
		a.logger.Debug("animation aborted", "visited", session.Visited)
		return session, nil
	}
	if err := a.nudge(ctx, target); err != nil {
		return session, err
	}
	return session, nil
}

// nudge moves the pointer one pixel right and back so the window system
// redraws it at the restored size.
func (a *Animator) nudge(ctx context.Context, target platform.Point) error {
	if err := a.pointer.WarpPointer(platform.Point{X: target.X + 1, Y: target.Y}); err != nil {
		return fmt.Errorf("nudge: %w", err)
	}
	_ = a.timer.Sleep(ctx, a.NudgeDelay)
	if err := a.pointer.WarpPointer(target); err != nil {
		return fmt.Errorf("nudge: %w", err)
	}
	return nil
}

func (a *Animator) restoreSize(ctx context.Context) error {
	original := a.size.Original()
	if err := a.sizer.SetCursorSize(ctx, original); err != nil {
		a.logger.Error("failed to restore cursor size", "size", original, "error", err)
		return fmt.Errorf("restore cursor size: %w", err)
	}
	a.logger.Debug("cursor size restored", "size", original)
	return nil
}

func interpolate(start, target platform.Point, i, steps int) platform.Point {
	t := float64(i) / float64(steps)
	return platform.Point{
		X: int(math.Round(float64(start.X) + float64(target.X-start.X)*t)),
		Y: int(math.Round(float64(start.Y) + float64(target.Y-start.Y)*t)),
	}
}
