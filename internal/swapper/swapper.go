// Package swapper exchanges windows between monitors.
package swapper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/1broseidon/binu/internal/config"
	"github.com/1broseidon/binu/internal/navigator"
	"github.com/1broseidon/binu/internal/platform"
)

// Move records one window relocation.
type Move struct {
	Window platform.WindowID
	From   int
	To     int
}

// Result describes a swap.
type Result struct {
	Source int
	Target int
	Moves  []Move
	// Failed lists moves the environment rejected. They are also part of
	// the returned error.
	Failed []Move
	// NoOp is set when nothing needed to move; Reason says why.
	NoOp    bool
	Reason  string
	Focused platform.WindowID
}

// Swapper moves windows between monitors.
type Swapper struct {
	env      navigator.Environment
	settings config.SettingsView
	logger   *slog.Logger
}

// New creates a swapper. logger may be nil.
func New(env navigator.Environment, settings config.SettingsView, logger *slog.Logger) *Swapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Swapper{
		env:      env,
		settings: settings,
		logger:   logger.With("component", "swapper"),
	}
}

// SwapWith exchanges every window on the reference monitor with every window
// on the monitor selected by dir. Each window move is independent: a failed
// move is reported but does not stop the others.
func (s *Swapper) SwapWith(ctx context.Context, dir navigator.Direction) (Result, error) {
	source, target, err := navigator.Resolve(s.env, s.settings, dir)
	if err != nil {
		return Result{}, err
	}
	res := Result{Source: source, Target: target}
	if source == target {
		res.NoOp = true
		res.Reason = "source and target monitors are the same"
		return res, nil
	}

	grouped, err := s.env.WindowsByMonitor()
	if err != nil {
		return res, fmt.Errorf("list windows: %w", err)
	}

	var errs []error
	s.moveAll(ctx, &res, grouped[source], target, &errs)
	s.moveAll(ctx, &res, grouped[target], source, &errs)

	if s.settings.UpdateFocusEnabled() {
		id, err := navigator.FocusMostRecent(s.env, source)
		if err != nil {
			errs = append(errs, err)
		}
		res.Focused = id
	}

	return res, errors.Join(errs...)
}

// SwapAll is the settings-free variant. With windows on exactly two
// monitors it exchanges them; with windows on exactly one monitor it moves
// them to the lowest other monitor. Any other layout is left alone.
func (s *Swapper) SwapAll(ctx context.Context) (Result, error) {
	total, err := s.env.MonitorCount()
	if err != nil {
		return Result{}, fmt.Errorf("count monitors: %w", err)
	}
	grouped, err := s.env.WindowsByMonitor()
	if err != nil {
		return Result{}, fmt.Errorf("list windows: %w", err)
	}

	populated := make([]int, 0, len(grouped))
	for idx, windows := range grouped {
		if len(windows) > 0 {
			populated = append(populated, idx)
		}
	}
	sort.Ints(populated)

	var res Result
	var errs []error
	switch {
	case len(populated) == 2:
		res.Source, res.Target = populated[0], populated[1]
		s.moveAll(ctx, &res, grouped[res.Source], res.Target, &errs)
		s.moveAll(ctx, &res, grouped[res.Target], res.Source, &errs)
	case len(populated) == 1 && total >= 2:
		res.Source = populated[0]
		res.Target = 0
		if res.Source == 0 {
			res.Target = 1
		}
		s.moveAll(ctx, &res, grouped[res.Source], res.Target, &errs)
	default:
		res.NoOp = true
		res.Reason = fmt.Sprintf("cannot swap windows: %d monitors, %d with windows", total, len(populated))
	}

	return res, errors.Join(errs...)
}

func (s *Swapper) moveAll(ctx context.Context, res *Result, windows []platform.Window, to int, errs *[]error) {
	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			*errs = append(*errs, err)
			return
		}
		move := Move{Window: w.ID, From: w.Monitor, To: to}
		if err := s.env.MoveWindowToMonitor(w.ID, to); err != nil {
			res.Failed = append(res.Failed, move)
			*errs = append(*errs, fmt.Errorf("move window 0x%x to monitor %d: %w", uint32(w.ID), to, err))
			continue
		}
		res.Moves = append(res.Moves, move)
	}
}

// HandleSwapWith runs SwapWith and logs the outcome. It never fails.
func (s *Swapper) HandleSwapWith(ctx context.Context, dir navigator.Direction) {
	res, err := s.SwapWith(ctx, dir)
	s.report("swap", dir.String(), res, err)
}

// HandleSwapAll runs SwapAll and logs the outcome. It never fails.
func (s *Swapper) HandleSwapAll(ctx context.Context) {
	res, err := s.SwapAll(ctx)
	s.report("swap-all", "", res, err)
}

func (s *Swapper) report(op, dir string, res Result, err error) {
	attrs := []any{"op", op, "source", res.Source, "target", res.Target, "moved", len(res.Moves)}
	if dir != "" {
		attrs = append(attrs, "direction", dir)
	}

	var invalid *navigator.InvalidMonitorError
	switch {
	case errors.As(err, &invalid):
		s.logger.Warn("swap ignored", append(attrs, "error", err)...)
	case err != nil:
		s.logger.Error("swap failed", append(attrs, "failed", len(res.Failed), "error", err)...)
	case res.NoOp:
		s.logger.Info(res.Reason, attrs...)
	default:
		s.logger.Debug("swapped windows", attrs...)
	}
}
