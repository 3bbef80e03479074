package cursor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultCursorSize is used when the desktop reports no usable cursor size.
const DefaultCursorSize = 24

const (
	gsettingsSchema = "org.gnome.desktop.interface"
	gsettingsKey    = "cursor-size"
)

// ErrGSettingsNotAvailable is returned when gsettings is not installed.
var ErrGSettingsNotAvailable = errors.New("gsettings is not available in PATH")

// Sizer reads and writes the desktop-wide cursor size in pixels.
type Sizer interface {
	CursorSize(ctx context.Context) (int, error)
	SetCursorSize(ctx context.Context, size int) error
}

var (
	execLookPath = exec.LookPath
	execOutput   = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).Output()
	}
	execRun = func(ctx context.Context, name string, args ...string) error {
		return exec.CommandContext(ctx, name, args...).Run()
	}
)

// GSettingsSizer drives the cursor size through the gsettings tool.
type GSettingsSizer struct{}

// CursorSize returns the configured cursor size.
func (GSettingsSizer) CursorSize(ctx context.Context) (int, error) {
	if _, err := execLookPath("gsettings"); err != nil {
		return 0, ErrGSettingsNotAvailable
	}
	out, err := execOutput(ctx, "gsettings", "get", gsettingsSchema, gsettingsKey)
	if err != nil {
		return 0, fmt.Errorf("gsettings get %s failed: %w", gsettingsKey, err)
	}
	return parseGSettingsInt(string(out))
}

// SetCursorSize changes the cursor size.
func (GSettingsSizer) SetCursorSize(ctx context.Context, size int) error {
	if _, err := execLookPath("gsettings"); err != nil {
		return ErrGSettingsNotAvailable
	}
	if err := execRun(ctx, "gsettings", "set", gsettingsSchema, gsettingsKey, strconv.Itoa(size)); err != nil {
		return fmt.Errorf("gsettings set %s %d failed: %w", gsettingsKey, size, err)
	}
	return nil
}

// parseGSettingsInt accepts both "24" and the typed form "int32 24".
func parseGSettingsInt(raw string) (int, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty gsettings output")
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, fmt.Errorf("unexpected gsettings output %q: %w", strings.TrimSpace(raw), err)
	}
	return n, nil
}

// SizeState holds the cursor size captured at startup. Every animation
// restores the cursor to this value.
type SizeState struct {
	original int
}

// CaptureSize reads the current cursor size from sizer. When the read fails or
// returns a non-positive size, fallback is used and the read error returned
// alongside a usable state.
func CaptureSize(ctx context.Context, sizer Sizer, fallback int) (*SizeState, error) {
	if fallback <= 0 {
		fallback = DefaultCursorSize
	}
	size, err := sizer.CursorSize(ctx)
	if err != nil {
		return &SizeState{original: fallback}, err
	}
	if size <= 0 {
		return &SizeState{original: fallback}, fmt.Errorf("invalid cursor size %d", size)
	}
	return &SizeState{original: size}, nil
}

// NewSizeState returns a state with a fixed original size.
func NewSizeState(original int) *SizeState {
	return &SizeState{original: original}
}

// Original returns the size to restore after an animation.
func (s *SizeState) Original() int {
	return s.original
}

// Zoomed returns the enlarged size shown while the pointer travels.
func (s *SizeState) Zoomed() int {
	return s.Original() * zoomFactor
}
