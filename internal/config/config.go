package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAnimationDurationMs = 300
	MinAnimationDurationMs     = 50
	MaxAnimationDurationMs     = 1000

	DefaultCursorSizeFallback  = 24
	DefaultMonitorPollInterval = 5
)

// Shortcut identifiers. Indexed bindings use MonitorShortcut / SwapShortcut.
const (
	ShortcutMonitorNext = "monitor-next"
	ShortcutMonitorPrev = "monitor-prev"
	ShortcutSwapNext    = "swap-next"
	ShortcutSwapPrev    = "swap-prev"
	ShortcutSwapAll     = "swap-all"

	monitorShortcutPrefix = "monitor-"
	swapShortcutPrefix    = "swap-"
)

// MonitorShortcut returns the shortcut identifier that focuses monitor i.
func MonitorShortcut(i int) string {
	return monitorShortcutPrefix + strconv.Itoa(i)
}

// SwapShortcut returns the shortcut identifier that swaps with monitor i.
func SwapShortcut(i int) string {
	return swapShortcutPrefix + strconv.Itoa(i)
}

// SettingsView is the read-only query surface the navigation engine uses.
// Implementations must be safe for concurrent use; every call reflects the
// latest loaded settings.
type SettingsView interface {
	MoveCursorEnabled() bool
	AnimateCursorEnabled() bool
	UpdateFocusEnabled() bool
	AnimationDuration() time.Duration
}

// Config is the effective daemon configuration.
type Config struct {
	MoveCursor            bool   `yaml:"move-cursor"`
	AnimateCursor         bool   `yaml:"animate-cursor"`
	AnimateCursorDuration int    `yaml:"animate-cursor-duration"`
	UpdateFocus           bool   `yaml:"update-focus"`
	LogLevel              string `yaml:"log-level"`
	// Display is an X display name such as ":1"; empty uses $DISPLAY.
	Display             string `yaml:"display,omitempty"`
	CursorSizeFallback  int    `yaml:"cursor-size-fallback"`
	MonitorPollInterval int    `yaml:"monitor-poll-interval"` // seconds
	// Keybindings maps a shortcut identifier to an X key sequence such as
	// "Mod4-Mod1-Right". An empty sequence disables the shortcut.
	Keybindings map[string]string `yaml:"keybindings"`
}

var _ SettingsView = (*Config)(nil)

func (c *Config) MoveCursorEnabled() bool    { return c.MoveCursor }
func (c *Config) AnimateCursorEnabled() bool { return c.AnimateCursor }
func (c *Config) UpdateFocusEnabled() bool   { return c.UpdateFocus }

// AnimationDuration returns the configured pointer animation length.
func (c *Config) AnimationDuration() time.Duration {
	return time.Duration(c.AnimateCursorDuration) * time.Millisecond
}

// PollInterval returns how often the monitor watcher rescans outputs.
func (c *Config) PollInterval() time.Duration {
	if c.MonitorPollInterval <= 0 {
		return DefaultMonitorPollInterval * time.Second
	}
	return time.Duration(c.MonitorPollInterval) * time.Second
}

// DefaultKeybindings returns the stock shortcut table.
func DefaultKeybindings() map[string]string {
	bindings := map[string]string{
		ShortcutMonitorNext: "Mod4-Mod1-Right",
		ShortcutMonitorPrev: "Mod4-Mod1-Left",
		ShortcutSwapNext:    "Mod4-Mod1-Shift-Right",
		ShortcutSwapPrev:    "Mod4-Mod1-Shift-Left",
		ShortcutSwapAll:     "Mod4-Mod1-s",
	}
	for i := 0; i < 3; i++ {
		bindings[MonitorShortcut(i)] = fmt.Sprintf("Mod4-Mod1-%d", i+1)
		bindings[SwapShortcut(i)] = fmt.Sprintf("Mod4-Mod1-Shift-%d", i+1)
	}
	return bindings
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		MoveCursor:            true,
		AnimateCursor:         true,
		AnimateCursorDuration: DefaultAnimationDurationMs,
		UpdateFocus:           true,
		LogLevel:              "info",
		CursorSizeFallback:    DefaultCursorSizeFallback,
		MonitorPollInterval:   DefaultMonitorPollInterval,
		Keybindings:           DefaultKeybindings(),
	}
}

// ActiveKeybindings returns the enabled bindings sorted by shortcut name.
func (c *Config) ActiveKeybindings() []Keybinding {
	out := make([]Keybinding, 0, len(c.Keybindings))
	for name, seq := range c.Keybindings {
		if strings.TrimSpace(seq) == "" {
			continue
		}
		out = append(out, Keybinding{Name: name, Sequence: seq})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Keybinding pairs a shortcut identifier with its key sequence.
type Keybinding struct {
	Name     string
	Sequence string
}

// Save writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate checks value ranges and shortcut identifiers.
func (c *Config) Validate() error {
	if c.AnimateCursorDuration < MinAnimationDurationMs || c.AnimateCursorDuration > MaxAnimationDurationMs {
		return &ValidationError{
			Path: "animate-cursor-duration",
			Err:  fmt.Errorf("animate-cursor-duration must be between %d and %d", MinAnimationDurationMs, MaxAnimationDurationMs),
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log-level", Err: fmt.Errorf("log-level must be one of: debug, info, warning, error")}
	}
	if c.CursorSizeFallback <= 0 {
		return &ValidationError{Path: "cursor-size-fallback", Err: fmt.Errorf("cursor-size-fallback must be > 0")}
	}
	if c.MonitorPollInterval <= 0 {
		return &ValidationError{Path: "monitor-poll-interval", Err: fmt.Errorf("monitor-poll-interval must be > 0")}
	}

	seen := make(map[string]string)
	for _, name := range sortedKeys(c.Keybindings) {
		if !ValidShortcutName(name) {
			return &ValidationError{Path: "keybindings." + name, Err: fmt.Errorf("unknown shortcut %q", name)}
		}
		seq := strings.TrimSpace(c.Keybindings[name])
		if seq == "" {
			continue
		}
		if other, dup := seen[seq]; dup {
			return &ValidationError{Path: "keybindings." + name, Err: fmt.Errorf("key sequence %q is already bound to %s", seq, other)}
		}
		seen[seq] = name
	}
	return nil
}

// ValidShortcutName reports whether name is a known shortcut identifier.
func ValidShortcutName(name string) bool {
	switch name {
	case ShortcutMonitorNext, ShortcutMonitorPrev, ShortcutSwapNext, ShortcutSwapPrev, ShortcutSwapAll:
		return true
	}
	for _, prefix := range []string{monitorShortcutPrefix, swapShortcutPrefix} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			n, err := strconv.Atoi(rest)
			return err == nil && n >= 0 && strconv.Itoa(n) == rest
		}
	}
	return false
}
