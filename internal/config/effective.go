package config

import (
	"fmt"
	"sort"
)

// ValidationError reports an invalid setting, optionally with the file
// position that set it.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.MoveCursor != nil {
		cfg.MoveCursor = *raw.MoveCursor
	}
	if raw.AnimateCursor != nil {
		cfg.AnimateCursor = *raw.AnimateCursor
	}
	if raw.AnimateCursorDuration != nil {
		cfg.AnimateCursorDuration = *raw.AnimateCursorDuration
	}
	if raw.UpdateFocus != nil {
		cfg.UpdateFocus = *raw.UpdateFocus
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	cfg.CursorSizeFallback = derefInt(raw.CursorSizeFallback, cfg.CursorSizeFallback)
	cfg.MonitorPollInterval = derefInt(raw.MonitorPollInterval, cfg.MonitorPollInterval)

	for name, seq := range raw.Keybindings {
		cfg.Keybindings[name] = seq
	}

	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
