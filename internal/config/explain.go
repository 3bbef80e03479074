package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML path and its source.
//
// Supported paths include:
//
//	move-cursor
//	animate-cursor
//	animate-cursor-duration
//	update-focus
//	log-level
//	display
//	cursor-size-fallback
//	monitor-poll-interval
//	keybindings
//	keybindings.<shortcut>
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	name, sub, nested := strings.Cut(path, ".")
	if nested && name != "keybindings" {
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	switch name {
	case "move-cursor":
		return cfg.MoveCursor, nil
	case "animate-cursor":
		return cfg.AnimateCursor, nil
	case "animate-cursor-duration":
		return cfg.AnimateCursorDuration, nil
	case "update-focus":
		return cfg.UpdateFocus, nil
	case "log-level":
		return cfg.LogLevel, nil
	case "display":
		return cfg.Display, nil
	case "cursor-size-fallback":
		return cfg.CursorSizeFallback, nil
	case "monitor-poll-interval":
		return cfg.MonitorPollInterval, nil
	case "keybindings":
		if !nested {
			return cfg.Keybindings, nil
		}
		seq, ok := cfg.Keybindings[sub]
		if !ok {
			return nil, fmt.Errorf("unknown keybinding %q", sub)
		}
		return seq, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
