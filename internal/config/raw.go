package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig mirrors the YAML file. Nil fields were not set and fall through
// to whatever an earlier file or the defaults provide.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	MoveCursor            *bool   `yaml:"move-cursor"`
	AnimateCursor         *bool   `yaml:"animate-cursor"`
	AnimateCursorDuration *int    `yaml:"animate-cursor-duration"`
	UpdateFocus           *bool   `yaml:"update-focus"`
	LogLevel              *string `yaml:"log-level"`
	Display               *string `yaml:"display"`
	CursorSizeFallback    *int    `yaml:"cursor-size-fallback"`
	MonitorPollInterval   *int    `yaml:"monitor-poll-interval"`

	Keybindings map[string]string `yaml:"keybindings"`
}

// merge applies overlay on top of c. Keybindings merge per shortcut.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.MoveCursor != nil {
		out.MoveCursor = overlay.MoveCursor
	}
	if overlay.AnimateCursor != nil {
		out.AnimateCursor = overlay.AnimateCursor
	}
	if overlay.AnimateCursorDuration != nil {
		out.AnimateCursorDuration = overlay.AnimateCursorDuration
	}
	if overlay.UpdateFocus != nil {
		out.UpdateFocus = overlay.UpdateFocus
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.CursorSizeFallback != nil {
		out.CursorSizeFallback = overlay.CursorSizeFallback
	}
	if overlay.MonitorPollInterval != nil {
		out.MonitorPollInterval = overlay.MonitorPollInterval
	}

	if overlay.Keybindings != nil {
		merged := make(map[string]string, len(c.Keybindings)+len(overlay.Keybindings))
		for name, seq := range c.Keybindings {
			merged[name] = seq
		}
		for name, seq := range overlay.Keybindings {
			merged[name] = seq
		}
		out.Keybindings = merged
	}

	return out
}
