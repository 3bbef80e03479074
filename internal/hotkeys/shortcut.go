package hotkeys

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/binu/internal/config"
	"github.com/1broseidon/binu/internal/navigator"
)

// Action is what a shortcut does when pressed.
type Action int

const (
	ActionNavigate Action = iota
	ActionSwap
	ActionSwapAll
)

func (a Action) String() string {
	switch a {
	case ActionNavigate:
		return "navigate"
	case ActionSwap:
		return "swap"
	case ActionSwapAll:
		return "swap-all"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Shortcut is a parsed shortcut identifier.
type Shortcut struct {
	Name      string
	Action    Action
	Direction navigator.Direction
}

// ParseShortcut interprets a shortcut identifier such as "monitor-next",
// "swap-2" or "swap-all".
func ParseShortcut(name string) (Shortcut, error) {
	switch name {
	case config.ShortcutMonitorNext:
		return Shortcut{Name: name, Action: ActionNavigate, Direction: navigator.Next()}, nil
	case config.ShortcutMonitorPrev:
		return Shortcut{Name: name, Action: ActionNavigate, Direction: navigator.Previous()}, nil
	case config.ShortcutSwapNext:
		return Shortcut{Name: name, Action: ActionSwap, Direction: navigator.Next()}, nil
	case config.ShortcutSwapPrev:
		return Shortcut{Name: name, Action: ActionSwap, Direction: navigator.Previous()}, nil
	case config.ShortcutSwapAll:
		return Shortcut{Name: name, Action: ActionSwapAll}, nil
	}

	action := ActionNavigate
	rest, ok := strings.CutPrefix(name, "monitor-")
	if !ok {
		rest, ok = strings.CutPrefix(name, "swap-")
		action = ActionSwap
	}
	if !ok {
		return Shortcut{}, fmt.Errorf("unknown shortcut %q", name)
	}
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 0 {
		return Shortcut{}, fmt.Errorf("unknown shortcut %q", name)
	}
	return Shortcut{Name: name, Action: action, Direction: navigator.Index(idx)}, nil
}
