package navigator

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes the variants of a Direction.
type Kind int

const (
	KindNext Kind = iota
	KindPrevious
	KindIndex
)

// Direction selects a target monitor relative to a reference monitor or by
// absolute index. The zero value is Next.
type Direction struct {
	kind  Kind
	index int
}

// Next selects the monitor after the reference, wrapping around.
func Next() Direction { return Direction{kind: KindNext} }

// Previous selects the monitor before the reference, wrapping around.
func Previous() Direction { return Direction{kind: KindPrevious} }

// Index selects monitor i.
func Index(i int) Direction { return Direction{kind: KindIndex, index: i} }

// Kind returns the variant.
func (d Direction) Kind() Kind { return d.kind }

// MonitorIndex returns the absolute index for KindIndex directions.
func (d Direction) MonitorIndex() (int, bool) {
	if d.kind != KindIndex {
		return 0, false
	}
	return d.index, true
}

func (d Direction) String() string {
	switch d.kind {
	case KindNext:
		return "next"
	case KindPrevious:
		return "prev"
	default:
		return strconv.Itoa(d.index)
	}
}

// ParseDirection accepts "next", "prev"/"previous", or a non-negative
// monitor index.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "next":
		return Next(), nil
	case "prev", "previous":
		return Previous(), nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return Direction{}, &InvalidMonitorError{Input: s}
	}
	return Index(n), nil
}

// MarshalText encodes the direction the way ParseDirection reads it.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction from its text form.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// InvalidMonitorError reports a direction that does not name an existing
// monitor.
type InvalidMonitorError struct {
	// Requested is the out-of-range index; Input holds unparsable text and
	// leaves Count at zero.
	Requested int
	Count     int
	Input     string
}

func (e *InvalidMonitorError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("invalid monitor argument: %q", e.Input)
	}
	return fmt.Sprintf("invalid monitor argument: %d (have %d monitors)", e.Requested, e.Count)
}

// ResolveTarget maps a direction to a monitor index given the reference
// monitor and the monitor count.
func ResolveTarget(dir Direction, reference, total int) (int, error) {
	if total < 1 {
		return 0, fmt.Errorf("no monitors available")
	}
	switch dir.kind {
	case KindNext:
		return (reference + 1) % total, nil
	case KindPrevious:
		return (reference - 1 + total) % total, nil
	default:
		if dir.index < 0 || dir.index >= total {
			return 0, &InvalidMonitorError{Requested: dir.index, Count: total}
		}
		return dir.index, nil
	}
}
