package monitorwatch

import (
	"fmt"
	"strings"

	"github.com/1broseidon/binu/internal/platform"
)

// Resolution is a monitor's size in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Entry describes one monitor in the monitor-config cache.
type Entry struct {
	Index       int        `json:"index"`
	Brand       string     `json:"brand"`
	Model       string     `json:"model"`
	Serial      string     `json:"serial"`
	Resolution  Resolution `json:"resolution"`
	DisplayName string     `json:"displayName"`
	Connector   string     `json:"connector"`
	IsBuiltIn   bool       `json:"isBuiltIn"`
}

var builtInPrefixes = []string{"eDP", "LVDS", "DSI"}

// IsBuiltIn reports whether the connector drives an internal panel.
func IsBuiltIn(connector string) bool {
	for _, p := range builtInPrefixes {
		if strings.HasPrefix(connector, p) {
			return true
		}
	}
	return false
}

// BuildEntry derives a cache entry from an output and its EDID. Outputs
// without a readable EDID still get an entry named after the connector.
func BuildEntry(out platform.MonitorOutput) Entry {
	e := Entry{
		Index:      out.Index,
		Connector:  out.Connector,
		Resolution: Resolution{Width: out.Bounds.Width, Height: out.Bounds.Height},
		IsBuiltIn:  IsBuiltIn(out.Connector),
	}

	if id, err := ParseEDID(out.EDID); err == nil {
		e.Brand = id.Manufacturer
		e.Model = id.Name
		if e.Model == "" && id.ProductCode != 0 {
			e.Model = fmt.Sprintf("0x%04x", id.ProductCode)
		}
		e.Serial = id.SerialText
		if e.Serial == "" && id.SerialNumber != 0 {
			e.Serial = fmt.Sprintf("%d", id.SerialNumber)
		}
	}

	e.DisplayName = displayName(e)
	return e
}

// BuildEntries converts every output, keeping their order.
func BuildEntries(outputs []platform.MonitorOutput) []Entry {
	entries := make([]Entry, 0, len(outputs))
	for _, out := range outputs {
		entries = append(entries, BuildEntry(out))
	}
	return entries
}

func displayName(e Entry) string {
	if e.IsBuiltIn {
		return "Built-in display"
	}
	name := strings.TrimSpace(e.Brand + " " + e.Model)
	if name == "" {
		return e.Connector
	}
	return name
}
