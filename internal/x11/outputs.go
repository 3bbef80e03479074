package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

// edidLength is the size of the base EDID block; extension blocks are not read.
const edidLength = 128

// OutputEDID returns the raw base EDID block advertised by an output, or nil
// when the output does not expose one.
func (c *Connection) OutputEDID(output randr.Output) ([]byte, error) {
	atom, err := xprop.Atm(c.XUtil, "EDID")
	if err != nil {
		return nil, fmt.Errorf("failed to intern EDID atom: %w", err)
	}

	reply, err := randr.GetOutputProperty(
		c.XUtil.Conn(),
		output,
		atom,
		xproto.GetPropertyTypeAny,
		0, edidLength/4,
		false, false,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to read EDID for output %d: %w", output, err)
	}
	if reply.Format != 8 || len(reply.Data) < edidLength {
		return nil, nil
	}
	return reply.Data[:edidLength], nil
}
