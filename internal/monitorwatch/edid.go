package monitorwatch

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
)

var edidHeader = []byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}

// ErrInvalidEDID is returned for blocks that are too short or lack the fixed
// EDID header.
var ErrInvalidEDID = errors.New("invalid EDID block")

// EDID holds the identification fields of a base EDID block.
type EDID struct {
	// Manufacturer is the three-letter PNP ID, e.g. "DEL".
	Manufacturer string
	ProductCode  uint16
	SerialNumber uint32
	// Name and SerialText come from the display descriptors and are empty
	// when the monitor does not advertise them.
	Name       string
	SerialText string
}

const (
	descriptorName   = 0xfc
	descriptorSerial = 0xff
)

// ParseEDID decodes the identification section and the text descriptors of
// a 128-byte base block.
func ParseEDID(b []byte) (EDID, error) {
	if len(b) < 128 || !bytes.Equal(b[:8], edidHeader) {
		return EDID{}, ErrInvalidEDID
	}

	var e EDID
	e.Manufacturer = pnpID(binary.BigEndian.Uint16(b[8:10]))
	e.ProductCode = binary.LittleEndian.Uint16(b[10:12])
	e.SerialNumber = binary.LittleEndian.Uint32(b[12:16])

	for off := 54; off+18 <= 126; off += 18 {
		d := b[off : off+18]
		// Detailed timing descriptors have a non-zero pixel clock.
		if d[0] != 0 || d[1] != 0 || d[2] != 0 {
			continue
		}
		switch d[3] {
		case descriptorName:
			e.Name = descriptorText(d[5:])
		case descriptorSerial:
			e.SerialText = descriptorText(d[5:])
		}
	}
	return e, nil
}

// pnpID unpacks three 5-bit letters, 'A' encoded as 1.
func pnpID(v uint16) string {
	letters := []byte{
		byte((v>>10)&0x1f) + 'A' - 1,
		byte((v>>5)&0x1f) + 'A' - 1,
		byte(v&0x1f) + 'A' - 1,
	}
	for _, c := range letters {
		if c < 'A' || c > 'Z' {
			return ""
		}
	}
	return string(letters)
}

func descriptorText(b []byte) string {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}
	return strings.TrimSpace(string(b))
}
