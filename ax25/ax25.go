// Package ax25 parses and pretty-prints AX.25 UI frames carried inside
// M17 BASIC_PACKET bursts.
package ax25

import (
	"fmt"
	"strings"
)

// addressLen is the length in bytes of one AX.25 address field: 6
// shifted-ASCII callsign characters plus an SSID/control byte.
const addressLen = 7

// controlUI is the AX.25 control-field value for an unnumbered
// information (UI) frame, the only frame type M17 packet mode carries.
const controlUI = 0x03

// Address is one decoded AX.25 station address.
type Address struct {
	Callsign string
	SSID     int
	Last     bool // this was the final address field (repeater chain end)
}

func (a Address) String() string {
	if a.SSID == 0 {
		return a.Callsign
	}
	return fmt.Sprintf("%s-%d", a.Callsign, a.SSID)
}

// Frame is a decoded AX.25 UI frame: destination, source, zero or more
// digipeater addresses, the protocol ID, and the information field.
type Frame struct {
	Dest      Address
	Src       Address
	Repeaters []Address
	PID       byte
	Info      []byte
}

// Parse decodes an AX.25 UI frame from its raw byte form (as carried,
// unescaped, inside an M17 packet payload).
func Parse(b []byte) (Frame, error) {
	var f Frame

	if len(b) < 2*addressLen+2 {
		return f, fmt.Errorf("ax25: frame too short: %d bytes", len(b))
	}

	dest, rest, err := decodeAddress(b)
	if err != nil {
		return f, fmt.Errorf("ax25: destination address: %w", err)
	}
	f.Dest = dest

	src, rest, err := decodeAddress(rest)
	if err != nil {
		return f, fmt.Errorf("ax25: source address: %w", err)
	}
	f.Src = src

	for !src.Last {
		if len(rest) < addressLen {
			return f, fmt.Errorf("ax25: truncated repeater address chain")
		}
		var rep Address
		rep, rest, err = decodeAddress(rest)
		if err != nil {
			return f, fmt.Errorf("ax25: repeater address: %w", err)
		}
		f.Repeaters = append(f.Repeaters, rep)
		src = rep
		if len(f.Repeaters) > 8 {
			return f, fmt.Errorf("ax25: repeater chain too long, malformed frame")
		}
	}

	if len(rest) < 2 {
		return f, fmt.Errorf("ax25: missing control/PID bytes")
	}

	control := rest[0]
	if control&0xEF != controlUI {
		return f, fmt.Errorf("ax25: unsupported control byte 0x%02X, only UI frames are decoded", control)
	}

	f.PID = rest[1]
	f.Info = append([]byte(nil), rest[2:]...)

	return f, nil
}

// decodeAddress decodes one 7-byte AX.25 address field from the front of
// b and returns it along with the remaining bytes.
func decodeAddress(b []byte) (Address, []byte, error) {
	if len(b) < addressLen {
		return Address{}, nil, fmt.Errorf("address field too short")
	}

	var call strings.Builder
	for i := 0; i < 6; i++ {
		c := b[i] >> 1
		if c != ' ' {
			call.WriteByte(c)
		}
	}

	ssidByte := b[6]
	addr := Address{
		Callsign: call.String(),
		SSID:     int(ssidByte>>1) & 0x0F,
		Last:     ssidByte&0x01 != 0,
	}

	return addr, b[addressLen:], nil
}

// String renders the frame in the conventional "SRC>DEST,REPEATER:info"
// textual form used by AX.25 monitor tools.
func (f Frame) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s>%s", f.Src, f.Dest)
	for _, r := range f.Repeaters {
		fmt.Fprintf(&b, ",%s", r)
	}
	b.WriteByte(':')
	b.Write(f.Info)
	return b.String()
}
