// Package lsf parses and validates M17 Link Setup Frames: the 30-byte,
// CRC-protected metadata frame that opens every stream or packet burst.
package lsf

import (
	"fmt"

	"github.com/bemasher/m17-demod/crc"
)

// Size is the length in bytes of a decoded LSF.
const Size = 30

// CRC is the LSF checksum: CRC-16/CCITT, init 0xFFFF, no input/output
// reflection, no final XOR. Computed over bytes 0..27, compared against
// bytes 28..29 (equivalently: Checksum(bytes 0..29) == 0).
var CRC = crc.NewCRC("LSF", 0xFFFF, 0x1021, 0)

// PacketSubType enumerates the TYPE field's bits 1-2 when TYPE bit 0 (the
// stream/packet discriminator) selects packet mode.
type PacketSubType uint8

const (
	PacketUnknown      PacketSubType = 0
	PacketRaw          PacketSubType = 1
	PacketEncapsulated PacketSubType = 2
	PacketReserved     PacketSubType = 3
)

func (t PacketSubType) String() string {
	switch t {
	case PacketRaw:
		return "RAW"
	case PacketEncapsulated:
		return "ENC"
	default:
		return "UNK"
	}
}

// StreamSubType enumerates the TYPE field's bits 1-2 when TYPE bit 0
// selects stream mode.
type StreamSubType uint8

const (
	StreamUnknown    StreamSubType = 0
	StreamDataOnly   StreamSubType = 1
	StreamVoiceOnly  StreamSubType = 2
	StreamVoiceData  StreamSubType = 3
)

func (t StreamSubType) String() string {
	switch t {
	case StreamDataOnly:
		return "D/D"
	case StreamVoiceOnly:
		return "V/V"
	case StreamVoiceData:
		return "V/D"
	default:
		return "UNK"
	}
}

// Type is the 16-bit TYPE field occupying LSF bytes 12-13.
type Type uint16

// IsStream reports whether TYPE bit 0 selects stream mode over packet mode.
func (t Type) IsStream() bool { return t&1 != 0 }

// PacketSubType extracts TYPE bits 1-2 under the packet-mode interpretation.
func (t Type) PacketSubType() PacketSubType { return PacketSubType((t & 6) >> 1) }

// StreamSubType extracts TYPE bits 1-2 under the stream-mode interpretation.
func (t Type) StreamSubType() StreamSubType { return StreamSubType((t & 6) >> 1) }

// CAN is the channel-access number carried in TYPE bits 7-10.
func (t Type) CAN() uint8 { return uint8((t & 0x780) >> 7) }

func (t Type) String() string {
	if t.IsStream() {
		return fmt.Sprintf("STR:%s CAN:%02d", t.StreamSubType(), t.CAN())
	}
	return fmt.Sprintf("PKT:%s CAN:%02d", t.PacketSubType(), t.CAN())
}

// LSF is a fully decoded 30-byte Link Setup Frame.
type LSF struct {
	Dst   [6]byte
	Src   [6]byte
	Type  Type
	Nonce [14]byte
	Crc   uint16
}

// Parse decodes a 30-byte LSF. It does not validate the CRC; call Good to
// check it.
func Parse(b []byte) (LSF, error) {
	var lsf LSF
	if len(b) != Size {
		return lsf, fmt.Errorf("lsf: expected %d bytes, got %d", Size, len(b))
	}

	copy(lsf.Dst[:], b[0:6])
	copy(lsf.Src[:], b[6:12])
	lsf.Type = Type(uint16(b[12])<<8 | uint16(b[13]))
	copy(lsf.Nonce[:], b[14:28])
	lsf.Crc = uint16(b[28])<<8 | uint16(b[29])

	return lsf, nil
}

// Bytes re-serializes the LSF to its 30-byte wire form, recomputing the
// trailing CRC.
func (lsf LSF) Bytes() []byte {
	b := make([]byte, Size)
	copy(b[0:6], lsf.Dst[:])
	copy(b[6:12], lsf.Src[:])
	b[12] = byte(lsf.Type >> 8)
	b[13] = byte(lsf.Type)
	copy(b[14:28], lsf.Nonce[:])

	sum := CRC.Checksum(b[:28])
	b[28] = byte(sum >> 8)
	b[29] = byte(sum)

	return b
}

// Good reports whether the LSF's CRC over bytes 0..27 matches bytes 28..29.
func (lsf LSF) Good(raw []byte) bool {
	return CRC.Checksum(raw) == 0
}

// DstCallsign decodes the destination callsign.
func (lsf LSF) DstCallsign() (string, error) { return DecodeCallsign(lsf.Dst) }

// SrcCallsign decodes the source callsign.
func (lsf LSF) SrcCallsign() (string, error) { return DecodeCallsign(lsf.Src) }

// IsEncapsulatedPacket reports whether this LSF opens a packet burst whose
// packet accumulator must be seeded with the LSF bytes themselves (packet
// mode, sub-type ENCAPSULATED, or a reserved sub-type, which falls back to
// the same seeding behavior as the original implementation).
func (lsf LSF) IsEncapsulatedPacket() bool {
	if lsf.Type.IsStream() {
		return false
	}
	switch lsf.Type.PacketSubType() {
	case PacketRaw:
		return false
	case PacketEncapsulated, PacketReserved:
		return true
	default:
		return false
	}
}

// String renders the LSF the way `-l` display does: SRC, DEST, TYPE detail
// and NONCE in hex.
func (lsf LSF) String() string {
	src, _ := lsf.SrcCallsign()
	dst, _ := lsf.DstCallsign()
	return fmt.Sprintf("SRC: %s, DEST: %s, %s, NONCE: %X, CRC: %04X",
		src, dst, lsf.Type, lsf.Nonce[:], lsf.Crc)
}
