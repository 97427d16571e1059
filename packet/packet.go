// Package packet accumulates M17 PACKET frame segments into a complete
// payload and verifies its trailing CRC.
package packet

import (
	"fmt"

	"github.com/bemasher/m17-demod/crc"
)

// SegmentSize is the number of payload bytes carried by one PACKET
// segment, before the trailing control byte.
const SegmentSize = 25

// maxPayload bounds the accumulator the way the spec's resource model
// does: the largest multi-segment packet payload, ≈ 800 bytes.
const maxPayload = 800

// CRC is the PACKET payload checksum: CRC-16/X-25 (poly 0x1021, init
// 0xFFFF, reflect-in, reflect-out, xor-out 0xFFFF), whose residue over a
// payload with its own trailing checksum appended low byte first is the
// fixed constant 0x0F47.
var CRC = crc.NewReflectedCRC("PACKET", 0xFFFF, 0x1021, 0xFFFF, 0x0F47)

// Segment is one decoded 26-byte PACKET frame payload: 25 payload bytes
// plus a trailing control byte.
type Segment struct {
	Payload [SegmentSize]byte
	Control byte
}

// Last reports whether this segment is the final one of the packet.
func (s Segment) Last() bool { return s.Control&0x80 != 0 }

// Index returns the non-last segment's sequence index, bits 2-6 of
// Control.
func (s Segment) Index() int { return int(s.Control>>2) & 0x1F }

// TrailingCount returns the last segment's count of valid trailing
// payload bytes, bits 2-6 of Control.
func (s Segment) TrailingCount() int { return int(s.Control>>2) & 0x1F }

// ParseSegment decodes a 26-byte PACKET frame payload.
func ParseSegment(b []byte) (Segment, error) {
	var s Segment
	if len(b) != SegmentSize+1 {
		return s, fmt.Errorf("packet: expected %d bytes, got %d", SegmentSize+1, len(b))
	}
	copy(s.Payload[:], b[:SegmentSize])
	s.Control = b[SegmentSize]
	return s, nil
}

// Accumulator assembles a packet burst's segments into one payload,
// tracking the expected next segment index and detecting sequencing
// errors.
type Accumulator struct {
	buf      []byte
	nextSeq  int
	complete bool
}

// NewAccumulator returns an empty Accumulator, optionally seeded with
// bytes already known to belong to the packet (the encapsulating LSF,
// when TYPE indicates ENCAPSULATED packet mode).
func NewAccumulator(seed []byte) *Accumulator {
	a := &Accumulator{buf: make([]byte, 0, maxPayload)}
	a.buf = append(a.buf, seed...)
	return a
}

// ErrSequence is returned by Append when a non-last segment's index does
// not match the accumulator's expected next index.
type ErrSequence struct {
	Want, Got int
}

func (e ErrSequence) Error() string {
	return fmt.Sprintf("packet: sequence error, want segment %d, got %d", e.Want, e.Got)
}

// Append adds one decoded segment to the accumulator. For a non-last
// segment, it returns ErrSequence if the segment's index does not match
// the expected next index; the caller should drop the packet on that
// error. For the last segment, only the control byte's trailing count is
// used to trim the final chunk, and Complete becomes true.
func (a *Accumulator) Append(s Segment) error {
	if a.complete {
		return fmt.Errorf("packet: segment appended after completion")
	}

	if !s.Last() {
		if s.Index() != a.nextSeq {
			return ErrSequence{Want: a.nextSeq, Got: s.Index()}
		}
		a.buf = append(a.buf, s.Payload[:]...)
		a.nextSeq++
		return nil
	}

	n := s.TrailingCount()
	if n > SegmentSize {
		n = SegmentSize
	}
	a.buf = append(a.buf, s.Payload[:n]...)
	a.complete = true
	return nil
}

// Complete reports whether the last segment has been appended.
func (a *Accumulator) Complete() bool { return a.complete }

// Payload returns the accumulated bytes so far.
func (a *Accumulator) Payload() []byte { return a.buf }

// VerifyCRC reports whether the accumulated payload's trailing 16-bit
// CRC matches the fixed residue, for BASIC_PACKET verification. The
// payload must include its trailing CRC bytes.
func VerifyCRC(payload []byte) bool {
	return CRC.Good(payload)
}
