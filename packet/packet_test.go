package packet

import (
	"bytes"
	"math/rand"
	"testing"
)

func segment(seq int, payload byte) Segment {
	var s Segment
	for i := range s.Payload {
		s.Payload[i] = payload
	}
	s.Control = byte(seq << 2)
	return s
}

func lastSegment(trailing []byte) Segment {
	var s Segment
	copy(s.Payload[:], trailing)
	n := len(trailing)
	if n > SegmentSize {
		n = SegmentSize
	}
	s.Control = 0x80 | byte(n<<2)
	return s
}

func TestAccumulatorAssemblesInOrder(t *testing.T) {
	a := NewAccumulator(nil)

	if err := a.Append(segment(0, 0xAA)); err != nil {
		t.Fatalf("segment 0: %v", err)
	}
	if err := a.Append(segment(1, 0xBB)); err != nil {
		t.Fatalf("segment 1: %v", err)
	}
	if err := a.Append(lastSegment([]byte{0x01, 0x02, 0x03})); err != nil {
		t.Fatalf("last segment: %v", err)
	}

	if !a.Complete() {
		t.Fatal("accumulator not marked complete after last segment")
	}

	want := bytes.Repeat([]byte{0xAA}, SegmentSize)
	want = append(want, bytes.Repeat([]byte{0xBB}, SegmentSize)...)
	want = append(want, 0x01, 0x02, 0x03)

	if !bytes.Equal(a.Payload(), want) {
		t.Fatalf("payload mismatch:\ngot  %X\nwant %X", a.Payload(), want)
	}
}

func TestAccumulatorSeedsFromLSF(t *testing.T) {
	lsf := make([]byte, 30)
	rand.Read(lsf)

	a := NewAccumulator(lsf)
	if !bytes.Equal(a.Payload(), lsf) {
		t.Fatal("accumulator not seeded with LSF bytes")
	}
}

func TestAccumulatorDetectsSequenceError(t *testing.T) {
	a := NewAccumulator(nil)
	if err := a.Append(segment(0, 0x11)); err != nil {
		t.Fatalf("segment 0: %v", err)
	}

	err := a.Append(segment(3, 0x22))
	if err == nil {
		t.Fatal("expected sequence error for out-of-order segment")
	}
	if _, ok := err.(ErrSequence); !ok {
		t.Fatalf("expected ErrSequence, got %T: %v", err, err)
	}
}

// TestVerifyCRC exercises invariant 4: appending the CRC computed with
// the PACKET parameters to any payload yields the fixed residue 0x0F47.
func TestVerifyCRC(t *testing.T) {
	for trial := 0; trial < 256; trial++ {
		payload := make([]byte, 8+rand.Intn(64))
		rand.Read(payload)

		sum := CRC.Checksum(payload)
		payload = append(payload, byte(sum), byte(sum>>8))

		if !VerifyCRC(payload) {
			t.Fatalf("trial %d: VerifyCRC rejected payload with its own checksum appended", trial)
		}
	}
}

func TestVerifyCRCRejectsCorruption(t *testing.T) {
	payload := []byte("hello, m17 packet mode")
	sum := CRC.Checksum(payload)
	good := append(append([]byte{}, payload...), byte(sum), byte(sum>>8))

	if !VerifyCRC(good) {
		t.Fatal("well-formed payload rejected")
	}

	corrupt := append([]byte{}, good...)
	corrupt[0] ^= 0x01
	if VerifyCRC(corrupt) {
		t.Fatal("corrupted payload accepted")
	}
}
