package lsf

import (
	"math/rand"
	"testing"
)

func TestCallsignRoundTrip(t *testing.T) {
	cases := []string{"N0CALL", "AB1CDE", "W1AW", "", "A", "M17-001"}

	for _, cs := range cases {
		enc, err := EncodeCallsign(cs)
		if err != nil {
			t.Fatalf("EncodeCallsign(%q): %v", cs, err)
		}

		dec, err := DecodeCallsign(enc)
		if err != nil {
			t.Fatalf("DecodeCallsign(%X): %v", enc, err)
		}

		if dec != cs {
			t.Fatalf("round trip mismatch: %q -> %X -> %q", cs, enc, dec)
		}
	}
}

func TestEncodeCallsignRejectsInvalidChar(t *testing.T) {
	if _, err := EncodeCallsign("n0call"); err == nil {
		t.Fatal("expected error for lowercase callsign")
	}
}

// TestCRCRejectsBitFlips exercises invariant 3 from the spec: a crafted LSF
// with a correct trailing CRC is accepted, and flipping any payload bit
// causes rejection.
func TestCRCRejectsBitFlips(t *testing.T) {
	dst, _ := EncodeCallsign("N0CALL")
	src, _ := EncodeCallsign("AB1CDE")

	lsf := LSF{Dst: dst, Src: src, Type: 1}
	raw := lsf.Bytes()

	if !lsf.Good(raw) {
		t.Fatal("well-formed LSF rejected")
	}

	for bit := 0; bit < 28*8; bit++ {
		flipped := append([]byte(nil), raw...)
		flipped[bit/8] ^= 1 << (7 - uint(bit%8))

		if lsf.Good(flipped) {
			t.Fatalf("bit flip at %d accepted", bit)
		}
	}
}

func TestCRCFuzz(t *testing.T) {
	for trial := 0; trial < 256; trial++ {
		raw := make([]byte, Size)
		rand.Read(raw[:28])

		sum := CRC.Checksum(raw[:28])
		raw[28] = byte(sum >> 8)
		raw[29] = byte(sum)

		lsf, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if !lsf.Good(raw) {
			t.Fatalf("generated LSF %X failed its own CRC", raw)
		}
	}
}
