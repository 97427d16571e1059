package viterbi

import (
	"bytes"
	"math/rand"
	"testing"
)

// TestDecodeRoundTrip exercises the spec's Viterbi round-trip invariant:
// encoding then decoding noiseless (hard 0/1) soft bits returns the
// original information bits with cost 0.
func TestDecodeRoundTrip(t *testing.T) {
	cases := [][]byte{
		{0x00},
		{0xFF},
		{0x55, 0xAA, 0x0F, 0xF0},
		{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
	}

	dec := NewDecoder()
	for _, in := range cases {
		coded := Encode(in, 7)
		got, cost := dec.Decode(coded)

		want := in
		if !bytes.Equal(got, want) {
			t.Fatalf("round trip mismatch: in=%X got=%X", in, got)
		}
		if cost != 0 {
			t.Fatalf("noiseless decode of %X has nonzero cost %v", in, cost)
		}
	}
}

func TestDecodeRoundTripRandom(t *testing.T) {
	dec := NewDecoder()
	for trial := 0; trial < 64; trial++ {
		in := make([]byte, 1+rand.Intn(16))
		rand.Read(in)

		coded := Encode(in, 7)
		got, cost := dec.Decode(coded)
		if !bytes.Equal(got, in) {
			t.Fatalf("trial %d: round trip mismatch: in=%X got=%X", trial, in, got)
		}
		if cost != 0 {
			t.Fatalf("trial %d: nonzero cost %v for noiseless input", trial, cost)
		}
	}
}

// TestDecodePunctureRoundTrip exercises puncturing/depuncturing with each
// frame type's pattern in the round trip.
func TestDecodePunctureRoundTrip(t *testing.T) {
	patterns := map[string]PuncturePattern{
		"lsf":    LSFPuncture,
		"stream": StreamPuncture,
		"packet": PacketPuncture,
	}

	in := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	dec := NewDecoder()

	for name, pat := range patterns {
		coded := Encode(in, 7)
		punctured := Puncture(coded, pat)
		got, cost := dec.DecodePunctured(punctured, pat, len(coded))

		if !bytes.Equal(got, in) {
			t.Fatalf("%s: round trip mismatch: got=%X want=%X", name, got, in)
		}
		if cost != 0 {
			t.Fatalf("%s: nonzero cost %v for noiseless punctured input", name, cost)
		}
	}
}

// TestDecodeToleratesErrors checks that flipping a handful of coded bits
// still decodes correctly but raises the path cost above zero, matching
// the spec's noisy-channel quality-metric behavior.
func TestDecodeToleratesErrors(t *testing.T) {
	in := []byte{0x12, 0x34, 0x56, 0x78}
	coded := Encode(in, 7)

	noisy := append([]SoftBit(nil), coded...)
	noisy[3] = 1 - noisy[3]
	noisy[10] = 1 - noisy[10]

	dec := NewDecoder()
	got, cost := dec.Decode(noisy)

	if !bytes.Equal(got, in) {
		t.Fatalf("decode with 2 bit errors failed: got=%X want=%X", got, in)
	}
	if cost <= 0 {
		t.Fatalf("expected nonzero cost with bit errors, got %v", cost)
	}
}

// TestDecodeTailBitingRoundTrip exercises the PACKET frame type's
// tail-biting code: a noiseless encode/decode round trip must recover
// every input bit, with the decoder never told the true start state.
func TestDecodeTailBitingRoundTrip(t *testing.T) {
	cases := [][]byte{
		{0x00},
		{0xFF},
		{0x55, 0xAA, 0x0F, 0xF0},
		{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
	}

	dec := NewDecoder()
	for _, in := range cases {
		coded := EncodeTailBiting(in)
		got, cost := dec.DecodeTailBiting(coded)

		if !bytes.Equal(got, in) {
			t.Fatalf("tail-biting round trip mismatch: in=%X got=%X", in, got)
		}
		if cost != 0 {
			t.Fatalf("noiseless tail-biting decode of %X has nonzero cost %v", in, cost)
		}
	}
}

func TestDecodePuncturedTailBitingRoundTrip(t *testing.T) {
	in := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	coded := EncodeTailBiting(in)
	punctured := Puncture(coded, PacketPuncture)

	dec := NewDecoder()
	got, cost := dec.DecodePuncturedTailBiting(punctured, PacketPuncture, len(coded))

	if !bytes.Equal(got, in) {
		t.Fatalf("round trip mismatch: got=%X want=%X", got, in)
	}
	if cost != 0 {
		t.Fatalf("nonzero cost %v for noiseless punctured tail-biting input", cost)
	}
}

func BenchmarkDecode(b *testing.B) {
	in := make([]byte, 26) // LSF-sized payload
	rand.Read(in)
	coded := Encode(in, 7)

	dec := NewDecoder()
	b.ReportAllocs()
	b.SetBytes(int64(len(in)))
	for i := 0; i < b.N; i++ {
		dec.Decode(coded)
	}
}
