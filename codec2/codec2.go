// Package codec2 defines the minimal contract the demodulator needs from
// a Codec2 speech decoder. Codec2 itself is a C library; a real binding
// is a cgo wrapper around libcodec2 and is out of scope here (Codec2
// speech decoding is one of the spec's external collaborators) — this
// package only carries the interface and a silence-producing null
// implementation used when no real decoder is wired in.
package codec2

// FrameBytes is the size of one Codec2 3200 bit/s frame (40 ms of
// speech).
const FrameBytes = 8

// Samples is the number of 16-bit PCM samples one Codec2 frame decodes
// to, at 8 kHz.
const Samples = 160

// Decoder turns 8-byte Codec2 frames into 160 samples of 16-bit PCM.
// Create and Close bracket the handle's lifetime; the demodulator
// acquires one Decoder per session and releases it on every exit path.
type Decoder interface {
	Decode(frame [FrameBytes]byte) [Samples]int16
	Close() error
}

// Create returns the null Decoder. A real build wires in a cgo-backed
// implementation satisfying the same interface; nothing else in this
// package depends on which one is used.
func Create() (Decoder, error) {
	return nullDecoder{}, nil
}

// nullDecoder satisfies Decoder by producing silence, standing in for a
// real Codec2 handle so the pipeline is runnable without the external
// dependency.
type nullDecoder struct{}

func (nullDecoder) Decode([FrameBytes]byte) [Samples]int16 {
	var out [Samples]int16
	return out
}

func (nullDecoder) Close() error { return nil }
