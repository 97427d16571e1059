package viterbi

// PuncturePattern marks which positions of an unpunctured rate-1/2 coded
// bit stream survive puncturing: true keeps the bit, false drops it. Each
// M17 frame type repeats its own pattern over the coded stream and uses it
// for both puncturing at the transmitter and depuncturing (reinserting
// SoftMaybe at the dropped positions) at the receiver.
type PuncturePattern []bool

// LSFPuncture is applied to the 488 coded bits of an LSF (240 information
// bits plus the 4 flush bits), dropping 120 of them to fit the 368-bit
// frame body: a 61-bit pattern, period 8 with a 5-bit tail, repeated 8
// times over the full coded stream.
var LSFPuncture = PuncturePattern{
	true, true, false, true, true, true, false, true,
	true, true, false, true, true, true, false, true,
	true, true, false, true, true, true, false, true,
	true, true, false, true, true, true, false, true,
	true, true, false, true, true, true, false, true,
	true, true, false, true, true, true, false, true,
	true, true, false, true, true, true, false, true,
	true, true, false, true, true,
}

// StreamPuncture is applied per 2-bit-pair group to the coded bits of each
// STREAM frame's payload, dropping every 12th coded bit.
var StreamPuncture = PuncturePattern{
	true, true, true, true, true, true, true, true, true, true, true, false,
}

// PacketPuncture is applied to the coded bits of a PACKET frame's payload,
// dropping every 8th coded bit.
var PacketPuncture = PuncturePattern{
	true, true, true, true, true, true, true, false,
}

// Puncture drops bits from coded at the false positions of pattern,
// repeating the pattern as needed to cover the full length of coded.
func Puncture(coded []SoftBit, pattern PuncturePattern) []SoftBit {
	out := make([]SoftBit, 0, len(coded))
	for i, bit := range coded {
		if pattern[i%len(pattern)] {
			out = append(out, bit)
		}
	}
	return out
}

// Depuncture reinserts SoftMaybe at the positions pattern drops, restoring
// punctured's length to what the unpunctured coded stream of length
// outLen would have had.
func Depuncture(punctured []SoftBit, pattern PuncturePattern, outLen int) []SoftBit {
	out := make([]SoftBit, outLen)
	src := 0
	for i := range out {
		if pattern[i%len(pattern)] {
			if src < len(punctured) {
				out[i] = punctured[src]
			}
			src++
		} else {
			out[i] = SoftMaybe
		}
	}
	return out
}
