// Package viterbi implements the M17 rate-1/2, K=5 convolutional code: a
// 16-state trellis (generator polynomials G1=0x19, G2=0x17), its puncture
// patterns, and a soft-decision Viterbi decoder with Euclidean branch
// metrics.
package viterbi

// ConstraintLength is K for the M17 convolutional code.
const ConstraintLength = 5

// States is the number of trellis states, 2^(K-1).
const States = 1 << (ConstraintLength - 1)

// Generator polynomials, in the convention where bit 0 is the tap on the
// current input bit and bit (K-1) is the tap on the oldest bit still in
// the shift register.
const (
	G1 = 0x19 // 11001
	G2 = 0x17 // 10111
)

// SoftBit is a soft bit value in [0, 1]: 0 means "definitely 0", 1 means
// "definitely 1", and 0.5 is the neutral value inserted for punctured
// positions.
type SoftBit float64

const (
	SoftFalse SoftBit = 0.0
	SoftMaybe SoftBit = 0.5
	SoftTrue  SoftBit = 1.0
)

// branchOutputs returns the expected (hard) G1, G2 output bits for the
// transition out of state predState on input bit, as SoftBit values so
// they can be differenced directly against received soft symbols.
func branchOutputs(predState, bit int) (g1, g2 SoftBit) {
	window := predState<<1 | bit
	return parityBit(window, G1), parityBit(window, G2)
}

// nextState computes the trellis state reached from predState on input
// bit; its low bit is always bit, which lets traceback recover the
// decoded bit straight from the destination state.
func nextState(predState, bit int) int {
	return (predState<<1 | bit) & (States - 1)
}

func parityBit(window, poly int) SoftBit {
	p := window & poly
	bits := 0
	for p != 0 {
		bits ^= p & 1
		p >>= 1
	}
	if bits != 0 {
		return SoftTrue
	}
	return SoftFalse
}

// Encode runs the M17 convolutional encoder over in, treating the most
// significant bit of byte 0 as the first bit transmitted, using only the
// high finalBit+1 bits of the last byte (finalBit in [0,7]), and appending
// 4 zero flush bits to
// terminate the trellis at state 0. It returns the unpunctured, rate-1/2
// coded bit stream (2 bits per information bit) as hard SoftBit values.
//
// Encode is provided for round-trip testing of the decoder; the
// demodulator itself never transmits.
func Encode(in []byte, finalBit int) []SoftBit {
	bits := make([]int, 0, len(in)*8+4)
	for i, b := range in {
		n := 8
		if i == len(in)-1 {
			n = finalBit + 1
		}
		for j := 0; j < n; j++ {
			bits = append(bits, int(b>>(7-j))&1)
		}
	}
	bits = append(bits, 0, 0, 0, 0)

	out := make([]SoftBit, 0, 2*len(bits))
	state := 0
	for _, bit := range bits {
		window := state<<1 | bit
		out = append(out, parityBit(window, G1), parityBit(window, G2))
		state = (state<<1 | bit) & (States - 1)
	}

	return out
}

// EncodeTailBiting runs the M17 convolutional encoder over in with no
// flush bits, rooting the trellis at the state its own last 4 input bits
// would produce so the final state comes back around to the same value
// (state after 4 or more steps depends only on the most recent 4 input
// bits, never on where the trellis started, so this is exact, not an
// approximation). in must be byte-aligned and carry at least 4 bits.
//
// EncodeTailBiting is provided for round-trip testing of the tail-biting
// decoder; the demodulator itself never transmits.
func EncodeTailBiting(in []byte) []SoftBit {
	bits := make([]int, 0, len(in)*8)
	for _, b := range in {
		for j := 0; j < 8; j++ {
			bits = append(bits, int(b>>(7-j))&1)
		}
	}

	state := 0
	for _, bit := range bits[len(bits)-4:] {
		state = (state<<1 | bit) & (States - 1)
	}

	out := make([]SoftBit, 0, 2*len(bits))
	for _, bit := range bits {
		window := state<<1 | bit
		out = append(out, parityBit(window, G1), parityBit(window, G2))
		state = (state<<1 | bit) & (States - 1)
	}

	return out
}
