package framer

// randomizeSeq is the fixed 46-byte (368-bit) XOR sequence M17 scrambles
// every frame body with. The same sequence both randomizes at the
// transmitter and derandomizes at the receiver, since XOR is its own
// inverse.
var randomizeSeq = [46]byte{
	0xD6, 0xB5, 0xE2, 0x30, 0x82, 0xFF, 0x84, 0x62, 0xBA, 0x4E, 0x96, 0x90, 0xD8, 0x98, 0xDD, 0x5D, 0x0C, 0xC8, 0x52, 0x43, 0x91, 0x1D, 0xF8,
	0x6E, 0x68, 0x2F, 0x35, 0xDA, 0x14, 0xEA, 0xCD, 0x76, 0x19, 0x8D, 0xD5, 0x80, 0xD1, 0x33, 0x87, 0x13, 0x57, 0x18, 0x2D, 0x29, 0x78, 0xC3,
}

// Derandomize XORs a 368-bit (46-byte) frame body against the fixed
// randomizer sequence, undoing the transmitter's scrambling. It is its
// own inverse, so the same call also randomizes.
func Derandomize(body []byte) []byte {
	out := make([]byte, len(body))
	for i, b := range body {
		out[i] = b ^ randomizeSeq[i%len(randomizeSeq)]
	}
	return out
}

// DerandomizeBits applies the randomizer sequence bit-by-bit to a
// []bool representation of the frame body, MSB-first within each byte of
// randomizeSeq.
func DerandomizeBits(bits []bool) []bool {
	out := make([]bool, len(bits))
	for i, bit := range bits {
		byteIdx := (i / 8) % len(randomizeSeq)
		mask := randomizeSeq[byteIdx]&(1<<uint(7-i%8)) != 0
		out[i] = bit != mask
	}
	return out
}
