package lsf

import "fmt"

// callsignAlphabet is the 40-character base-40 alphabet M17 packs
// callsigns into: space, A-Z, 0-9, then -, /, .
const callsignAlphabet = " ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-/."

// EncodeCallsign packs an M17 callsign string into its 6-byte, base-40
// encoded field. The callsign is right-padded with spaces to 9 characters
// before encoding and must contain only characters present in
// callsignAlphabet.
func EncodeCallsign(callsign string) ([6]byte, error) {
	var out [6]byte

	if len(callsign) > 9 {
		return out, fmt.Errorf("callsign %q longer than 9 characters", callsign)
	}

	var n uint64
	for i := 0; i < 9; i++ {
		c := byte(' ')
		if i < len(callsign) {
			c = callsign[i]
		}

		idx := indexOf(c)
		if idx < 0 {
			return out, fmt.Errorf("callsign %q contains invalid character %q", callsign, c)
		}

		n = n*40 + uint64(idx)
	}

	for i := 5; i >= 0; i-- {
		out[i] = byte(n)
		n >>= 8
	}

	return out, nil
}

// DecodeCallsign unpacks a 6-byte base-40 encoded field back into a
// callsign string with trailing padding removed.
func DecodeCallsign(encoded [6]byte) (string, error) {
	var n uint64
	for _, b := range encoded {
		n = n<<8 | uint64(b)
	}

	// 40^9 - 1 is the largest representable encoded value.
	const maxEncoded = 262143999999999
	if n > maxEncoded {
		return "", fmt.Errorf("encoded callsign 0x%012X out of range", n)
	}

	var buf [9]byte
	for i := 8; i >= 0; i-- {
		buf[i] = callsignAlphabet[n%40]
		n /= 40
	}

	end := len(buf)
	for end > 0 && buf[end-1] == ' ' {
		end--
	}

	return string(buf[:end]), nil
}

func indexOf(c byte) int {
	for i := 0; i < len(callsignAlphabet); i++ {
		if callsignAlphabet[i] == c {
			return i
		}
	}
	return -1
}
