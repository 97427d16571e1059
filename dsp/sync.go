package dsp

import "gonum.org/v1/gonum/floats"

// SymbolsPerSyncWord is the length, in symbols, of each M17 sync pattern.
const SymbolsPerSyncWord = 8

// SyncPattern names one of the M17 sync-word patterns; see the Sync
// Pattern Table in the M17 specification. Values are the 4-level soft
// symbol sequence the pattern's 16 bits decode to (2 bits/symbol, MSB
// first).
type SyncPattern int

const (
	SyncLSF SyncPattern = iota
	SyncStream
	SyncPacket
	SyncBERT
)

func (p SyncPattern) String() string {
	switch p {
	case SyncLSF:
		return "LSF"
	case SyncStream:
		return "STREAM"
	case SyncPacket:
		return "PACKET"
	case SyncBERT:
		return "BERT"
	default:
		return "UNKNOWN"
	}
}

// syncWordBits, big-endian 16-bit constants per the spec's Sync Pattern
// Table; bit 0 is earliest in time.
const (
	syncWordLSF    = 0x55F7
	syncWordStream = 0xFF5D
	syncWordPacket = 0x75FF
	syncWordBERT   = 0xDF55
)

// dibitToSymbol maps a 2-bit dibit to its M17 4-level soft symbol value,
// MSB first.
var dibitToSymbol = [4]float64{+1, +3, -1, -3}

// syncTemplates holds each pattern's 8-symbol reference waveform,
// precomputed from its 16-bit word, in a fixed order so ties between
// patterns at equal score and phase resolve deterministically.
var syncTemplates = []struct {
	pattern  SyncPattern
	template []float64
}{
	{SyncLSF, wordToSymbols(syncWordLSF)},
	{SyncStream, wordToSymbols(syncWordStream)},
	{SyncPacket, wordToSymbols(syncWordPacket)},
	{SyncBERT, wordToSymbols(syncWordBERT)},
}

// SliceSymbol quantizes a soft 4-level symbol to its nearest constellation
// point and returns the corresponding dibit as two bits, MSB first, per
// dibitToSymbol's {+1,+3,-1,-3} convention.
func SliceSymbol(sample float64) (bit0, bit1 bool) {
	var dibit int
	switch {
	case sample >= 2:
		dibit = 1 // +3
	case sample >= 0:
		dibit = 0 // +1
	case sample >= -2:
		dibit = 2 // -1
	default:
		dibit = 3 // -3
	}
	return dibit&2 != 0, dibit&1 != 0
}

func wordToSymbols(word uint16) []float64 {
	out := make([]float64, SymbolsPerSyncWord)
	for i := range out {
		shift := 14 - 2*i
		dibit := (word >> uint(shift)) & 0x3
		out[i] = dibitToSymbol[dibit]
	}
	return out
}

// Detection reports a sync-word match: which pattern, at which
// sub-symbol phase, with what score.
type Detection struct {
	Pattern SyncPattern
	Phase   int
	Score   float64
}

// Correlator maintains a circular buffer of the last
// SymbolsPerSyncWord*SamplesPerSymbol filtered samples and searches it,
// at every sub-symbol phase, against each sync pattern's reference
// waveform. threshold is the minimum raw correlation score (the window's
// samples dotted with the template) accepted as a detection; the score is
// not normalized to the local signal amplitude, so it scales with it.
type Correlator struct {
	buf      []float64
	pos      int
	filled   int
	suppress int

	threshold float64
}

// NewCorrelator returns an empty Correlator gated by the given minimum
// correlation score.
func NewCorrelator(threshold float64) *Correlator {
	return &Correlator{
		buf:       make([]float64, SymbolsPerSyncWord*SamplesPerSymbol),
		threshold: threshold,
	}
}

// Push appends one matched-filter output sample and, once the buffer is
// full, searches every sub-symbol phase for a sync match. It is
// edge-triggered: a successful detection suppresses re-detection for the
// following SamplesPerSymbol pushes (the next symbol period).
func (c *Correlator) Push(sample float64) (Detection, bool) {
	c.buf[c.pos] = sample
	c.pos++
	if c.pos == len(c.buf) {
		c.pos = 0
	}
	if c.filled < len(c.buf) {
		c.filled++
	}

	if c.suppress > 0 {
		c.suppress--
		return Detection{}, false
	}
	if c.filled < len(c.buf) {
		return Detection{}, false
	}

	best := Detection{Score: c.threshold}
	found := false

	window := make([]float64, SymbolsPerSyncWord)
	for phase := 0; phase < SamplesPerSymbol; phase++ {
		for i := range window {
			idx := (c.pos + phase + i*SamplesPerSymbol) % len(c.buf)
			window[i] = c.buf[idx]
		}

		for _, st := range syncTemplates {
			score := floats.Dot(window, st.template)
			if score > best.Score {
				best = Detection{Pattern: st.pattern, Phase: phase, Score: score}
				found = true
			}
		}
	}

	if found {
		c.suppress = SamplesPerSymbol
	}
	return best, found
}
