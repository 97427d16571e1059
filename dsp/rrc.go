// Package dsp implements the signal-processing front end of the
// demodulator: RRC matched filtering, data-carrier detection,
// sync-word correlation, and symbol clock recovery.
package dsp

import "math"

// SamplesPerSymbol is the oversampling ratio the filter, correlator and
// clock recovery loop are built around: 48 kHz sampling at 4800 baud.
const SamplesPerSymbol = 8

// rrcRolloff and rrcSpan fix the RRC matched filter's shape: roll-off
// β ≈ 0.5, one-sided span of 5 symbols, giving 2*5*SamplesPerSymbol+1 taps.
const (
	rrcRolloff = 0.5
	rrcSpan    = 5
)

// rrcTaps holds the compile-time root-raised-cosine impulse response,
// computed once at init from rrcRolloff/rrcSpan rather than carried as a
// literal table.
var rrcTaps []float64

func init() {
	n := 2*rrcSpan*SamplesPerSymbol + 1
	rrcTaps = make([]float64, n)

	center := n / 2
	for i := range rrcTaps {
		t := float64(i-center) / float64(SamplesPerSymbol)
		rrcTaps[i] = rrcImpulse(t, rrcRolloff)
	}

	// Normalize to unit energy so filter output amplitude tracks input
	// amplitude regardless of tap count.
	var energy float64
	for _, h := range rrcTaps {
		energy += h * h
	}
	norm := 1 / math.Sqrt(energy)
	for i := range rrcTaps {
		rrcTaps[i] *= norm
	}
}

// rrcImpulse evaluates the root-raised-cosine impulse response at time t
// (in symbol periods) for roll-off factor beta, handling the two
// removable singularities (t == 0 and t == ±1/(4*beta)) by their limits.
func rrcImpulse(t, beta float64) float64 {
	if t == 0 {
		return 1 - beta + 4*beta/math.Pi
	}

	denom := 1 - math.Pow(4*beta*t, 2)
	if math.Abs(denom) < 1e-9 {
		return (beta / math.Sqrt2) * ((1+2/math.Pi)*math.Sin(math.Pi/(4*beta)) + (1-2/math.Pi)*math.Cos(math.Pi/(4*beta)))
	}

	num := math.Sin(math.Pi*t*(1-beta)) + 4*beta*t*math.Cos(math.Pi*t*(1+beta))
	return num / (math.Pi * t * denom)
}

// MatchedFilter is a fixed-length FIR filter with RRC taps matched to the
// M17 symbol pulse shape. It is pure and stateful: Push consumes one
// sample and returns one filtered sample, with O(len(taps)) work and no
// steady-state allocation.
type MatchedFilter struct {
	taps []float64
	ring []float64
	pos  int
}

// NewMatchedFilter returns a MatchedFilter using the package's compiled
// RRC tap table.
func NewMatchedFilter() *MatchedFilter {
	return &MatchedFilter{
		taps: rrcTaps,
		ring: make([]float64, len(rrcTaps)),
	}
}

// Push shifts sample into the filter's delay line and returns the
// filtered output for the current window.
func (f *MatchedFilter) Push(sample float64) float64 {
	f.ring[f.pos] = sample
	f.pos++
	if f.pos == len(f.ring) {
		f.pos = 0
	}

	var acc float64
	n := len(f.taps)
	for i, h := range f.taps {
		idx := f.pos + i
		if idx >= n {
			idx -= n
		}
		acc += h * f.ring[idx]
	}
	return acc
}
