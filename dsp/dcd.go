package dsp

import "math"

// dcdAttack/dcdDecay set the single-pole IIR time constants for the
// short-window signal power estimate; dcdNoiseDecay sets the (slower)
// long-window noise-floor estimate. Tuned for roughly 500 Hz loop
// bandwidth at 48 kHz, per the spec's DCD component design.
const (
	dcdAttack     = 0.35
	dcdDecay      = 0.05
	dcdNoiseDecay = 0.002
)

// DCD tracks short-term signal power against a long-term noise floor
// with asymmetric-attack single-pole IIRs, and reports a hysteresis-gated
// boolean carrier-detect flag. hysteresisOn/Off bound the signal/noise
// ratio at which the flag asserts and releases, preventing chatter right
// at threshold.
type DCD struct {
	power    float64
	noise    float64
	asserted bool

	hysteresisOn  float64
	hysteresisOff float64
}

// NewDCD returns a DCD with the noise floor seeded to a small positive
// value so the very first ratio computation is well-defined, gated by
// the given hysteresis thresholds.
func NewDCD(hysteresisOn, hysteresisOff float64) *DCD {
	return &DCD{noise: 1e-6, hysteresisOn: hysteresisOn, hysteresisOff: hysteresisOff}
}

// Update feeds one filtered sample's instantaneous power into the
// tracker and returns the updated dcd flag.
func (d *DCD) Update(sample float64) bool {
	inst := sample * sample

	if inst > d.power {
		d.power += dcdAttack * (inst - d.power)
	} else {
		d.power += dcdDecay * (inst - d.power)
	}
	d.noise += dcdNoiseDecay * (inst - d.noise)
	if d.noise < 1e-9 {
		d.noise = 1e-9
	}

	ratio := d.power / d.noise
	switch {
	case !d.asserted && ratio > d.hysteresisOn:
		d.asserted = true
	case d.asserted && ratio < d.hysteresisOff:
		d.asserted = false
	}

	return d.asserted
}

// Ratio reports the current signal-to-noise-floor power ratio, exposed
// for diagnostics.
func (d *DCD) Ratio() float64 {
	if d.noise <= 0 {
		return math.Inf(1)
	}
	return d.power / d.noise
}

// Asserted reports the current dcd flag without updating state.
func (d *DCD) Asserted() bool { return d.asserted }
