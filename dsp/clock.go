package dsp

// clockGain sets the first-order timing loop's proportional response to
// each Gardner error sample.
const clockGain = 0.02

// ClockRecovery tracks the fractional sample offset of the symbol clock
// as a countdown to the next symbol instant. It is seeded by sync
// detections, which pin the phase, and refined between instants by a
// Gardner-style zero-crossing error computed on the soft symbol stream.
// It outputs exactly one soft symbol per symbol period.
type ClockRecovery struct {
	samplesPerSymbol float64 // current estimate, nominally SamplesPerSymbol
	countdown        float64 // samples remaining until the next symbol instant
	deviation        float64 // last Gardner error, for diagnostics
	locked           bool

	midSample float64
	haveMid   bool
}

// NewClockRecovery returns a ClockRecovery at the nominal symbol rate,
// unlocked.
func NewClockRecovery() *ClockRecovery {
	return &ClockRecovery{
		samplesPerSymbol: SamplesPerSymbol,
		countdown:        SamplesPerSymbol,
	}
}

// SeedPhase pins the tracked countdown to a sync detection's sub-symbol
// phase estimate (samples until the next symbol instant) and marks the
// loop locked.
func (c *ClockRecovery) SeedPhase(phase int) {
	c.countdown = float64(phase)
	c.haveMid = false
	c.locked = true
}

// Unlock marks the loop unlocked; it continues free-running on its last
// known phase and rate estimate until the next SeedPhase.
func (c *ClockRecovery) Unlock() {
	c.locked = false
}

// Locked reports whether the loop has a valid phase estimate.
func (c *ClockRecovery) Locked() bool { return c.locked }

// Step advances the clock by one input sample and returns the
// interpolated soft symbol when the countdown reaches a symbol instant,
// with ok true. It also samples the mid-symbol point half a symbol
// period beforehand for the Gardner error term.
func (c *ClockRecovery) Step(sample float64) (symbol float64, ok bool) {
	c.countdown--

	if !c.haveMid && c.countdown <= c.samplesPerSymbol/2 {
		c.midSample = sample
		c.haveMid = true
	}

	if c.countdown > 0 {
		return 0, false
	}

	symbol = sample

	if c.haveMid {
		// Gardner error: energy difference between the mid-symbol sample
		// and the decision-instant sample indicates early/late timing.
		c.deviation = c.midSample*c.midSample - sample*sample
		c.samplesPerSymbol += clockGain * c.deviation
		if c.samplesPerSymbol < SamplesPerSymbol/2 {
			c.samplesPerSymbol = SamplesPerSymbol / 2
		}
		if c.samplesPerSymbol > SamplesPerSymbol*1.5 {
			c.samplesPerSymbol = SamplesPerSymbol * 1.5
		}
	}

	c.haveMid = false
	c.countdown += c.samplesPerSymbol

	return symbol, true
}

// Deviation reports the last Gardner timing error, for diagnostics.
func (c *ClockRecovery) Deviation() float64 { return c.deviation }

// FrequencyOffset reports the accumulated slow symbol-rate correction
// relative to the nominal SamplesPerSymbol, for diagnostics.
func (c *ClockRecovery) FrequencyOffset() float64 { return c.samplesPerSymbol - SamplesPerSymbol }

// Rate reports the loop's current samples-per-symbol estimate, for
// diagnostics.
func (c *ClockRecovery) Rate() float64 { return c.samplesPerSymbol }
