package framer

import "fmt"

// State is the Framer's lock state.
type State int

const (
	// Unlocked means no frame is currently being accumulated; the
	// Framer is waiting for a sync-word detection with DCD asserted.
	Unlocked State = iota
	// Synced means a sync word has been seen and the Framer is
	// accumulating the 368-bit body that follows it.
	Synced
)

func (s State) String() string {
	if s == Synced {
		return "SYNCED"
	}
	return "UNLOCKED"
}

// SyncKind identifies which of the four sync patterns opened the frame
// currently being accumulated.
type SyncKind int

const (
	SyncNone SyncKind = iota
	SyncLSF
	SyncStream
	SyncPacket
	SyncBERT
	// SyncLICH has no sync word of its own in the Sync Pattern Table; a
	// LICH fragment is carried inside a STREAM frame's body. It exists
	// here so the frame dispatcher's OutputFrame tagged union matches
	// the spec's variant list, but live sync detection never produces
	// it directly.
	SyncLICH
)

func (k SyncKind) String() string {
	switch k {
	case SyncLSF:
		return "LSF"
	case SyncStream:
		return "STREAM"
	case SyncPacket:
		return "PACKET"
	case SyncBERT:
		return "BERT"
	case SyncLICH:
		return "LICH"
	default:
		return "NONE"
	}
}

// unlockFrames is the number of consecutive DCD-false frame periods that
// drop the Framer back to Unlocked, per the spec's T_unlock ≈ 2 frames.
const unlockFrames = 2

// Framer runs the frame-accumulation state machine: it gathers exactly
// FrameBits of frame body following a sync-word detection, and resets to
// Unlocked if DCD stays false for more than T_unlock frame periods.
type Framer struct {
	state State
	kind  SyncKind
	bits  []bool

	dcdFalseFrames int
}

// NewFramer returns a Framer in the Unlocked state.
func NewFramer() *Framer {
	return &Framer{bits: make([]bool, 0, FrameBits)}
}

// State reports the current lock state.
func (f *Framer) State() State { return f.state }

// Sync reports a sync-word detection to the Framer. dcd must be true for
// the detection to be accepted; a detection while already Synced is
// ignored (the in-flight frame is not restarted).
func (f *Framer) Sync(kind SyncKind, dcd bool) {
	if f.state == Synced || !dcd {
		return
	}
	f.state = Synced
	f.kind = kind
	f.bits = f.bits[:0]
	f.dcdFalseFrames = 0
}

// Push appends one symbol's worth of bits (2 bits per M17 4-level symbol)
// to the in-flight frame. It returns the completed frame body and its
// SyncKind once FrameBits have been gathered, resetting to Unlocked for
// the next sync; otherwise ok is false.
func (f *Framer) Push(bit0, bit1 bool) (body []bool, kind SyncKind, ok bool) {
	if f.state != Synced {
		return nil, SyncNone, false
	}

	f.bits = append(f.bits, bit0, bit1)
	if len(f.bits) < FrameBits {
		return nil, SyncNone, false
	}

	body = make([]bool, FrameBits)
	copy(body, f.bits[:FrameBits])
	kind = f.kind

	f.state = Unlocked
	f.kind = SyncNone
	f.bits = f.bits[:0]

	return body, kind, true
}

// TickDCD reports one frame period's worth of DCD state. When DCD has
// been false for more than T_unlock frame periods, the Framer drops back
// to Unlocked and discards any in-flight frame, regardless of state.
func (f *Framer) TickDCD(dcd bool) {
	if dcd {
		f.dcdFalseFrames = 0
		return
	}

	f.dcdFalseFrames++
	if f.dcdFalseFrames > unlockFrames {
		f.state = Unlocked
		f.kind = SyncNone
		f.bits = f.bits[:0]
	}
}

func (f *Framer) String() string {
	return fmt.Sprintf("Framer{state:%s kind:%s gathered:%d}", f.state, f.kind, len(f.bits))
}
