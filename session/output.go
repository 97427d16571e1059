// Package session assembles the decoded-frame dispatcher and per-stream
// state (packet accumulator, PRBS validator, Codec2 handle, sink) into a
// single DemodSession, and drives the sample-by-sample pipeline.
package session

import "github.com/bemasher/m17-demod/lsf"

// FrameKind tags an OutputFrame's variant, matching the spec's tagged
// union over {LSF, LICH, STREAM, PACKET, BERT}.
type FrameKind int

const (
	KindLSF FrameKind = iota
	KindLICH
	KindStream
	KindBasicPacket
	KindFullPacket
	KindBERT
	KindEndOfStream
)

func (k FrameKind) String() string {
	switch k {
	case KindLSF:
		return "LSF"
	case KindLICH:
		return "LICH"
	case KindStream:
		return "STREAM"
	case KindBasicPacket:
		return "BASIC_PACKET"
	case KindFullPacket:
		return "FULL_PACKET"
	case KindBERT:
		return "BERT"
	case KindEndOfStream:
		return "END_OF_STREAM"
	default:
		return "UNKNOWN"
	}
}

// OutputFrame is a tagged union over the decoded frame variants the
// dispatcher can deliver to a Sink. Only the field matching Kind is
// populated.
type OutputFrame struct {
	Kind FrameKind
	Cost float64

	LSF     lsf.LSF
	LICH    [5]byte
	Stream  [18]byte
	Packet  []byte // accumulated PACKET payload, for BASIC_PACKET/FULL_PACKET
	AX25    string // pretty-printed AX.25 text, for BASIC_PACKET
	BERTBit byte
}

// Diagnostics is one telemetry snapshot, delivered once every 184 symbol
// periods, mirroring the original implementation's status line.
type Diagnostics struct {
	DCD             bool
	EVM             float64
	Deviation       float64
	FrequencyOffset float64
	Locked          bool
	Clock           float64
	ViterbiCost     float64
	BER             float64
	BitCount        uint64
}

// Sink is the capability a caller supplies to receive decoded frames and
// diagnostics, modeled as a small interface rather than a pair of
// closures so it can be parameterized once at session construction with
// no virtual-dispatch cost on the hot sample path.
type Sink interface {
	OnFrame(OutputFrame)
	OnDiagnostics(Diagnostics)
}
