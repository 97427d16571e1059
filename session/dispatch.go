package session

import (
	"encoding/binary"
	"io"

	"golang.org/x/xerrors"

	"github.com/bemasher/m17-demod/ax25"
	"github.com/bemasher/m17-demod/bert"
	"github.com/bemasher/m17-demod/codec2"
	"github.com/bemasher/m17-demod/framer"
	"github.com/bemasher/m17-demod/internal/config"
	"github.com/bemasher/m17-demod/internal/rlog"
	"github.com/bemasher/m17-demod/lsf"
	"github.com/bemasher/m17-demod/packet"
)

// Dispatcher implements §4.9's frame-type dispatch against already
// decoded frame bytes (post derandomize, deinterleave, and Viterbi
// decode), independent of the real-time sample pipeline so it can be
// exercised directly by tests.
type Dispatcher struct {
	Sink         Sink
	Codec2       codec2.Decoder
	Audio        io.Writer // destination for decoded PCM (STREAM) and raw payload (FULL_PACKET)
	NoiseBlanker bool
	DisplayLSF   bool
	Thresholds   config.Thresholds
	Log          *rlog.Logger

	currentLSF         lsf.LSF
	haveLSF            bool
	packetAcc          *packet.Accumulator
	packetFrameCounter int
	packetIsBasic      bool

	bertValidator *bert.Validator
}

// NewDispatcher returns a Dispatcher with its packet accumulator and
// BERT validator freshly reset.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		Thresholds:    config.Default(),
		packetAcc:     packet.NewAccumulator(nil),
		bertValidator: bert.NewValidator(),
	}
}

// NotifyDCD reports the current data-carrier-detect state to the
// dispatcher. Per the spec's PRBS-9 invariant, a validator nominally "in
// sync" is reset the moment DCD drops, rather than left to free-run on
// noise until its own error counters eventually declare it unsynced.
func (d *Dispatcher) NotifyDCD(dcd bool) {
	if !dcd && d.bertValidator.Synced() {
		d.bertValidator.Reset()
	}
}

// BER reports the BERT validator's current running bit error rate, for
// diagnostics.
func (d *Dispatcher) BER() float64 { return d.bertValidator.BER() }

// Dispatch implements the frame dispatcher. kind identifies which sync
// pattern opened the frame; decoded is the Viterbi-decoded information
// bits packed into bytes (tail-trimmed for terminated codes, complete
// for PACKET's tail-biting code); cost is the Viterbi path metric.
func (d *Dispatcher) Dispatch(kind framer.SyncKind, decoded []byte, cost float64) error {
	switch kind {
	case framer.SyncLSF:
		return d.dispatchLSF(decoded, cost)
	case framer.SyncLICH:
		return d.dispatchLICH(decoded, cost)
	case framer.SyncStream:
		return d.dispatchStream(decoded, cost)
	case framer.SyncPacket:
		return d.dispatchPacket(decoded, cost)
	case framer.SyncBERT:
		return d.dispatchBERT(decoded, cost)
	default:
		return xerrors.Errorf("session: unknown sync kind %v", kind)
	}
}

func (d *Dispatcher) dispatchLSF(decoded []byte, cost float64) error {
	l, err := lsf.Parse(decoded)
	if err != nil {
		return xerrors.Errorf("session: parsing LSF: %w", err)
	}

	if !l.Good(decoded) {
		if d.Log != nil {
			d.Log.WithField("cost", cost).Warn("lsf crc mismatch")
		}
		return nil
	}

	d.currentLSF = l
	d.haveLSF = true

	// RAW packet mode carries an opaque user payload, dispatched as
	// FULL_PACKET; ENCAPSULATED (and reserved, which falls back to the
	// same behavior) carries an AX.25 frame seeded with the LSF bytes,
	// dispatched as BASIC_PACKET with CRC verification.
	d.packetIsBasic = l.IsEncapsulatedPacket()
	if !l.Type.IsStream() && l.Type.PacketSubType() == lsf.PacketReserved && d.Log != nil {
		d.Log.Warn("lsf reserved packet type, seeding as ENCAPSULATED")
	}
	d.packetAcc = packet.NewAccumulator(nil)
	d.packetFrameCounter = 0
	if d.packetIsBasic {
		d.packetAcc = packet.NewAccumulator(decoded)
	}

	if d.DisplayLSF && d.Sink != nil {
		d.Sink.OnFrame(OutputFrame{Kind: KindLSF, Cost: cost, LSF: l})
	}

	return nil
}

func (d *Dispatcher) dispatchLICH(decoded []byte, cost float64) error {
	if d.Log != nil {
		d.Log.Debug("lich fragment received, no payload action")
	}
	if d.Sink == nil || len(decoded) < 5 {
		return nil
	}
	var lich [5]byte
	copy(lich[:], decoded)
	d.Sink.OnFrame(OutputFrame{Kind: KindLICH, Cost: cost, LICH: lich})
	return nil
}

func (d *Dispatcher) dispatchStream(decoded []byte, cost float64) error {
	if len(decoded) < 18 {
		return xerrors.Errorf("session: stream frame too short: %d bytes", len(decoded))
	}

	var payload [18]byte
	copy(payload[:], decoded)

	endOfStream := cost < float64(d.Thresholds.ViterbiGood) && payload[0]&0x80 != 0
	if endOfStream {
		if d.Sink != nil {
			d.Sink.OnFrame(OutputFrame{Kind: KindEndOfStream, Cost: cost, Stream: payload})
		}
		return nil
	}

	if d.Sink != nil {
		d.Sink.OnFrame(OutputFrame{Kind: KindStream, Cost: cost, Stream: payload})
	}

	blank := d.NoiseBlanker && cost > float64(d.Thresholds.ViterbiBad)
	if d.Audio == nil {
		return nil
	}

	if blank {
		return d.writeSilence()
	}

	return d.writeCodec2(payload)
}

func (d *Dispatcher) writeSilence() error {
	var silence [320]byte
	if _, err := d.Audio.Write(silence[:]); err != nil {
		return xerrors.Errorf("session: writing blanked audio: %w", err)
	}
	if _, err := d.Audio.Write(silence[:]); err != nil {
		return xerrors.Errorf("session: writing blanked audio: %w", err)
	}
	return nil
}

func (d *Dispatcher) writeCodec2(payload [18]byte) error {
	if d.Codec2 == nil {
		return nil
	}

	var half1, half2 [codec2.FrameBytes]byte
	copy(half1[:], payload[2:10])
	copy(half2[:], payload[10:18])

	for _, half := range [2][codec2.FrameBytes]byte{half1, half2} {
		pcm := d.Codec2.Decode(half)
		buf := make([]byte, 2*len(pcm))
		for i, s := range pcm {
			binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
		}
		if _, err := d.Audio.Write(buf); err != nil {
			return xerrors.Errorf("session: writing decoded audio: %w", err)
		}
	}

	return nil
}

func (d *Dispatcher) dispatchPacket(decoded []byte, cost float64) error {
	seg, err := packet.ParseSegment(decoded)
	if err != nil {
		return xerrors.Errorf("session: parsing packet segment: %w", err)
	}

	if !seg.Last() {
		if seg.Index() != d.packetFrameCounter {
			if d.Log != nil {
				d.Log.WithField("got", seg.Index()).WithField("want", d.packetFrameCounter).
					Warn("packet frame sequence error")
			}
			d.packetAcc = packet.NewAccumulator(nil)
			d.packetFrameCounter = 0
			return nil
		}
		d.packetFrameCounter++
	}

	if err := d.packetAcc.Append(seg); err != nil {
		d.packetAcc = packet.NewAccumulator(nil)
		d.packetFrameCounter = 0
		return nil
	}

	if !d.packetAcc.Complete() {
		return nil
	}

	payload := d.packetAcc.Payload()

	if d.packetIsBasic {
		if !packet.VerifyCRC(payload) {
			if d.Log != nil {
				d.Log.WithField("cost", cost).Warn("packet checksum error")
			}
			return nil
		}

		frame, err := ax25.Parse(payload[:len(payload)-2])
		if err != nil {
			return xerrors.Errorf("session: parsing AX.25 frame: %w", err)
		}
		if d.Sink != nil {
			d.Sink.OnFrame(OutputFrame{Kind: KindBasicPacket, Cost: cost, Packet: payload, AX25: frame.String()})
		}
		return nil
	}

	if d.Sink != nil {
		d.Sink.OnFrame(OutputFrame{Kind: KindFullPacket, Cost: cost, Packet: payload})
	}
	if d.Audio != nil {
		if _, err := d.Audio.Write(payload); err != nil {
			return xerrors.Errorf("session: writing packet payload: %w", err)
		}
	}

	return nil
}

func (d *Dispatcher) dispatchBERT(decoded []byte, cost float64) error {
	bits := 197
	for i := 0; i < bits; i++ {
		byteIdx, bitIdx := i/8, 7-i%8
		if byteIdx >= len(decoded) {
			break
		}
		bit := byte(0)
		if decoded[byteIdx]&(1<<uint(bitIdx)) != 0 {
			bit = 1
		}
		d.bertValidator.Push(bit)
	}

	if d.Sink != nil {
		d.Sink.OnFrame(OutputFrame{Kind: KindBERT, Cost: cost})
	}
	if d.Log != nil && d.bertValidator.Synced() {
		d.Log.BER(d.bertValidator.Errors, d.bertValidator.Bits, d.bertValidator.BER())
	}

	return nil
}
