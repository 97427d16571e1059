package session

import (
	"github.com/bemasher/m17-demod/codec2"
	"github.com/bemasher/m17-demod/dsp"
	"github.com/bemasher/m17-demod/framer"
	"github.com/bemasher/m17-demod/internal/config"
	"github.com/bemasher/m17-demod/internal/rlog"
	"github.com/bemasher/m17-demod/viterbi"
)

// normalizeScale divides raw 16-bit PCM samples down to roughly [-1, +1]
// before the matched filter, per the spec's external interface contract.
const normalizeScale = 44000.0

// DemodSession owns every stage's state for the lifetime of one input
// stream: the DSP front end, framer, FEC decoder, and frame dispatcher.
// It is driven one sample at a time and is single-threaded and
// allocation-free on the steady-state sample path, matching the spec's
// concurrency model.
type DemodSession struct {
	invertInput bool

	filter     *dsp.MatchedFilter
	dcd        *dsp.DCD
	correlator *dsp.Correlator
	clock      *dsp.ClockRecovery
	framer     *framer.Framer
	viterbiDec *viterbi.Decoder

	dispatcher *Dispatcher

	dcdFrameSamples int
	samplesThisSym  int

	bitCount uint64
	lastCost float64
}

// Options configures a DemodSession at construction.
type Options struct {
	InvertInput  bool
	NoiseBlanker bool
	DisplayLSF   bool
	Thresholds   config.Thresholds
	Sink         Sink
	Audio        interface {
		Write(p []byte) (int, error)
	}
	Log *rlog.Logger
}

// NewDemodSession constructs a session with a freshly created Codec2
// handle, released when Close is called.
func NewDemodSession(opt Options) (*DemodSession, error) {
	dec, err := codec2.Create()
	if err != nil {
		return nil, err
	}

	disp := NewDispatcher()
	disp.Sink = opt.Sink
	disp.Codec2 = dec
	disp.Audio = opt.Audio
	disp.NoiseBlanker = opt.NoiseBlanker
	disp.DisplayLSF = opt.DisplayLSF
	disp.Thresholds = opt.Thresholds
	disp.Log = opt.Log

	return &DemodSession{
		invertInput: opt.InvertInput,
		filter:      dsp.NewMatchedFilter(),
		dcd:         dsp.NewDCD(opt.Thresholds.DCDHysteresisOn, opt.Thresholds.DCDHysteresisOff),
		correlator:  dsp.NewCorrelator(opt.Thresholds.SyncScore),
		clock:       dsp.NewClockRecovery(),
		framer:      framer.NewFramer(),
		viterbiDec:  viterbi.NewDecoder(),
		dispatcher:  disp,
	}, nil
}

// Close releases the session's Codec2 handle. Safe to call multiple
// times and on every exit path, including after an error.
func (s *DemodSession) Close() error {
	if s.dispatcher.Codec2 != nil {
		return s.dispatcher.Codec2.Close()
	}
	return nil
}

// PushSample drives the entire pipeline with one normalized 16-bit PCM
// sample to a quiescent point, per the spec's synchronous, single-sample
// concurrency model.
func (s *DemodSession) PushSample(raw int16) error {
	sample := float64(raw) / normalizeScale
	if s.invertInput {
		sample = -sample
	}

	filtered := s.filter.Push(sample)
	dcdNow := s.dcd.Update(filtered)
	s.dcdFrameSamples++

	if det, ok := s.correlator.Push(filtered); ok {
		s.clock.SeedPhase(det.Phase)
		s.framer.Sync(toFramerKind(det.Pattern), dcdNow)
	}

	symbol, ok := s.clock.Step(filtered)
	if !ok {
		return nil
	}

	s.samplesThisSym++
	if s.dcdFrameSamples >= dsp.SamplesPerSymbol*184 {
		s.framer.TickDCD(dcdNow)
		s.dispatcher.NotifyDCD(dcdNow)
		s.emitDiagnostics(dcdNow)
		s.dcdFrameSamples = 0
	}

	s.bitCount += 2
	bit0, bit1 := dsp.SliceSymbol(symbol)
	body, kind, complete := s.framer.Push(bit0, bit1)
	if !complete {
		return nil
	}

	return s.processFrame(kind, body)
}

// emitDiagnostics delivers one telemetry snapshot to the configured Sink,
// drawn from the DSP front end's running state and the most recently
// decoded frame's Viterbi cost and BER.
func (s *DemodSession) emitDiagnostics(dcdNow bool) {
	if s.dispatcher.Sink == nil {
		return
	}
	s.dispatcher.Sink.OnDiagnostics(Diagnostics{
		DCD:             dcdNow,
		Deviation:       s.clock.Deviation(),
		FrequencyOffset: s.clock.FrequencyOffset(),
		Locked:          s.clock.Locked(),
		Clock:           s.clock.Rate(),
		ViterbiCost:     s.lastCost,
		BER:             s.dispatcher.BER(),
		BitCount:        s.bitCount,
	})
}

// processFrame runs a completed 368-bit frame body through
// derandomization, deinterleaving, depuncturing/Viterbi decode, and the
// frame dispatcher.
func (s *DemodSession) processFrame(kind framer.SyncKind, body []bool) error {
	derandomized := framer.DerandomizeBits(body)
	deinterleaved := framer.Deinterleave(derandomized)

	coded := make([]viterbi.SoftBit, len(deinterleaved))
	for i, b := range deinterleaved {
		if b {
			coded[i] = viterbi.SoftTrue
		} else {
			coded[i] = viterbi.SoftFalse
		}
	}

	var decoded []byte
	var cost float64

	switch kind {
	case framer.SyncLSF:
		decoded, cost = s.viterbiDec.DecodePunctured(coded, viterbi.LSFPuncture, 2*(240+4))
	case framer.SyncStream:
		decoded, cost = s.viterbiDec.DecodePunctured(coded, viterbi.StreamPuncture, 2*(144+4))
	case framer.SyncPacket:
		// PACKET frames use a tail-biting code (no zero-flush tail), per
		// the M17 specification; every decoded bit is genuine payload.
		decoded, cost = s.viterbiDec.DecodePuncturedTailBiting(coded, viterbi.PacketPuncture, 2*206)
	case framer.SyncBERT:
		// BERT frames carry raw PRBS bits with no convolutional code;
		// the dispatcher consumes the frame body's bits directly.
		decoded = packBits(deinterleaved)
		cost = 0
	}

	s.lastCost = cost
	return s.dispatcher.Dispatch(kind, decoded, cost)
}

func toFramerKind(p dsp.SyncPattern) framer.SyncKind {
	switch p {
	case dsp.SyncLSF:
		return framer.SyncLSF
	case dsp.SyncStream:
		return framer.SyncStream
	case dsp.SyncPacket:
		return framer.SyncPacket
	case dsp.SyncBERT:
		return framer.SyncBERT
	default:
		return framer.SyncNone
	}
}

func packBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}
