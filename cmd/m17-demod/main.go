// m17-demod reads 16-bit signed PCM baseband samples from stdin (or a
// file given with --input), demodulates the M17 protocol frame stream,
// and writes decoded audio and diagnostics to stdout/stderr.
package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/bemasher/m17-demod/internal/config"
	"github.com/bemasher/m17-demod/internal/metrics"
	"github.com/bemasher/m17-demod/internal/rlog"
	"github.com/bemasher/m17-demod/session"
)

var (
	buildTag   = "dev"
	buildDate  = "unknown"
	commitHash = "unknown"
)

var (
	invert     = pflag.BoolP("invert", "i", false, "invert baseband polarity")
	noiseBlank = pflag.BoolP("noise-blanker", "b", false, "mute audio output for high-cost Viterbi decodes")
	displayLSF = pflag.BoolP("lsf", "l", false, "display Link Setup Frame contents")
	verbose    = pflag.BoolP("verbose", "v", false, "verbose diagnostic logging")
	debug      = pflag.BoolP("debug", "d", false, "debug diagnostic logging")
	quiet      = pflag.BoolP("quiet", "q", false, "suppress all but error logging")
	version    = pflag.BoolP("version", "V", false, "display build date and commit hash")
	help       = pflag.BoolP("help", "h", false, "display this help message")

	inputFile    = pflag.String("input", "-", "input PCM sample file, - for stdin")
	audioOutFile = pflag.String("output", "-", "decoded PCM/packet output file, - for stdout")
	configFile   = pflag.String("config", "", "YAML threshold overrides")
	metricsAddr  = pflag.String("metrics", "", "serve Prometheus metrics at this address, e.g. :9100")
)

func init() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		pflag.PrintDefaults()
	}
}

// textSink implements session.Sink by writing human-readable frame and
// diagnostic summaries to the demodulator's log.
type textSink struct {
	log *rlog.Logger
	m   *metrics.Metrics
}

func (s *textSink) OnFrame(f session.OutputFrame) {
	if s.m != nil {
		s.m.FramesTotal.WithLabelValues(f.Kind.String()).Inc()
		s.m.ViterbiCost.Set(f.Cost)
	}

	switch f.Kind {
	case session.KindLSF:
		fmt.Fprintln(os.Stderr, f.LSF.String())
	case session.KindBasicPacket:
		fmt.Fprintln(os.Stderr, f.AX25)
	case session.KindFullPacket:
		s.log.WithField("bytes", len(f.Packet)).Info("full packet received")
	case session.KindEndOfStream:
		s.log.Info("end of stream")
	case session.KindBERT:
		// BER is reported separately via Logger.BER once synced.
	}
}

func (s *textSink) OnDiagnostics(d session.Diagnostics) {
	if s.m != nil {
		dcd := 0.0
		if d.DCD {
			dcd = 1.0
		}
		locked := 0.0
		if d.Locked {
			locked = 1.0
		}
		s.m.DCD.Set(dcd)
		s.m.Locked.Set(locked)
		s.m.Deviation.Set(d.Deviation)
		s.m.FrequencyOffset.Set(d.FrequencyOffset)
		s.m.BER.Set(d.BER)
	}

	s.log.Diagnostics(map[string]interface{}{
		"dcd":       d.DCD,
		"locked":    d.Locked,
		"clock":     d.Clock,
		"deviation": d.Deviation,
		"freq":      d.FrequencyOffset,
		"cost":      d.ViterbiCost,
		"ber":       d.BER,
	})
}

func main() {
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}
	if *version {
		fmt.Println("Build Tag: ", buildTag)
		fmt.Println("Build Date:", buildDate)
		fmt.Println("Commit:    ", commitHash)
		os.Exit(0)
	}

	if exclusive := boolCount(*verbose, *debug, *quiet); exclusive > 1 {
		fmt.Fprintln(os.Stderr, "m17-demod: at most one of -v, -d, -q may be given")
		os.Exit(1)
	}

	verbosity := rlog.Normal
	switch {
	case *quiet:
		verbosity = rlog.Quiet
	case *debug:
		verbosity = rlog.Debug
	case *verbose:
		verbosity = rlog.Verbose
	}
	log := rlog.New(verbosity)

	thresholds, err := config.Load(*configFile)
	if err != nil {
		log.WithError(err).Fatal("loading config")
	}

	var m *metrics.Metrics
	if *metricsAddr != "" {
		m = metrics.New()
		go func() {
			if err := metrics.ListenAndServe(*metricsAddr); err != nil {
				log.WithError(err).Error("metrics server exited")
			}
		}()
	}

	in, err := openInput(*inputFile)
	if err != nil {
		log.WithError(err).Fatal("opening input")
	}
	defer in.Close()

	out, err := openOutput(*audioOutFile)
	if err != nil {
		log.WithError(err).Fatal("opening output")
	}
	defer out.Close()

	sess, err := session.NewDemodSession(session.Options{
		InvertInput:  *invert,
		NoiseBlanker: *noiseBlank,
		DisplayLSF:   *displayLSF,
		Thresholds:   thresholds,
		Sink:         &textSink{log: log, m: m},
		Audio:        out,
		Log:          log,
	})
	if err != nil {
		log.WithError(err).Fatal("creating session")
	}
	defer sess.Close()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt)

	errCh := make(chan error, 1)
	go func() { errCh <- run(sess, in) }()

	select {
	case <-sigint:
		log.Info("interrupted")
	case err := <-errCh:
		if err != nil && err != io.EOF {
			log.WithError(err).Error("stream ended with error")
		}
	}
}

// run reads little-endian int16 samples from r until EOF and pushes each
// through sess.
func run(sess *session.DemodSession, r io.Reader) error {
	br := bufio.NewReaderSize(r, 1<<16)
	var buf [2]byte
	for {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			if err == io.ErrUnexpectedEOF {
				return io.EOF
			}
			return err
		}
		sample := int16(binary.LittleEndian.Uint16(buf[:]))
		if err := sess.PushSample(sample); err != nil {
			return err
		}
	}
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

func openOutput(name string) (io.WriteCloser, error) {
	if name == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(name)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// boolCount returns how many of the given flags are set, for the
// -v/-d/-q mutual-exclusivity check.
func boolCount(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
