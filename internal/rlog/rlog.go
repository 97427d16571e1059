// Package rlog wraps a logrus.Logger for the demodulator's diagnostic
// output, replacing the teacher's unstructured log.Println calls with
// leveled, field-based entries.
package rlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the demodulator's diagnostic logger. The zero value is not
// usable; construct one with New.
type Logger struct {
	*logrus.Logger
}

// Verbosity selects which of -v/-d/-q governs the logger's level.
type Verbosity int

const (
	Normal Verbosity = iota
	Verbose
	Debug
	Quiet
)

// New returns a Logger writing to stderr at the level implied by v.
func New(v Verbosity) *Logger {
	l := logrus.New()
	l.Out = os.Stderr
	l.Formatter = &logrus.TextFormatter{FullTimestamp: true}

	switch v {
	case Quiet:
		l.SetLevel(logrus.ErrorLevel)
	case Debug:
		l.SetLevel(logrus.DebugLevel)
	case Verbose:
		l.SetLevel(logrus.InfoLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}

	return &Logger{l}
}

// Diagnostics logs one demodulator telemetry snapshot, with the fields the
// caller supplies, as a single structured debug-level entry, replacing the
// original's \r-rewritten status line.
func (l *Logger) Diagnostics(fields map[string]interface{}) {
	l.WithFields(fields).Debug("diagnostics")
}

// BER logs a periodic bit-error-rate report once PRBS sync is achieved.
func (l *Logger) BER(errors, bits uint64, rate float64) {
	l.WithFields(logrus.Fields{
		"errors": errors,
		"bits":   bits,
		"ber":    rate,
	}).Info("ber")
}
