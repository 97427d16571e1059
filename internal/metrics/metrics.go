// Package metrics exposes demodulator telemetry as Prometheus gauges and
// counters, served over HTTP only when the caller opts in (`--metrics
// ADDR`). This is a diagnostics side channel; it never carries M17
// payload data.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the demodulator's Prometheus instruments.
type Metrics struct {
	DCD            prometheus.Gauge
	EVM            prometheus.Gauge
	Deviation      prometheus.Gauge
	FrequencyOffset prometheus.Gauge
	Locked         prometheus.Gauge
	ViterbiCost    prometheus.Gauge
	BER            prometheus.Gauge
	BitsTotal      prometheus.Counter
	ErrorsTotal    prometheus.Counter
	FramesTotal    *prometheus.CounterVec
}

// New registers a fresh set of instruments, under the m17_demod
// namespace, with the default Prometheus registry and returns them.
func New() *Metrics {
	m := &Metrics{
		DCD: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "m17_demod", Name: "dcd", Help: "Data carrier detect, 1 asserted / 0 not.",
		}),
		EVM: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "m17_demod", Name: "evm", Help: "Error vector magnitude of the current symbol.",
		}),
		Deviation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "m17_demod", Name: "clock_deviation", Help: "Last Gardner timing error.",
		}),
		FrequencyOffset: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "m17_demod", Name: "clock_frequency_offset", Help: "Symbol clock frequency offset estimate.",
		}),
		Locked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "m17_demod", Name: "locked", Help: "Clock recovery lock state, 1 locked / 0 not.",
		}),
		ViterbiCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "m17_demod", Name: "viterbi_cost", Help: "Path metric of the most recently decoded frame.",
		}),
		BER: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "m17_demod", Name: "bert_ber", Help: "Running PRBS-9 bit error rate.",
		}),
		BitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "m17_demod", Name: "bert_bits_total", Help: "Total PRBS-9 bits validated.",
		}),
		ErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "m17_demod", Name: "bert_errors_total", Help: "Total PRBS-9 bit errors.",
		}),
		FramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "m17_demod", Name: "frames_total", Help: "Frames dispatched, by type.",
		}, []string{"type"}),
	}

	prometheus.MustRegister(
		m.DCD, m.EVM, m.Deviation, m.FrequencyOffset, m.Locked,
		m.ViterbiCost, m.BER, m.BitsTotal, m.ErrorsTotal, m.FramesTotal,
	)

	return m
}

// ListenAndServe serves the registered metrics over HTTP at addr until
// the process exits or an error occurs; intended to run in its own
// goroutine, separate from the single-threaded sample pipeline.
func ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
