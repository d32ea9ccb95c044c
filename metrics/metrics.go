// Package metrics exposes a Prometheus collector shared by the provider and
// consumer runtimes: tick counts per named channel, RTSM/Morse error
// counts, and poll latency, each tagged with a short opaque run id.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
)

// Runtime collects counters for one provider or consumer process. It
// implements prometheus.Collector directly, in the style of a map of live
// entries rendered into const metrics on every scrape, rather than
// maintaining a separate CounterVec per label set.
type Runtime struct {
	role  string
	runID xid.ID

	mu                sync.Mutex
	ticks             map[string]uint64
	rtsmDecodeErrors  uint64
	morseSignalErrors uint64
	morseLetterErrors uint64
	pollCount         uint64
	pollSeconds       float64

	tickDesc       *prometheus.Desc
	rtsmErrDesc    *prometheus.Desc
	morseSigDesc   *prometheus.Desc
	morseLetDesc   *prometheus.Desc
	pollCountDesc  *prometheus.Desc
	pollMeanDesc   *prometheus.Desc
}

// NewRuntime mints a fresh run id and builds a Runtime for role ("provider"
// or "consumer"), used as a const label on every metric it reports.
func NewRuntime(role string) *Runtime {
	r := &Runtime{
		role:  role,
		runID: xid.New(),
		ticks: make(map[string]uint64),
	}
	constLabels := prometheus.Labels{"role": role, "run_id": r.runID.String()}
	r.tickDesc = prometheus.NewDesc("slowmode_ticks_total",
		"Number of ticks committed by a worker.", []string{"channel"}, constLabels)
	r.rtsmErrDesc = prometheus.NewDesc("slowmode_rtsm_decode_errors_total",
		"Number of RTSM values that fell outside both configured ranges.", nil, constLabels)
	r.morseSigDesc = prometheus.NewDesc("slowmode_morse_signal_errors_total",
		"Number of invalid Morse signal groups decoded.", nil, constLabels)
	r.morseLetDesc = prometheus.NewDesc("slowmode_morse_letter_errors_total",
		"Number of Morse letters absent from the dialect table.", nil, constLabels)
	r.pollCountDesc = prometheus.NewDesc("slowmode_poll_total",
		"Number of poll requests served.", nil, constLabels)
	r.pollMeanDesc = prometheus.NewDesc("slowmode_poll_latency_seconds_mean",
		"Mean latency of poll requests served so far.", nil, constLabels)
	return r
}

// RunID is the opaque id minted for this process, also embedded as a
// Prometheus const label.
func (r *Runtime) RunID() string { return r.runID.String() }

// IncTick records one tick committed for the named channel.
func (r *Runtime) IncTick(channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks[channel]++
}

// IncRTSMDecodeError records one RTSM value outside both ranges.
func (r *Runtime) IncRTSMDecodeError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rtsmDecodeErrors++
}

// IncMorseSignalError records one invalid ON/OFF run.
func (r *Runtime) IncMorseSignalError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.morseSignalErrors++
}

// IncMorseLetterError records one undecodable dot/dash sequence.
func (r *Runtime) IncMorseLetterError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.morseLetterErrors++
}

// ObservePollLatency folds one poll's duration into the running mean.
func (r *Runtime) ObservePollLatency(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pollCount++
	r.pollSeconds += d.Seconds()
}

func (r *Runtime) Describe(ch chan<- *prometheus.Desc) {
	ch <- r.tickDesc
	ch <- r.rtsmErrDesc
	ch <- r.morseSigDesc
	ch <- r.morseLetDesc
	ch <- r.pollCountDesc
	ch <- r.pollMeanDesc
}

func (r *Runtime) Collect(ch chan<- prometheus.Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for channel, n := range r.ticks {
		ch <- prometheus.MustNewConstMetric(r.tickDesc, prometheus.CounterValue, float64(n), channel)
	}
	ch <- prometheus.MustNewConstMetric(r.rtsmErrDesc, prometheus.CounterValue, float64(r.rtsmDecodeErrors))
	ch <- prometheus.MustNewConstMetric(r.morseSigDesc, prometheus.CounterValue, float64(r.morseSignalErrors))
	ch <- prometheus.MustNewConstMetric(r.morseLetDesc, prometheus.CounterValue, float64(r.morseLetterErrors))
	ch <- prometheus.MustNewConstMetric(r.pollCountDesc, prometheus.CounterValue, float64(r.pollCount))
	mean := 0.0
	if r.pollCount > 0 {
		mean = r.pollSeconds / float64(r.pollCount)
	}
	ch <- prometheus.MustNewConstMetric(r.pollMeanDesc, prometheus.GaugeValue, mean)
}

// Handler serves this Runtime's metrics on its own registry, so multiple
// Runtimes (e.g. in tests) never collide on the global default registry.
func (r *Runtime) Handler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(r)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
