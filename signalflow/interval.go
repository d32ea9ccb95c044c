package signalflow

import (
	"log"
	"time"

	"github.com/aclements/go-moremath/stats"
)

// latencyWindow keeps the pacer has-seen bounded and cheap.
const latencyWindow = 32

// pacer is the shared wall-clock pacing logic behind IntervalTx and
// IntervalRx: on first call it does not sleep; on later calls it sleeps so
// that successive calls are at least rate apart. A call that arrives late
// (elapsed > rate) or after the clock moved backward skips the sleep and
// logs a diagnostic instead, backed by a rolling sample of recent lateness
// so the message carries a distribution, not just one data point.
type pacer struct {
	rate    time.Duration
	last    time.Time
	hasLast bool
	recent  []float64 // milliseconds of lateness, most recent last
}

func newPacer(rate time.Duration) *pacer {
	return &pacer{rate: rate}
}

func (p *pacer) wait(kind string) {
	now := time.Now()
	if !p.hasLast {
		p.hasLast = true
		p.last = now
		return
	}
	elapsed := now.Sub(p.last)
	switch {
	case elapsed < 0:
		log.Printf("signalflow: %s: system clock moved backward by %v, not sleeping", kind, -elapsed)
	case elapsed > p.rate:
		late := elapsed - p.rate
		p.record(float64(late) / float64(time.Millisecond))
		sample := stats.Sample{Xs: p.recent}
		log.Printf("signalflow: %s: call was late by %v (mean=%.3fms stddev=%.3fms over last %d ticks)",
			kind, late, sample.Mean(), sample.StdDev(), len(p.recent))
	default:
		time.Sleep(p.rate - elapsed)
	}
	p.last = time.Now()
}

func (p *pacer) record(ms float64) {
	p.recent = append(p.recent, ms)
	if len(p.recent) > latencyWindow {
		p.recent = p.recent[len(p.recent)-latencyWindow:]
	}
}

// IntervalTx paces Send calls to inner at least rate apart.
func IntervalTx[T any](inner Tx[T], rate time.Duration) Tx[T] {
	return &intervalTx[T]{inner: inner, pacer: newPacer(rate)}
}

type intervalTx[T any] struct {
	inner Tx[T]
	pacer *pacer
}

func (i *intervalTx[T]) Send(v T) error {
	i.pacer.wait("interval(tx)")
	return i.inner.Send(v)
}

// IntervalRx paces Recv calls to inner at least rate apart.
func IntervalRx[T any](inner Rx[T], rate time.Duration) Rx[T] {
	return &intervalRx[T]{inner: inner, pacer: newPacer(rate)}
}

type intervalRx[T any] struct {
	inner Rx[T]
	pacer *pacer
}

func (i *intervalRx[T]) Recv() (T, bool, error) {
	i.pacer.wait("interval(rx)")
	return i.inner.Recv()
}
