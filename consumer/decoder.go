package consumer

import (
	"sync"
	"sync/atomic"

	"github.com/ratijas/slowmode/counterrec"
	"github.com/ratijas/slowmode/metrics"
	"github.com/ratijas/slowmode/morse"
	"github.com/ratijas/slowmode/rtsm"
	"github.com/ratijas/slowmode/signalflow"
)

// Decoder reconstructs one counter's message from the raw per-instance
// samples pushed to it each tick. A counter's n instances each carry one
// bit of the same shared bit stream per tick (the provider's chunk(n)
// scheme), so a Decoder decodes across all of its instances into a single
// character stream, not one stream per instance.
//
// It runs its own goroutine pulling through rtsm's multi-channel decode and
// a Morse decoder; push feeds it one tick's raw values, in the same sorted
// instance order the provider chunks them in.
type Decoder struct {
	Counter   counterrec.CounterId
	Name      string
	Instances []counterrec.InstanceId

	chans  []chan int
	cancel chan struct{}
	done   chan struct{}
	state  atomic.Int32

	mu   sync.Mutex
	text []rune

	stopOnce sync.Once
	metrics  *metrics.Runtime
}

// newDecoder builds and starts a Decoder for counter across n instances,
// using rangeFor to assign each instance's RTSM ranges (must match the
// provider's deterministic assignment, see ranges.go).
func newDecoder(counter counterrec.CounterId, name string, instances []counterrec.InstanceId, rangeFor func(i int) rtsm.Ranges, m *metrics.Runtime) *Decoder {
	n := len(instances)
	d := &Decoder{
		Counter:   counter,
		Name:      name,
		Instances: instances,
		chans:     make([]chan int, n),
		cancel:    make(chan struct{}),
		done:      make(chan struct{}),
		metrics:   m,
	}

	channels := make([]rtsm.Channel, n)
	for i := range d.chans {
		d.chans[i] = make(chan int)
		channels[i] = rtsm.Channel{Inner: chanRx{ch: d.chans[i], cancel: d.cancel}, Ranges: rangeFor(i)}
	}
	bits := signalflow.FlattenRx[bool](rtsm.NewMultiRx(channels))
	dec := morse.NewDecoder(bits, morse.ITU)

	go d.run(dec)
	return d
}

// chanRx adapts a plain int channel, plus a cancellation signal, into a
// signalflow.Rx[int]: it never closes ch itself (avoiding a send-on-closed
// race with push), instead racing the receive against cancel.
type chanRx struct {
	ch     <-chan int
	cancel <-chan struct{}
}

func (c chanRx) Recv() (int, bool, error) {
	select {
	case v, ok := <-c.ch:
		return v, ok, nil
	case <-c.cancel:
		return 0, false, nil
	}
}

// push delivers one tick's raw values, one per instance in Instances'
// order, blocking until the decoder goroutine has consumed all of them (or
// the decoder has been stopped, in which case push reports false and the
// caller should stop calling it for this counter).
func (d *Decoder) push(values []uint32) bool {
	if len(values) != len(d.chans) {
		return false
	}
	for i, v := range values {
		select {
		case d.chans[i] <- int(v):
		case <-d.cancel:
			return false
		}
	}
	// The first completed push moves the decoder out of Idle; a decoder
	// that has already drained stays Drained.
	d.state.CompareAndSwap(int32(StateIdle), int32(StateRunning))
	return true
}

// Stop cancels the decoder's upstream, driving it to StateDrained, and
// waits for its goroutine to exit.
func (d *Decoder) Stop() {
	d.stopOnce.Do(func() { close(d.cancel) })
	<-d.done
}

// State reports the decoder's current lifecycle position.
func (d *Decoder) State() State { return State(d.state.Load()) }

func (d *Decoder) setState(s State) { d.state.Store(int32(s)) }

// Text returns the characters decoded so far.
func (d *Decoder) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return string(d.text)
}

// run is the decoder's goroutine: Running while decoding (push leaves Idle
// on the first tick; recoverable Morse errors are counted and surfaced but
// keep it Running), Drained once the bit source ends for good — which
// happens both on upstream closing cleanly and on an unrecoverable
// multi-channel decode error, since the Morse layer treats any inner error
// as terminal to itself.
func (d *Decoder) run(dec *morse.Decoder) {
	defer close(d.done)
	for {
		r, ok, err := dec.Recv()
		if err != nil {
			switch err.(type) {
			case *morse.SignalError:
				d.metrics.IncMorseSignalError()
			case *morse.LetterError:
				d.metrics.IncMorseLetterError()
			default:
				d.metrics.IncRTSMDecodeError()
			}
			if !ok {
				d.setState(StateDrained)
				return
			}
			d.setState(StateRunning)
			continue
		}
		if !ok {
			d.setState(StateDrained)
			return
		}
		d.setState(StateRunning)
		d.mu.Lock()
		d.text = append(d.text, r)
		d.mu.Unlock()
	}
}
