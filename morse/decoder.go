package morse

import (
	"github.com/ratijas/slowmode/signalflow"
)

// NewDecoder returns an Rx that pulls signal bits from inner and produces
// decoded characters (letters and spaces). Both SignalError and LetterError
// are recoverable: Recv returns the error but the decoder keeps going, with
// its current letter cleared, on the next call. A permanent end of stream
// (ok=false, err=nil) happens once inner is exhausted and any final group
// has been classified.
func NewDecoder(inner signalflow.Rx[bool], dialect Dialect) *Decoder {
	return &Decoder{inner: inner, dialect: dialect}
}

type Decoder struct {
	inner   signalflow.Rx[bool]
	dialect Dialect

	hasGroup      bool
	groupState    bool
	groupDuration int
	groupErrored  bool

	letter Encoding

	pending []decodeEvent
	drained bool
}

type decodeEvent struct {
	r   rune
	err error
}

func (d *Decoder) Recv() (rune, bool, error) {
	for {
		if len(d.pending) > 0 {
			ev := d.pending[0]
			d.pending = d.pending[1:]
			return ev.r, true, ev.err
		}
		if d.drained {
			return 0, false, nil
		}

		bit, ok, err := d.inner.Recv()
		if err != nil {
			return 0, false, err
		}
		if !ok {
			d.drained = true
			if d.hasGroup {
				d.finalizeGroup()
				d.hasGroup = false
			}
			continue
		}

		switch {
		case !d.hasGroup:
			d.hasGroup = true
			d.groupState = bit
			d.groupDuration = 1
			d.groupErrored = false
		case bit == d.groupState:
			if d.groupErrored {
				continue
			}
			d.groupDuration++
			if d.groupState && d.groupDuration > 3 {
				d.queueErr(&SignalError{State: d.groupState, Duration: d.groupDuration})
				d.letter = nil
				d.groupErrored = true
			}
		default:
			if !d.groupErrored {
				d.finalizeGroup()
			}
			d.groupState = bit
			d.groupDuration = 1
			d.groupErrored = false
		}
	}
}

func (d *Decoder) queue(r rune)    { d.pending = append(d.pending, decodeEvent{r: r}) }
func (d *Decoder) queueErr(e error) { d.pending = append(d.pending, decodeEvent{err: e}) }

// finalizeGroup classifies the just-completed run (d.groupState for
// d.groupDuration units) and queues whatever character(s)/error it implies.
func (d *Decoder) finalizeGroup() {
	if d.groupState {
		switch d.groupDuration {
		case 1:
			d.letter = append(d.letter, Dot)
		case 3:
			d.letter = append(d.letter, Dash)
		default:
			d.queueErr(&SignalError{State: true, Duration: d.groupDuration})
			d.letter = nil
		}
		return
	}

	switch {
	case d.groupDuration < 3:
		// intra-letter spacing; no emission
	case d.groupDuration < 7:
		d.decodeLetter()
	default:
		d.decodeLetter()
		d.queue(' ')
	}
}

func (d *Decoder) decodeLetter() {
	if len(d.letter) == 0 {
		return
	}
	r, found := d.dialect.Decode(d.letter)
	seq := d.letter
	d.letter = nil
	if !found {
		d.queueErr(&LetterError{Encoding: seq})
		return
	}
	d.queue(r)
}

// DecodeBits decodes a complete, already-collected bit sequence using the
// ITU dialect, returning every recoverable error separately from the text
// (for tests and simple callers).
// Any run of whitespace in the result is already collapsed to a single
// space by construction, since the decoder only ever emits one ' ' per
// word-length OFF run.
func DecodeBits(bits []bool) (string, []error) {
	i := 0
	dec := NewDecoder(signalflow.IteratorRx[bool](func() (bool, bool) {
		if i >= len(bits) {
			return false, false
		}
		v := bits[i]
		i++
		return v, true
	}), ITU)

	var out []rune
	var errs []error
	for {
		r, ok, err := dec.Recv()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ok {
			break
		}
		out = append(out, r)
	}
	return string(out), errs
}
