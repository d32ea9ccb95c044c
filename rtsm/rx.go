package rtsm

import "github.com/ratijas/slowmode/signalflow"

// NewRx returns a Rx[Signal] that decodes raw integers from inner: a value
// outside both ranges is a DecodeError (recoverable — the decoder forgets
// the last accepted value so the next good value is reported regardless of
// what it is), and a value equal to the last accepted one is consumed
// silently, since it is a re-read of a sample the encoder has not yet
// replaced (the encoder emits a different integer for every bit, repeated
// bits included).
func NewRx(inner signalflow.Rx[int], ranges Ranges) *Rx {
	return &Rx{inner: inner, ranges: ranges}
}

type Rx struct {
	inner  signalflow.Rx[int]
	ranges Ranges

	hasLast bool
	last    int
}

func (r *Rx) Recv() (Signal, bool, error) {
	for {
		v, ok, err := r.inner.Recv()
		if err != nil {
			return false, false, err
		}
		if !ok {
			return false, false, nil
		}

		if r.hasLast && r.last == v {
			continue
		}
		s, err := r.classify(v)
		if err != nil {
			r.hasLast = false
			return false, true, err
		}
		r.hasLast = true
		r.last = v
		return s, true, nil
	}
}

func (r *Rx) classify(v int) (Signal, error) {
	return Classify(v, r.ranges)
}

// Classify reports which side of ranges v falls on, or a DecodeError if it
// falls in neither.
func Classify(v int, ranges Ranges) (Signal, error) {
	switch {
	case ranges.On.contains(v):
		return ON, nil
	case ranges.Off.contains(v):
		return OFF, nil
	default:
		return false, &DecodeError{Value: v}
	}
}
