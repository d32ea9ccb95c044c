package rtsm

import (
	"fmt"

	"github.com/ratijas/slowmode/signalflow"
)

// MultiDecodeError reports a raw value, on one particular channel of a
// NewMultiRx group, that fell outside both of that channel's ranges.
type MultiDecodeError struct {
	Channel int
	Value   int
}

func (e *MultiDecodeError) Error() string {
	return fmt.Sprintf("rtsm: channel %d value %d outside configured ranges", e.Channel, e.Value)
}

// Channel pairs a raw integer source with the Ranges it was encoded with.
type Channel struct {
	Inner  signalflow.Rx[int]
	Ranges Ranges
}

// NewMultiRx composes n channels, each ticked together: every Recv call
// pulls exactly one raw value from each channel and classifies it against
// that channel's own ranges. Unlike the single-channel Rx, no value is
// dropped for repeating the previous value: a re-read of an unchanged
// sample is reported again as the same bit, and there is no per-channel
// state and no notion of a silent tick. Every tick reports the full
// vector of current channel states, since that is how a multi-channel
// consumer distinguishes "still reporting the same bit" from "this
// channel's provider went away".
func NewMultiRx(channels []Channel) *MultiRx {
	return &MultiRx{channels: channels}
}

type MultiRx struct {
	channels []Channel
}

func (m *MultiRx) Recv() ([]Signal, bool, error) {
	out := make([]Signal, len(m.channels))
	for i, ch := range m.channels {
		v, ok, err := ch.Inner.Recv()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		s, err := Classify(v, ch.Ranges)
		if err != nil {
			return nil, true, &MultiDecodeError{Channel: i, Value: v}
		}
		out[i] = s
	}
	return out, true, nil
}
