package rtsm

import "fmt"

// DecodeError reports a received value that falls outside both the off and
// on ranges. It is recoverable: the decoder drops its notion of "last
// value" and keeps going from the next sample.
type DecodeError struct {
	Value int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("rtsm: value %d outside configured ranges", e.Value)
}
