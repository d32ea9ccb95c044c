// Package signalflow implements a small push/pull pipeline abstraction:
// Tx sinks and Rx sources that compose by wrapping, each combinator owning
// its inner stage and forwarding calls with added behavior.
package signalflow

import "errors"

// Tx is a blocking sink: Send pushes one value downstream.
type Tx[T any] interface {
	Send(v T) error
}

// Rx is a blocking source: Recv pulls one value upstream.
//
// ok=false, err=nil is a permanent end of stream. A non-nil error does not
// imply end of stream; callers that need "stop after first error" should
// wrap with Fuse.
type Rx[T any] interface {
	Recv() (v T, ok bool, err error)
}

// ErrCancelled is returned by a Cancellable Tx once its token is set.
var ErrCancelled = errors.New("signalflow: cancelled")

// SendAll feeds every value in vs to tx, stopping at the first error.
func SendAll[T any](tx Tx[T], vs ...T) error {
	for _, v := range vs {
		if err := tx.Send(v); err != nil {
			return err
		}
	}
	return nil
}

// CollectVec drains rx to completion and returns every received value, or
// the first error encountered.
func CollectVec[T any](rx Rx[T]) ([]T, error) {
	var out []T
	for {
		v, ok, err := rx.Recv()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}
