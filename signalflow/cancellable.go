package signalflow

import "sync/atomic"

// Cancellable wraps inner with a shared cancellation flag checked on every
// Send. Once token is set, Send stops forwarding to inner and returns
// ErrCancelled.
func Cancellable[T any](inner Tx[T], token *atomic.Bool) Tx[T] {
	return &cancellableTx[T]{inner: inner, token: token}
}

type cancellableTx[T any] struct {
	inner Tx[T]
	token *atomic.Bool
}

func (c *cancellableTx[T]) Send(v T) error {
	if c.token.Load() {
		return ErrCancelled
	}
	return c.inner.Send(v)
}
