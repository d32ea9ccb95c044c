package provider

import (
	"fmt"
	"sync/atomic"
)

// WorkerThread owns one goroutine and the cancellation flag it polls,
// matching the upstream's WorkerThread<T>{thread, cancellation_token}.
type WorkerThread struct {
	token *atomic.Bool
	done  chan error
}

// Spawn starts f on a new goroutine with a fresh, unset cancellation token.
func Spawn(f func(token *atomic.Bool)) *WorkerThread {
	w := &WorkerThread{token: new(atomic.Bool), done: make(chan error, 1)}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				w.done <- fmt.Errorf("provider: worker panicked: %v", r)
				return
			}
			w.done <- nil
		}()
		f(w.token)
	}()
	return w
}

// Cancel sets the cancellation token; it does not wait for the worker to
// observe it.
func (w *WorkerThread) Cancel() {
	w.token.Store(true)
}

// Join cancels the worker (idempotent if already cancelled) and blocks
// until it exits, returning any panic recovered from it.
func (w *WorkerThread) Join() error {
	w.Cancel()
	return <-w.done
}
