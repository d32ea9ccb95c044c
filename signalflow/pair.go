package signalflow

// PairTx is the sending half of a Pair.
type PairTx[T any] struct {
	ch chan T
}

// Send blocks until a matching Recv, or the pair's buffer (if any) has room.
func (t *PairTx[T]) Send(v T) error {
	t.ch <- v
	return nil
}

// Close signals the receiving half that no more values are coming; Recv
// drains any buffered values first, then returns ok=false.
func (t *PairTx[T]) Close() {
	close(t.ch)
}

// PairRx is the receiving half of a Pair.
type PairRx[T any] struct {
	ch <-chan T
}

func (r *PairRx[T]) Recv() (T, bool, error) {
	v, ok := <-r.ch
	return v, ok, nil
}

// Pair returns a single-producer single-consumer queue-backed (Tx, Rx) pair,
// modeled on a blocking mpsc channel. A capacity of 0 makes Send rendezvous
// with Recv; a positive capacity allows the sender to run ahead by that many
// items.
func Pair[T any](capacity int) (*PairTx[T], *PairRx[T]) {
	ch := make(chan T, capacity)
	return &PairTx[T]{ch: ch}, &PairRx[T]{ch: ch}
}
