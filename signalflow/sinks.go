package signalflow

// IteratorRx adapts a next function (the shape of a Go range-over-func
// iterator's single-step form) into an Rx: next returns ok=false once the
// sequence is exhausted.
func IteratorRx[T any](next func() (T, bool)) Rx[T] {
	return iteratorRx[T]{next: next}
}

type iteratorRx[T any] struct {
	next func() (T, bool)
}

func (it iteratorRx[T]) Recv() (T, bool, error) {
	v, ok := it.next()
	return v, ok, nil
}

// VecCollectorTx collects every sent value into Values, in order.
type VecCollectorTx[T any] struct {
	Values []T
}

func (v *VecCollectorTx[T]) Send(x T) error {
	v.Values = append(v.Values, x)
	return nil
}

// NullTx discards everything sent to it.
func NullTx[T any]() Tx[T] { return nullTx[T]{} }

type nullTx[T any] struct{}

func (nullTx[T]) Send(T) error { return nil }

// CustomTx adapts an arbitrary function into a Tx.
func CustomTx[T any](f func(T) error) Tx[T] {
	return customTx[T]{f: f}
}

type customTx[T any] struct {
	f func(T) error
}

func (c customTx[T]) Send(v T) error { return c.f(v) }
