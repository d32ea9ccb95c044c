package signalflow

// FlattenRx pulls one []T group at a time from inner and yields its
// elements one at a time, only asking inner for the next group once every
// element of the current one has been consumed.
func FlattenRx[T any](inner Rx[[]T]) Rx[T] {
	return &flattenRx[T]{inner: inner}
}

type flattenRx[T any] struct {
	inner   Rx[[]T]
	pending []T
}

func (f *flattenRx[T]) Recv() (T, bool, error) {
	for len(f.pending) == 0 {
		v, ok, err := f.inner.Recv()
		if err != nil || !ok {
			var zero T
			return zero, ok, err
		}
		f.pending = v
	}
	v := f.pending[0]
	f.pending = f.pending[1:]
	return v, true, nil
}
