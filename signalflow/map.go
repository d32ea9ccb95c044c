package signalflow

// MapRx applies f to each value pulled from inner.
func MapRx[T, U any](inner Rx[T], f func(T) U) Rx[U] {
	return &mapRx[T, U]{inner: inner, f: f}
}

type mapRx[T, U any] struct {
	inner Rx[T]
	f     func(T) U
}

func (m *mapRx[T, U]) Recv() (U, bool, error) {
	v, ok, err := m.inner.Recv()
	if err != nil || !ok {
		var zero U
		return zero, ok, err
	}
	return m.f(v), true, nil
}

// MapTx applies f to each value before pushing it to inner.
func MapTx[T, U any](inner Tx[U], f func(T) U) Tx[T] {
	return &mapTx[T, U]{inner: inner, f: f}
}

type mapTx[T, U any] struct {
	inner Tx[U]
	f     func(T) U
}

func (m *mapTx[T, U]) Send(v T) error {
	return m.inner.Send(m.f(v))
}
