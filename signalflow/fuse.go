package signalflow

// Fuse makes inner sticky: once it returns a non-nil error, every later
// Recv returns ok=false, err=nil without polling inner again.
func Fuse[T any](inner Rx[T]) Rx[T] {
	return &fuseRx[T]{inner: inner}
}

type fuseRx[T any] struct {
	inner Rx[T]
	fused bool
}

func (f *fuseRx[T]) Recv() (T, bool, error) {
	if f.fused {
		var zero T
		return zero, false, nil
	}
	v, ok, err := f.inner.Recv()
	if err != nil {
		f.fused = true
	}
	return v, ok, err
}
