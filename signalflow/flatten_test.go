package signalflow

import (
	"errors"
	"reflect"
	"testing"
)

var errFlattenTest = errors.New("flatten test sentinel")

func TestFlattenRx(t *testing.T) {
	groups := [][]int{{1, 2, 3}, {}, {4}, {5, 6}}
	i := 0
	inner := IteratorRx[[]int](func() ([]int, bool) {
		if i >= len(groups) {
			return nil, false
		}
		g := groups[i]
		i++
		return g, true
	})

	got, err := CollectVec[int](FlattenRx[int](inner))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 2, 3, 4, 5, 6}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFlattenRxPropagatesError(t *testing.T) {
	inner := errGroupRx{err: errFlattenTest}
	_, err := CollectVec[int](FlattenRx[int](inner))
	if err != errFlattenTest {
		t.Fatalf("got %v, want %v", err, errFlattenTest)
	}
}

type errGroupRx struct{ err error }

func (e errGroupRx) Recv() ([]int, bool, error) { return nil, false, e.err }
