package rtsm

import (
	"reflect"
	"testing"

	"github.com/ratijas/slowmode/signalflow"
)

func mustRanges(t *testing.T, off, on Range) Ranges {
	t.Helper()
	rs, err := NewRanges(off, on)
	if err != nil {
		t.Fatalf("NewRanges(%v, %v): %v", off, on, err)
	}
	return rs
}

func TestRoundTrip(t *testing.T) {
	ranges := mustRanges(t, Range{0, 3}, Range{50, 52})
	bits := []Signal{OFF, ON, OFF, ON, OFF}

	var collector signalflow.VecCollectorTx[int]
	tx := NewTx(&collector, ranges)
	if err := signalflow.SendAll[Signal](tx, bits...); err != nil {
		t.Fatalf("encode: %v", err)
	}

	wantRaw := []int{0, 50, 0, 50, 0}
	if !reflect.DeepEqual(collector.Values, wantRaw) {
		t.Fatalf("encoded raw = %v, want %v", collector.Values, wantRaw)
	}

	rx := NewRx(intSliceRx(collector.Values), ranges)
	got, err := signalflow.CollectVec[Signal](rx)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, bits) {
		t.Fatalf("round trip = %v, want %v", got, bits)
	}
}

func TestDecodeCollapsesRepeats(t *testing.T) {
	ranges := mustRanges(t, Range{0, 10}, Range{10, 20})
	bits := []Signal{ON, ON, ON, OFF, OFF, ON}

	var collector signalflow.VecCollectorTx[int]
	tx := NewTx(&collector, ranges)
	if err := signalflow.SendAll[Signal](tx, bits...); err != nil {
		t.Fatalf("encode: %v", err)
	}

	wantRaw := []int{10, 11, 12, 0, 1, 12}
	if !reflect.DeepEqual(collector.Values, wantRaw) {
		t.Fatalf("encoded raw = %v, want %v", collector.Values, wantRaw)
	}

	// Every sample is read twice, as a receiver polling faster than the
	// transmitter would; the re-reads must be dropped.
	var reread []int
	for _, v := range collector.Values {
		reread = append(reread, v, v)
	}
	rx := NewRx(intSliceRx(reread), ranges)
	got, err := signalflow.CollectVec[Signal](rx)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []Signal{ON, ON, ON, OFF, OFF, ON}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("decode = %v, want %v", got, want)
	}
}

func TestDecodeErrorOutsideRanges(t *testing.T) {
	ranges := mustRanges(t, Range{0, 10}, Range{20, 30})
	rx := NewRx(intSliceRx([]int{99}), ranges)

	_, ok, err := rx.Recv()
	if !ok {
		t.Fatalf("want ok=true for a recoverable error, got ok=false")
	}
	de, isDecodeErr := err.(*DecodeError)
	if !isDecodeErr {
		t.Fatalf("want *DecodeError, got %T: %v", err, err)
	}
	if de.Value != 99 {
		t.Errorf("DecodeError.Value = %d, want 99", de.Value)
	}

	_, ok, err = rx.Recv()
	if ok || err != nil {
		t.Fatalf("want end of stream after the single errored value, got ok=%v err=%v", ok, err)
	}
}

func TestMultiRxDecodesLockstep(t *testing.T) {
	ranges := mustRanges(t, Range{0, 10}, Range{10, 20})

	raw := [][]int{
		{10, 0, 10},
		{0, 10, 0},
		{10, 11, 10},
		{0, 12, 11},
	}
	want := [][]Signal{
		{ON, OFF, ON},
		{OFF, ON, OFF},
		{ON, ON, ON},
		{OFF, ON, ON},
	}

	channels := make([]Channel, 3)
	for c := range channels {
		col := make([]int, len(raw))
		for step := range raw {
			col[step] = raw[step][c]
		}
		channels[c] = Channel{Inner: intSliceRx(col), Ranges: ranges}
	}

	m := NewMultiRx(channels)
	for step, wantSignals := range want {
		got, ok, err := m.Recv()
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", step, err)
		}
		if !ok {
			t.Fatalf("step %d: unexpected end of stream", step)
		}
		if !reflect.DeepEqual(got, wantSignals) {
			t.Fatalf("step %d: got %v, want %v", step, got, wantSignals)
		}
	}

	if _, ok, err := m.Recv(); ok || err != nil {
		t.Fatalf("want end of stream after all rows consumed, got ok=%v err=%v", ok, err)
	}
}

func TestNewRangesRejectsOverlap(t *testing.T) {
	if _, err := NewRanges(Range{0, 10}, Range{5, 15}); err == nil {
		t.Fatal("want error for overlapping ranges")
	}
}

func TestNewRangesRejectsTooSmall(t *testing.T) {
	if _, err := NewRanges(Range{0, 1}, Range{1, 10}); err == nil {
		t.Fatal("want error for a single-value range")
	}
}

// intSliceRx returns a signalflow.Rx[int] that replays vs in order, then
// ends the stream.
func intSliceRx(vs []int) signalflow.Rx[int] {
	i := 0
	return signalflow.IteratorRx[int](func() (int, bool) {
		if i >= len(vs) {
			return 0, false
		}
		v := vs[i]
		i++
		return v, true
	})
}
