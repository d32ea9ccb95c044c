package rtsm

import "github.com/ratijas/slowmode/signalflow"

// NewTx returns a Tx[Signal] that encodes each bit as an integer. Off and on
// each keep their own persistent cursor: a repeat of the previous bit
// advances that bit's cursor one step within its range (wrapping back to
// the range's start), while a changed bit emits its cursor's retained value
// as is, leaving both cursors exactly where they were. Either way the
// emitted value always differs from the last one sent, so a receiver
// sampling at an independent rate can always tell a new bit apart from a
// stale read of the old one.
func NewTx(inner signalflow.Tx[int], ranges Ranges) *Tx {
	return &Tx{
		inner:     inner,
		ranges:    ranges,
		offCursor: ranges.Off.Start,
		onCursor:  ranges.On.Start,
	}
}

type Tx struct {
	inner  signalflow.Tx[int]
	ranges Ranges

	hasCurrent bool
	current    Signal
	offCursor  int
	onCursor   int
}

func (t *Tx) Send(s Signal) error {
	r := t.ranges.rangeFor(s)
	cursor := &t.offCursor
	if s == ON {
		cursor = &t.onCursor
	}
	if t.hasCurrent && t.current == s {
		*cursor = r.next(*cursor)
	}
	t.hasCurrent = true
	t.current = s
	return t.inner.Send(*cursor)
}
