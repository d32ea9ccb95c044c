package consumer

import "github.com/ratijas/slowmode/rtsm"

// Deterministic per-instance range assignment, independently derived on
// the consumer side from the same rule the provider uses (off=10+10*(i%4),
// on=60+10*(i%4), each range 10 wide): the two processes never exchange
// range parameters out of band, they just agree on the rule.
const (
	rangeOffBase = 10
	rangeOnBase  = 60
	rangeWidth   = 10
	rangeSlots   = 4
)

func rangesForInstance(i int) rtsm.Ranges {
	slot := i % rangeSlots
	if slot < 0 {
		slot += rangeSlots
	}
	off := rangeOffBase + rangeWidth*slot
	on := rangeOnBase + rangeWidth*slot
	r, err := rtsm.NewRanges(
		rtsm.Range{Start: off, End: off + rangeWidth},
		rtsm.Range{Start: on, End: on + rangeWidth},
	)
	if err != nil {
		panic("consumer: deterministic range assignment is invalid: " + err.Error())
	}
	return r
}
