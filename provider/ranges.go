package provider

import (
	"fmt"

	"github.com/ratijas/slowmode/rtsm"
)

const (
	rangeOffBase = 10
	rangeOnBase  = 60
	rangeWidth   = 10
	rangeSlots   = 4
)

// RangesForInstance assigns the i'th instance a distinct (off, on) range
// pair so a consumer polling several instances at once can tell columns
// apart without any out-of-band coordination: off=10+10*(i%4),
// on=60+10*(i%4), each range 10 wide. The rule cycles every 4 instances,
// matching the upstream's ordinal assignment.
func RangesForInstance(i int) rtsm.Ranges {
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
		panic(fmt.Sprintf("provider: deterministic range assignment for instance %d is invalid: %v", i, err))
	}
	return r
}
